package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/procview/internal/metrics"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyUser, []byte(`{"success":true}`)))
		got, err := s.Get(ctx, KeyUser)
		require.NoError(t, err)
		assert.Equal(t, `{"success":true}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyRecent, []byte(`[1]`)))
		require.NoError(t, s.Set(ctx, KeyRecent, []byte(`[2]`)))
		got, err := s.Get(ctx, KeyRecent)
		require.NoError(t, err)
		assert.Equal(t, `[2]`, string(got))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyFolder, []byte(`{}`)))
		require.NoError(t, s.Remove(ctx, KeyFolder))
		_, err := s.Get(ctx, KeyFolder)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, s.Remove(ctx, KeyFolder))
	})

	t.Run("json helpers", func(t *testing.T) {
		type rec struct {
			Name string `json:"name"`
		}
		require.NoError(t, SetJSON(ctx, s, "json", rec{Name: "Pump start"}))
		var got rec
		require.NoError(t, GetJSON(ctx, s, "json", &got))
		assert.Equal(t, "Pump start", got.Name)

		require.NoError(t, s.Set(ctx, "corrupt", []byte("{not json")))
		err := GetJSON(ctx, s, "corrupt", &got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	runContract(t, s)

	require.NoError(t, s.Close())
	_, err := s.Get(context.Background(), KeyUser)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemory_CopiesValues(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "procview.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	runContract(t, s)
}

func TestSQLite_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "procview.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyRecent, []byte(`["p1"]`)))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyRecent)
	require.NoError(t, err)
	assert.Equal(t, `["p1"]`, string(got))
	assert.Equal(t, path, reopened.Path())
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	runContract(t, s)
}

func TestSQLite_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "procview.db"))
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, KeyRecent, []byte(`[]`)))
		}()
	}
	wg.Wait()
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Options{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "a.db")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	_ = s.Close()

	_, err = Open(ctx, Options{Driver: "redis"}, nil)
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	mc := metrics.NewCollector()
	s := WithMetrics(NewMemory(), mc)

	_, err := s.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Remove(ctx, "k"))

	snap := mc.Snapshot()
	get := snap.Get(metrics.OpStoreGet)
	require.NotNil(t, get)
	assert.Equal(t, int64(1), get.Count)
	assert.Zero(t, get.Errors)
	assert.NotNil(t, snap.Get(metrics.OpStoreSet))
	assert.NotNil(t, snap.Get(metrics.OpStoreRemove))
}
