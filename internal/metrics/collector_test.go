package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpLogin, 10*time.Millisecond)
	c.RecordTiming(OpLogin, 30*time.Millisecond)
	c.RecordTiming(OpFetchTree, 5*time.Millisecond)

	snap := c.Snapshot()

	require.Len(t, snap.Operations, 2)
	assert.Equal(t, OpFetchTree, snap.Operations[0].Name)

	login := snap.Get(OpLogin)
	require.NotNil(t, login)
	assert.Equal(t, int64(2), login.Count)
	assert.Equal(t, int64(40), login.TotalTimeMs)
	assert.Equal(t, 20.0, login.AvgTimeMs)
	assert.Equal(t, int64(10), login.MinTimeMs)
	assert.Equal(t, int64(30), login.MaxTimeMs)
	assert.Nil(t, snap.Get(OpDownload))
}

func TestCollector_ObserveCountsErrors(t *testing.T) {
	c := NewCollector()

	func() (err error) {
		defer c.Observe(OpFeedback, time.Now(), &err)
		return errors.New("rejected")
	}()
	func() (err error) {
		defer c.Observe(OpFeedback, time.Now(), &err)
		return nil
	}()

	fb := c.Snapshot().Get(OpFeedback)
	require.NotNil(t, fb)
	assert.Equal(t, int64(2), fb.Count)
	assert.Equal(t, int64(1), fb.Errors)
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpStoreGet, time.Millisecond)
	assert.Empty(t, c.Snapshot().Operations)
}
