package store

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// Force HTTP/1.1 for WSS connections to prevent HTTP/2 ALPN negotiation.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

const surrealSchema = `
DEFINE TABLE IF NOT EXISTS kv SCHEMAFULL;
DEFINE FIELD IF NOT EXISTS value ON kv TYPE string;
DEFINE FIELD IF NOT EXISTS updated ON kv TYPE datetime DEFAULT time::now();
`

// Surreal keeps records in a SurrealDB "kv" table so several devices can
// share one cache.
type Surreal struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

type kvRecord struct {
	Value string `json:"value"`
}

// OpenSurreal connects with an auto-reconnecting WebSocket, signs in and
// ensures the kv table exists.
func OpenSurreal(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*Surreal, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	if _, err := surrealdb.Query[any](ctx, db, surrealSchema, nil); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("init schema: %w", err)
	}

	sdkLogger.Info("SurrealDB store ready", "namespace", cfg.Namespace, "database", cfg.Database)
	return &Surreal{conn: conn, db: db, logger: sdkLogger}, nil
}

func (s *Surreal) Get(ctx context.Context, key string) ([]byte, error) {
	results, err := surrealdb.Query[[]kvRecord](ctx, s.db, `
		SELECT value FROM type::record("kv", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, wrapQueryError(err))
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, ErrNotFound
	}
	return []byte((*results)[0].Result[0].Value), nil
}

func (s *Surreal) Set(ctx context.Context, key string, value []byte) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		UPSERT type::record("kv", $key) SET value = $value, updated = time::now()
	`, map[string]any{"key": key, "value": string(value)})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, wrapQueryError(err))
	}
	return nil
}

func (s *Surreal) Remove(ctx context.Context, key string) error {
	_, err := surrealdb.Query[any](ctx, s.db, `
		DELETE type::record("kv", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, wrapQueryError(err))
	}
	return nil
}

// Close closes the SurrealDB connection.
func (s *Surreal) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("closing SurrealDB connection")
	return s.conn.Close(ctx)
}

// wrapQueryError surfaces the database message of a SurrealDB query error.
func wrapQueryError(err error) error {
	var queryErr *surrealdb.QueryError
	if errors.As(err, &queryErr) {
		return fmt.Errorf("query: %s", queryErr.Message)
	}
	return err
}
