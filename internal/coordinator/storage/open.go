package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/hlsync/internal/common"
	"github.com/dmitrijs2005/hlsync/internal/coordinator/storage/migrations"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// RunMigrations applies the embedded migrations for dialect ("sqlite3" or
// "postgres") to db.
func RunMigrations(ctx context.Context, db *sql.DB, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	dir := "postgres"
	if dialect == "sqlite3" {
		dir = "sqlite"
	}
	return goose.UpContext(ctx, db, dir)
}

// Open builds a Store from a DSN:
//
//	memory                         in-process map
//	sqlite://<path>                SQLite file (":memory:" allowed)
//	postgres://... | postgresql:// PostgreSQL via pgx
//	redis://host:port/db           Redis
//
// SQL backends are migrated before the store is returned.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil

	case strings.HasPrefix(dsn, "sqlite://"):
		db, err := sql.Open("sqlite", strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		// one connection keeps ":memory:" databases shared and writes serialised
		db.SetMaxOpenConns(1)
		if err := RunMigrations(ctx, db, "sqlite3"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		s := NewSQLiteStore(db)
		s.closer = db.Close
		return s, nil

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := RunMigrations(ctx, db, "postgres"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		s := NewPostgresStore(db)
		s.closer = db.Close
		return s, nil

	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("redis dsn: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrorUnsupportedDSN, dsn)
	}
}

// Describe names the backend a DSN selects without echoing credentials.
func Describe(dsn string) string {
	if dsn == "" || dsn == "memory" {
		return "memory"
	}
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return "unknown"
	}
	return scheme
}
