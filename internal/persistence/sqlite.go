package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type kvEntry struct {
	bun.BaseModel `bun:"table:kv_state"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value"`
}

// SQLite is the embedded persistence adapter for running the box office
// without a Redis: one kv_state table with upsert semantics.
type SQLite struct {
	Bun *bun.DB
}

func NewSQLite(path string) (*SQLite, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The state is read by one process; a single connection avoids
	// table-lock churn on the shared cache.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*kvEntry)(nil)).
		IfNotExists().
		Exec(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_state table: %w", err)
	}

	return &SQLite{Bun: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var entry kvEntry
	err := s.Bun.NewSelect().
		Model(&entry).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	entry := kvEntry{Key: key, Value: value}
	_, err := s.Bun.NewInsert().
		Model(&entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func (s *SQLite) Close() error {
	return s.Bun.Close()
}
