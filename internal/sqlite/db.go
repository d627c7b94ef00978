package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Open returns a private in-memory database. It is gone once the last
// connection closes, so the pool is pinned to a single connection that never
// expires. That also serializes every statement.
func Open(ctx context.Context, foreignKeys bool) (*sql.DB, error) {
	fk := 0
	if foreignKeys {
		fk = 1
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=%d", uuid.NewString(), fk)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
