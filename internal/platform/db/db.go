package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Open returns a handle restricted to a single physical connection, so a
// worker holding it never fans out to the source store. The connection has
// no max lifetime and is held until Close.
func Open(ctx context.Context, driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driverName, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driverName, err)
	}

	return db, nil
}
