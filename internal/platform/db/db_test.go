package db

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestOpenHoldsOneConnection(t *testing.T) {
	ctx := context.Background()

	conn, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "one.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if got := conn.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}

	// TEMP tables live on one connection; later statements only see it when
	// the handle keeps reusing that connection.
	if _, err := conn.ExecContext(ctx, "CREATE TEMP TABLE session_marker (n INTEGER)"); err != nil {
		t.Fatalf("create temp table: %v", err)
	}
	for i := range 3 {
		if _, err := conn.ExecContext(ctx, "INSERT INTO session_marker (n) VALUES (?)", i); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	var n int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM session_marker").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	stats := conn.Stats()
	if stats.OpenConnections != 1 || stats.MaxLifetimeClosed != 0 || stats.MaxIdleTimeClosed != 0 {
		t.Fatalf("stats = %+v, want one connection never recycled", stats)
	}
}

func TestOpenFailsOnBadDriver(t *testing.T) {
	if _, err := Open(context.Background(), "no-such-driver", "x"); err == nil {
		t.Fatal("expected error for unregistered driver")
	}
}
