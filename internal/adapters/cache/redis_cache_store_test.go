package cache_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/najmulislamnajim/odms-cache/internal/adapters/cache"
	"github.com/najmulislamnajim/odms-cache/internal/config"
	"github.com/najmulislamnajim/odms-cache/internal/testsupport"
)

func TestRedisCacheStoreSetOverwrites(t *testing.T) {
	mr, conn := testsupport.Redis(t)
	ctx := context.Background()

	store, err := conn.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	key := "2024-03-05_D001_delivery-info"
	value := []byte(`[{"da_code":"D001"}]`)

	for i := 0; i < 2; i++ {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("set #%d: %v", i+1, err)
		}
	}

	got, err := mr.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != string(value) {
		t.Fatalf("value = %q, want %q", got, value)
	}
	if ttl := mr.TTL(key); ttl != 0 {
		t.Fatalf("ttl = %s, want none", ttl)
	}
	if n := len(mr.Keys()); n != 1 {
		t.Fatalf("keys = %d, want 1", n)
	}

	if err := store.Set(ctx, key, []byte(`[]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _ := mr.Get(key); got != "[]" {
		t.Fatalf("value after overwrite = %q, want []", got)
	}
}

func TestRedisCacheStoreFlush(t *testing.T) {
	mr, conn := testsupport.Redis(t)
	ctx := context.Background()

	store, err := conn.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer store.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := mr.Set(k, "v"); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}

	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if n := len(mr.Keys()); n != 0 {
		t.Fatalf("keys after flush = %d, want 0", n)
	}
}

func TestRedisConnectFailure(t *testing.T) {
	mr, _ := testsupport.Redis(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	mr.Close()

	conn := cache.NewRedisConnector(config.CacheConfig{Host: host, Port: port})
	if _, err := conn.Connect(context.Background()); err == nil {
		t.Fatal("expected connect error against closed server")
	}
}

func TestNewConnector(t *testing.T) {
	if _, ok := mustConnector(t, "redis").(*cache.RedisConnector); !ok {
		t.Error("redis backend should build a RedisConnector")
	}
	if _, ok := mustConnector(t, "valkey").(*cache.ValkeyConnector); !ok {
		t.Error("valkey backend should build a ValkeyConnector")
	}
	if _, err := cache.NewConnector(config.CacheConfig{Backend: "memcached"}); err == nil {
		t.Error("expected error for unsupported backend")
	}
}

func mustConnector(t *testing.T, backend string) any {
	t.Helper()
	c, err := cache.NewConnector(config.CacheConfig{Backend: backend, Host: "localhost", Port: 6379})
	if err != nil {
		t.Fatalf("new connector %s: %v", backend, err)
	}
	return c
}
