package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != "bar" {
		t.Fatalf("expected bar, got %s", val)
	}
}

func TestCacheMissReturnsNil(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	val, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil || val != nil {
		t.Fatalf("expected clean miss, got val=%q err=%v", val, err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	val, err := cache.Get(ctx, "short")
	if err != nil || val != nil {
		t.Fatalf("expected expired key, got val=%q err=%v", val, err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if val, _ := cache.Get(ctx, "foo"); val != nil {
		t.Fatalf("expected deleted key to miss, got %q", val)
	}
}

func TestCacheSetIfAbsentKeepsExistingValue(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	stored, err := cache.SetIfAbsent(ctx, "k", []byte("first"), time.Minute)
	if err != nil || !stored {
		t.Fatalf("expected first write to store, got stored=%v err=%v", stored, err)
	}

	stored, err = cache.SetIfAbsent(ctx, "k", []byte("second"), time.Minute)
	if err != nil || stored {
		t.Fatalf("expected second write to be skipped, got stored=%v err=%v", stored, err)
	}

	val, err := cache.Get(ctx, "k")
	if err != nil || string(val) != "first" {
		t.Fatalf("expected first, got val=%q err=%v", val, err)
	}
}
