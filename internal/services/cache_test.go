package services

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	cache := newMemoryCache(time.Minute)
	ctx := context.Background()

	if _, found := cache.Get(ctx, "missing"); found {
		t.Error("Expected miss for unknown key")
	}

	cache.Set(ctx, "analytics:week:", []byte(`{"period":"week"}`), time.Minute)
	value, found := cache.Get(ctx, "analytics:week:")
	if !found {
		t.Fatal("Expected hit after set")
	}
	if string(value) != `{"period":"week"}` {
		t.Errorf("Unexpected cached value: %s", value)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := newMemoryCache(time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "overview", []byte("{}"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := cache.Get(ctx, "overview"); found {
		t.Error("Expected entry to expire")
	}
}

func TestNewCacheDisabledWithZeroTTL(t *testing.T) {
	if cache := NewCache("", 0); cache != nil {
		t.Error("Expected nil cache when TTL is zero")
	}
}
