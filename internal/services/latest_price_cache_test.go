package services

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/pricetrack/backend/internal/extract"
	"github.com/pricetrack/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *LatestPriceCache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLatestPriceCache(client)
}

func TestLatestPriceCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	image := "https://img/x.png"
	obs := models.PriceObservation{
		ID:           "obs-1",
		ProductURL:   "https://a",
		Name:         "Widget",
		Price:        19.99,
		Currency:     "USD",
		MainImageURL: &image,
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := cache.Set(ctx, obs); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := cache.Get(ctx, "https://a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Price != 19.99 || got.Name != "Widget" || !got.Timestamp.Equal(obs.Timestamp) {
		t.Fatalf("unexpected cached observation: %+v", got)
	}
}

func TestLatestPriceCacheMiss(t *testing.T) {
	cache := newTestCache(t)

	got, err := cache.Get(context.Background(), "https://unknown")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss, got %+v", got)
	}
}

func TestLatestPriceCacheInvalidate(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	obs := models.PriceObservation{ID: "obs-1", ProductURL: "https://a", Name: "Widget", Currency: "USD"}
	if err := cache.Set(ctx, obs); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.Invalidate(ctx, "https://a"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	got, err := cache.Get(ctx, "https://a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected miss after invalidate, got %+v", got)
	}
}

func TestLatestPriceCacheNilIsDisabled(t *testing.T) {
	var cache *LatestPriceCache
	ctx := context.Background()

	if err := cache.Set(ctx, models.PriceObservation{ProductURL: "https://a"}); err != nil {
		t.Fatalf("nil cache set should no-op, got %v", err)
	}
	got, err := cache.Get(ctx, "https://a")
	if err != nil || got != nil {
		t.Fatalf("nil cache get should miss silently, got %+v, %v", got, err)
	}
	if err := cache.Invalidate(ctx, "https://a"); err != nil {
		t.Fatalf("nil cache invalidate should no-op, got %v", err)
	}
}

func TestGetLatestObservationReadsThroughCache(t *testing.T) {
	cache := newTestCache(t)
	store := NewPriceStore(newTestDB(t), cache)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertProduct(ctx, "https://a"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	for i, price := range []float64{10, 12} {
		if _, err := store.AppendObservation(ctx, testObservation("https://a", price, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	latest, err := store.GetLatestObservation(ctx, "https://a")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if latest == nil || latest.Price != 12 {
		t.Fatalf("unexpected latest observation: %+v", latest)
	}

	// Appends keep the cache fresh.
	cached, err := cache.Get(ctx, "https://a")
	if err != nil {
		t.Fatalf("cache get failed: %v", err)
	}
	if cached == nil || cached.Price != 12 {
		t.Fatalf("cache not refreshed on append: %+v", cached)
	}
}

// extract.Observation is the boundary contract; ensure timestamps stored via
// the cache keep microsecond resolution like the database does.
func TestCacheTimestampResolution(t *testing.T) {
	cache := newTestCache(t)
	store := NewPriceStore(newTestDB(t), cache)
	ctx := context.Background()

	ts := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	if err := store.UpsertProduct(ctx, "https://a"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	row, err := store.AppendObservation(ctx, extract.Observation{URL: "https://a", Name: "W", Currency: "USD", Timestamp: ts})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if row.Timestamp.Nanosecond() != 123456000 {
		t.Fatalf("timestamp not truncated to microseconds: %v", row.Timestamp)
	}
}
