package shared_test

import (
	"testing"
	"time"

	"travel_query/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	c := shared.Load()
	if c.HTTPAddr != ":8080" || c.CacheTTL != 900*time.Second || c.DecoderWorkers != 8 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	l := c.LinkConfig()
	if l.Lang != "en" || l.Currency != "USD" || l.FlightsBaseURL == "" || l.HotelsBaseURL == "" {
		t.Fatalf("unexpected link config: %+v", l)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SEARCH_CURRENCY", "EUR")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DECODER_WORKERS", "0")

	c := shared.Load()
	if c.CacheTTL != time.Minute || c.RateLimitRPS != 2.5 || c.RedisDB != 3 {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.LinkConfig().Currency != "EUR" {
		t.Fatalf("currency not applied")
	}
	if c.DecoderWorkers != 1 {
		t.Fatalf("workers should be at least 1, got %d", c.DecoderWorkers)
	}
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL_SECONDS", "soon")
	if c := shared.Load(); c.CacheTTL != 900*time.Second {
		t.Fatalf("bad value should fall back, got %v", c.CacheTTL)
	}
}
