package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"travel_query/internal/app"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	RateLimitRPS   float64
	FlightsBaseURL string
	HotelsBaseURL  string
	SearchLang     string
	SearchCurrency string
	DecoderWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
		}
		return def
	}
	links := app.DefaultLinkConfig()
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/travelq?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		RateLimitRPS:   atof("RATE_LIMIT_RPS", 20),
		FlightsBaseURL: env("FLIGHTS_BASE_URL", links.FlightsBaseURL),
		HotelsBaseURL:  env("HOTELS_BASE_URL", links.HotelsBaseURL),
		SearchLang:     env("SEARCH_LANG", links.Lang),
		SearchCurrency: env("SEARCH_CURRENCY", links.Currency),
		DecoderWorkers: atoi("DECODER_WORKERS", 8),
	}
	if c.DecoderWorkers < 1 {
		c.DecoderWorkers = 1
	}
	return c
}

// LinkConfig is the part of c the link service needs.
func (c Config) LinkConfig() app.LinkConfig {
	return app.LinkConfig{
		FlightsBaseURL: c.FlightsBaseURL,
		HotelsBaseURL:  c.HotelsBaseURL,
		Lang:           c.SearchLang,
		Currency:       c.SearchCurrency,
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
