// Package config loads tracker configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSource is the catalog endpoint used when TRACKER_SOURCES is unset.
const DefaultSource = "https://celestrak.org/NORAD/elements/gp.php?GROUP=active&FORMAT=tle"

// Config holds the daemon's runtime settings.
type Config struct {
	ListenAddr      string
	Sources         []string
	CacheDir        string
	CatalogTTL      time.Duration
	RefreshInterval time.Duration
	TickInterval    time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load reads configuration from TRACKER_* environment variables, applying
// defaults for anything unset.
func Load() Config {
	cfg := Config{
		ListenAddr:      getenv("TRACKER_LISTEN_ADDR", ":8080"),
		CacheDir:        getenv("TRACKER_CACHE_DIR", defaultCacheDir()),
		CatalogTTL:      getenvDuration("TRACKER_CATALOG_TTL", 6*time.Hour),
		RefreshInterval: getenvDuration("TRACKER_REFRESH_INTERVAL", 30*time.Minute),
		TickInterval:    getenvDuration("TRACKER_TICK_INTERVAL", time.Second),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFormat:       os.Getenv("LOG_FORMAT"),
		LogFile:         os.Getenv("LOG_FILE"),
	}

	raw := getenv("TRACKER_SOURCES", DefaultSource)
	for _, src := range strings.Split(raw, ",") {
		if src = strings.TrimSpace(src); src != "" {
			cfg.Sources = append(cfg.Sources, src)
		}
	}
	return cfg
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/orbit-tracker"
	}
	return ".orbit-tracker-cache"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}
