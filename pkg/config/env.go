// Package config holds environment lookups and value validators shared by
// the site's configuration loader.
//
// Lookups never fail: a blank variable yields the fallback, and a value that
// does not parse yields the fallback plus a warning naming the key. Range
// checks belong to the validators, which the loader runs afterwards.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup reads key and converts it with parse. kind only feeds the warning.
func lookup[T any](key, kind string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("ignoring invalid environment value",
			slog.String("key", key),
			slog.String("expected", kind),
			slog.Any("default", fallback))
		return fallback
	}
	return v
}

// GetEnvString returns the trimmed value of key, or fallback when blank.
func GetEnvString(key, fallback string) string {
	return lookup(key, "string", fallback, func(s string) (string, error) { return s, nil })
}

// GetEnvInt parses key as a base-10 integer, e.g. FEED_MAX_POSTS=6.
func GetEnvInt(key string, fallback int) int {
	return lookup(key, "integer", fallback, strconv.Atoi)
}

// GetEnvBool parses key with strconv.ParseBool, so "1", "true" and "FALSE"
// are accepted but "yes" is not.
func GetEnvBool(key string, fallback bool) bool {
	return lookup(key, "boolean", fallback, strconv.ParseBool)
}

// GetEnvDuration parses key with time.ParseDuration, e.g. FEED_TIMEOUT=8s.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, "duration", fallback, time.ParseDuration)
}
