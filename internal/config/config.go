// Package config reads environment-driven settings for the eshell and tcsim
// binaries. It follows the tiered-fallback pattern the teacher's internal/llm
// package uses for its per-role model configuration: a prefix-specific
// variable is tried first, and an unset one falls back to a shared variable.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Tier resolves {prefix}_{KEY} environment variables, falling back to a
// shared {fallback} variable when the tiered one is unset or empty.
//
// Expectations:
//   - Uses {prefix}_{suffix} when set and non-empty
//   - Falls back to the shared variable for any unset tiered var
//   - Empty prefix reads only the shared vars
type Tier struct {
	prefix string
}

// NewTier creates a Tier for the given prefix (e.g. "ESHELL", "TCSIM").
func NewTier(prefix string) Tier {
	return Tier{prefix: prefix}
}

// Get returns {prefix}_{suffix} if set, else the shared {fallback} variable.
func (t Tier) Get(suffix, fallback string) string {
	if t.prefix != "" {
		if v := os.Getenv(t.prefix + "_" + suffix); v != "" {
			return v
		}
	}
	return os.Getenv(fallback)
}

// GetDefault is like Get but returns def when neither variable is set.
func (t Tier) GetDefault(suffix, fallback, def string) string {
	if v := t.Get(suffix, fallback); v != "" {
		return v
	}
	return def
}

// GetIntDefault parses the resolved value as an int, returning def on an
// unset or malformed value.
func (t Tier) GetIntDefault(suffix, fallback string, def int) int {
	v := t.Get(suffix, fallback)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[CONFIG] invalid integer for %s_%s=%q, using default %d", t.prefix, suffix, v, def)
		return def
	}
	return n
}

// LoadDotenv loads a .env file from the working directory if present.
// Missing files are not an error — this mirrors the teacher's
// `_ = godotenv.Load(".env")` call in cmd/agsh/main.go, which never fails
// the program when no .env exists.
func LoadDotenv() {
	_ = godotenv.Load(".env")
}
