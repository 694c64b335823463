// internal/config/config.go
package config

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the sweep settings. Values come from the environment (after
// an optional .env file) and may be overridden by CLI flags.
type Config struct {
	Trials    int           `env:"TEMPLESIM_TRIALS" envDefault:"1000000"`
	Seed      uint64        `env:"TEMPLESIM_SEED" envDefault:"0"`    // 0 = draw from crypto/rand
	Workers   int           `env:"TEMPLESIM_WORKERS" envDefault:"0"` // 0 = GOMAXPROCS
	Mechanics []int       `env:"TEMPLESIM_MECHANICS" envDefault:"1,2" envSeparator:","`
	OutDir    string        `env:"TEMPLESIM_OUT_DIR" envDefault:"."`
	StoreDSN  string        `env:"TEMPLESIM_STORE_DSN"`
	RedisAddr string        `env:"TEMPLESIM_REDIS_ADDR"`
	CacheTTL  time.Duration `env:"TEMPLESIM_CACHE_TTL" envDefault:"168h"`
	LogLevel  string        `env:"TEMPLESIM_LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"TEMPLESIM_LOG_FORMAT" envDefault:"text"`
}

// Load reads the given .env files, skipping missing ones, then parses the
// environment into a Config.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalid, c.Trials)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	if len(c.Mechanics) == 0 {
		return fmt.Errorf("%w: no mechanics selected", ErrInvalid)
	}
	for _, m := range c.Mechanics {
		if m != 1 && m != 2 {
			return fmt.Errorf("%w: mechanic must be 1 or 2, got %d", ErrInvalid, m)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache ttl must not be negative", ErrInvalid)
	}
	return nil
}

// WorkerCount resolves Workers, defaulting to GOMAXPROCS.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// ResolveSeed replaces a zero seed with one drawn from crypto/rand.
func (c *Config) ResolveSeed() error {
	if c.Seed != 0 {
		return nil
	}
	seed, err := NewSeed()
	if err != nil {
		return err
	}
	c.Seed = seed
	return nil
}

// NewSeed generates a non-zero random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
			return s, nil
		}
	}
}
