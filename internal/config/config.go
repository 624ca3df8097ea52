// Package config resolves philotest defaults from the environment and an
// optional .env file. Command-line flags always take precedence over the
// values found here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvBinary      = "PHILOTEST_BINARY"
	EnvBonusBinary = "PHILOTEST_BONUS_BINARY"
	EnvDB          = "PHILOTEST_DB"
	EnvLogLevel    = "PHILOTEST_LOG_LEVEL"
	EnvNoColor     = "PHILOTEST_NO_COLOR"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

const appName = "philotest"

// Config holds the resolved defaults.
type Config struct {
	Binary      string
	BonusBinary string
	DBPath      string
	LogLevel    string
	NoColor     bool
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads the given .env files (DefaultEnvFile when none are given),
// then the process environment. Missing files are skipped. Variables that
// are already set in the environment win over the file contents.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	fileVars := map[string]string{}
	for _, f := range files {
		vars, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}

	return FromEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup LookupFunc) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Binary:      get(EnvBinary),
		BonusBinary: get(EnvBonusBinary),
		DBPath:      get(EnvDB),
		LogLevel:    get(EnvLogLevel),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath(lookup)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}

	if raw := get(EnvNoColor); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			// NO_COLOR convention: any non-empty value disables color.
			b = true
		}
		cfg.NoColor = b
	}
	return cfg, nil
}

// DefaultDBPath returns $XDG_STATE_HOME/philotest/history.db, falling back
// to ~/.local/state when XDG_STATE_HOME is unset.
func DefaultDBPath(lookup LookupFunc) string {
	stateHome, _ := lookup("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := lookup("HOME")
		if home == "" {
			if h, err := os.UserHomeDir(); err == nil {
				home = h
			} else {
				home = os.TempDir()
			}
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName, "history.db")
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}
