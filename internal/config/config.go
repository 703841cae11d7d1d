// Package config loads the host configuration: tier thresholds, chat
// behavior, script limits and room identity. Values come from a TOML file,
// then ROOMKIT_* environment variables (optionally seeded from a .env file).
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/roomkit/roomkit/internal/duration"
	"github.com/roomkit/roomkit/internal/errdef"
	"github.com/roomkit/roomkit/internal/viewer"
)

const (
	envPrefix       = "ROOMKIT_"
	envRecently     = envPrefix + "TIER_RECENTLY"
	envALot         = envPrefix + "TIER_ALOT"
	envTons         = envPrefix + "TIER_TONS"
	envClearOnStart = envPrefix + "CLEAR_ON_START"
	envHistory      = envPrefix + "CHAT_HISTORY"
	envTimeout      = envPrefix + "SCRIPT_TIMEOUT"
	envOwner        = envPrefix + "ROOM_OWNER"
	envSlug         = envPrefix + "ROOM_SLUG"
)

type Config struct {
	Tiers  viewer.Thresholds `toml:"tiers"`
	Chat   Chat              `toml:"chat"`
	Script Script            `toml:"script"`
	Room   Room              `toml:"room"`
}

type Chat struct {
	ClearOnStart bool `toml:"clear_on_start"`
	History      int  `toml:"history"`
	Timestamps   bool `toml:"timestamps"`
}

type Script struct {
	// Timeout bounds every evaluation and callback. Zero disables the watchdog.
	Timeout duration.Duration `toml:"timeout"`
}

type Room struct {
	Owner string `toml:"owner"`
	Slug  string `toml:"slug"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Tiers: viewer.DefaultThresholds(),
		Chat: Chat{
			ClearOnStart: true,
			History:      500,
		},
		Script: Script{Timeout: duration.Duration(5 * time.Second)},
		Room:   Room{Owner: "llua", Slug: "llua"},
	}
}

// Load reads path (a missing file is not an error), overlays environment
// values read through getenv and validates the result.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, errdef.Wrap(errdef.CodeIO, err, "read config %s", path)
		default:
			dec := toml.NewDecoder(bytes.NewReader(data))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return cfg, errdef.Wrap(errdef.CodeConfig, err, "parse config %s", path)
			}
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotenv seeds the process environment from .env files, skipping files
// that do not exist. Variables already set win.
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errdef.Wrap(errdef.CodeConfig, err, "load %s", p)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if err := c.Tiers.Validate(); err != nil {
		return err
	}
	if c.Script.Timeout < 0 {
		return errdef.New(errdef.CodeConfig, "script timeout must not be negative")
	}
	if c.Chat.History < 0 {
		return errdef.New(errdef.CodeConfig, "chat history must not be negative")
	}
	if strings.TrimSpace(c.Room.Owner) == "" {
		return errdef.New(errdef.CodeConfig, "room owner must be set")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	ints := []struct {
		key string
		dst *int
	}{
		{envRecently, &c.Tiers.Recently},
		{envALot, &c.Tiers.ALot},
		{envTons, &c.Tiers.Tons},
		{envHistory, &c.Chat.History},
	}
	for _, it := range ints {
		val := strings.TrimSpace(getenv(it.key))
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return errdef.Wrap(errdef.CodeConfig, err, "%s", it.key)
		}
		*it.dst = n
	}
	if val := strings.TrimSpace(getenv(envClearOnStart)); val != "" {
		b, ok := parseBool(val)
		if !ok {
			return errdef.New(errdef.CodeConfig, "%s: invalid boolean %q", envClearOnStart, val)
		}
		c.Chat.ClearOnStart = b
	}
	if val := strings.TrimSpace(getenv(envTimeout)); val != "" {
		d, ok := duration.Parse(val)
		if !ok {
			return errdef.New(errdef.CodeConfig, "%s: invalid duration %q", envTimeout, val)
		}
		c.Script.Timeout = duration.Duration(d)
	}
	if val := strings.TrimSpace(getenv(envOwner)); val != "" {
		c.Room.Owner = val
	}
	if val := strings.TrimSpace(getenv(envSlug)); val != "" {
		c.Room.Slug = val
	}
	return nil
}

func parseBool(val string) (bool, bool) {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
