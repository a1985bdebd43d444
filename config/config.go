// Package config loads the application configuration.
//
// Values are resolved in order: built-in defaults, the TOML file, a .env file
// and finally COMPTA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robinvdvleuten/compta/ledger"
)

// DefaultFile is read when no config file is given explicitly.
const DefaultFile = "compta.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COMPTA_"

// Config is the application configuration.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Ledger LedgerConfig `toml:"ledger"`
	Log    LogConfig    `toml:"log"`
}

// StoreConfig selects the entry store.
type StoreConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	ReadOnly bool   `toml:"read_only"`
	Watch    bool   `toml:"watch"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LedgerConfig holds the derivation rules. Nil slices and pointers keep the
// ledger defaults.
type LedgerConfig struct {
	AssociationKeywords []string `toml:"association_keywords"`
	ClosingMarkers      []string `toml:"closing_markers"`
	KeywordFallback     *bool    `toml:"keyword_fallback"`
	GuardClosing        *bool    `toml:"guard_closing"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "compta.db",
		},
		Server: ServerConfig{
			Host:  "localhost",
			Port:  8080,
			Watch: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Options controls where Load looks for values.
type Options struct {
	// File is the TOML file. An empty File reads DefaultFile when it exists.
	File string

	// EnvFile is the .env file. An empty EnvFile reads ".env" when it exists.
	EnvFile string

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	cfg := Default()

	file, required := opts.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := cfg.decodeFile(file, required); err != nil {
		return nil, err
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Missing .env is fine.
		_ = godotenv.Load()
	}

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Decode reads TOML from r over the current values.
func (c *Config) Decode(r io.Reader) error {
	_, err := toml.NewDecoder(r).Decode(c)
	return err
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	list := func(name string, dst *[]string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = strings.Split(v, ",")
		}
	}
	boolean := func(name string, dst *bool) error {
		v := getenv(EnvPrefix + name)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = b
		return nil
	}
	optBool := func(name string, dst **bool) error {
		if getenv(EnvPrefix+name) == "" {
			return nil
		}
		var b bool
		if err := boolean(name, &b); err != nil {
			return err
		}
		*dst = &b
		return nil
	}

	str("STORE_DRIVER", &c.Store.Driver)
	str("STORE_PATH", &c.Store.Path)
	str("SERVER_HOST", &c.Server.Host)
	if v := getenv(EnvPrefix + "SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT %q: %w", EnvPrefix, v, err)
		}
		c.Server.Port = port
	}
	if err := boolean("SERVER_READ_ONLY", &c.Server.ReadOnly); err != nil {
		return err
	}
	if err := boolean("SERVER_WATCH", &c.Server.Watch); err != nil {
		return err
	}
	list("LEDGER_ASSOCIATION_KEYWORDS", &c.Ledger.AssociationKeywords)
	list("LEDGER_CLOSING_MARKERS", &c.Ledger.ClosingMarkers)
	if err := optBool("LEDGER_KEYWORD_FALLBACK", &c.Ledger.KeywordFallback); err != nil {
		return err
	}
	if err := optBool("LEDGER_GUARD_CLOSING", &c.Ledger.GuardClosing); err != nil {
		return err
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return nil
}

// Validate checks the values that cannot be checked by decoding.
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q, expected text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LedgerConfig returns the derivation rules, starting from the ledger defaults.
func (c *Config) LedgerConfig() (*ledger.Config, error) {
	options := map[string][]string{}
	if len(c.Ledger.AssociationKeywords) > 0 {
		options["association_keyword"] = c.Ledger.AssociationKeywords
	}
	if len(c.Ledger.ClosingMarkers) > 0 {
		options["closing_marker"] = c.Ledger.ClosingMarkers
	}
	if c.Ledger.KeywordFallback != nil {
		options["keyword_fallback"] = []string{strconv.FormatBool(*c.Ledger.KeywordFallback)}
	}
	if c.Ledger.GuardClosing != nil {
		options["guard_closing"] = []string{strconv.FormatBool(*c.Ledger.GuardClosing)}
	}
	return ledger.ConfigFromOptions(options)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q, expected debug, info, warn or error", s)
	}
	return level, nil
}

// Logger builds the slog logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
