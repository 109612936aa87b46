// Package config resolves wordfilter settings from flags, WORDFILTER_*
// environment variables, an optional wordfilter.yaml and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
	"github.com/Tispy-Bacon/wordfilter/internal/ratelimit"
)

const (
	EnvPrefix = "WORDFILTER"

	DefaultInputFile  = "6-letter-words-old.json"
	DefaultOutputFile = "6-letter-words.json"
	DefaultDBPath     = "./data/wordfilter.db"
)

// Keys shared by viper and the command flags.
const (
	KeyInput     = "input"
	KeyOutput    = "output"
	KeyEndpoint  = "endpoint"
	KeyDelay     = "delay"
	KeyLimiter   = "limiter"
	KeyTimeout   = "timeout"
	KeyOnFailure = "on_failure"
	KeyDB        = "db"
	KeyHistory   = "history"
	KeyVerbose   = "verbose"
)

type Config struct {
	InputFile  string        `mapstructure:"input"`
	OutputFile string        `mapstructure:"output"`
	Endpoint   string        `mapstructure:"endpoint"`
	Delay      time.Duration `mapstructure:"delay"`
	Limiter    string        `mapstructure:"limiter"`
	Timeout    time.Duration `mapstructure:"timeout"`
	OnFailure  string        `mapstructure:"on_failure"`
	DBPath     string        `mapstructure:"db"`
	History    bool          `mapstructure:"history"`
	Verbose    bool          `mapstructure:"verbose"`
}

// New returns a viper instance with defaults and environment lookup wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyInput, DefaultInputFile)
	v.SetDefault(KeyOutput, DefaultOutputFile)
	v.SetDefault(KeyEndpoint, dictionary.DefaultEndpoint)
	v.SetDefault(KeyDelay, ratelimit.DefaultInterval)
	v.SetDefault(KeyLimiter, ratelimit.KindFixed)
	v.SetDefault(KeyTimeout, dictionary.DefaultTimeout)
	v.SetDefault(KeyOnFailure, string(dictionary.PolicyDrop))
	v.SetDefault(KeyDB, DefaultDBPath)
	v.SetDefault(KeyHistory, false)
	v.SetDefault(KeyVerbose, false)
}

// ReadFile loads path, or wordfilter.yaml from the working directory when
// path is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wordfilter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("input file is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file is required")
	}
	if filepath.Clean(c.InputFile) == filepath.Clean(c.OutputFile) {
		return fmt.Errorf("input file and output file cannot be the same")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative: %s", c.Delay)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", c.Timeout)
	}
	switch c.Limiter {
	case ratelimit.KindFixed, ratelimit.KindBucket:
	default:
		return fmt.Errorf("unknown limiter %q (want %s or %s)", c.Limiter, ratelimit.KindFixed, ratelimit.KindBucket)
	}
	if _, err := dictionary.ParsePolicy(c.OnFailure); err != nil {
		return err
	}
	return nil
}

// Policy returns the parsed failure policy. Validate has already accepted it.
func (c *Config) Policy() dictionary.Policy {
	p, _ := dictionary.ParsePolicy(c.OnFailure)
	return p
}

// HistoryEnabled reports whether runs should be recorded. Recording is opt-in
// so a plain run touches no file besides its output.
func (c *Config) HistoryEnabled() bool {
	return c.History && c.DBPath != ""
}
