package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tispy-Bacon/wordfilter/internal/dictionary"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, DefaultInputFile, cfg.InputFile)
	assert.Equal(t, DefaultOutputFile, cfg.OutputFile)
	assert.Equal(t, dictionary.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, "fixed", cfg.Limiter)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, dictionary.PolicyDrop, cfg.Policy())
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("WORDFILTER_DELAY", "250ms")
	t.Setenv("WORDFILTER_ON_FAILURE", "keep")
	t.Setenv("WORDFILTER_HISTORY", "true")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, dictionary.PolicyKeep, cfg.Policy())
	assert.True(t, cfg.HistoryEnabled())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfilter.yaml")
	content := "input: words.json\noutput: out/words.json\ndelay: 2s\nlimiter: bucket\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := New()
	require.NoError(t, ReadFile(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "words.json", cfg.InputFile)
	assert.Equal(t, "out/words.json", cfg.OutputFile)
	assert.Equal(t, 2*time.Second, cfg.Delay)
	assert.Equal(t, "bucket", cfg.Limiter)
}

func TestReadFile_MissingExplicitFile(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReadFile_MissingDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.NoError(t, ReadFile(New(), ""))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			InputFile:  "in.json",
			OutputFile: "out.json",
			Endpoint:   dictionary.DefaultEndpoint,
			Delay:      time.Second,
			Limiter:    "fixed",
			OnFailure:  "drop",
		}
	}

	base := valid()
	require.NoError(t, base.Validate())

	tests := map[string]func(c *Config){
		"empty input":      func(c *Config) { c.InputFile = "" },
		"empty output":     func(c *Config) { c.OutputFile = "" },
		"same files":       func(c *Config) { c.OutputFile = "./in.json" },
		"empty endpoint":   func(c *Config) { c.Endpoint = "" },
		"negative delay":   func(c *Config) { c.Delay = -time.Second },
		"negative timeout": func(c *Config) { c.Timeout = -time.Second },
		"unknown limiter":  func(c *Config) { c.Limiter = "leaky" },
		"unknown policy":   func(c *Config) { c.OnFailure = "retry" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
