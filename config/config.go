// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/internal/logctx"
	"github.com/joeshaw/envdecode"
)

// Config is populated by envdecode. Defaults are provided via struct tags.
type Config struct {
	// Addr is the HTTP listen address. ENV: CHATCOMPONENTS_ADDR
	Addr string `env:"CHATCOMPONENTS_ADDR,default=127.0.0.1:8080"`
	// LogLevel is one of debug, info, warn, error. ENV: CHATCOMPONENTS_LOG_LEVEL
	LogLevel string `env:"CHATCOMPONENTS_LOG_LEVEL,default=info"`
	// LogFormat is text or json. ENV: CHATCOMPONENTS_LOG_FORMAT
	LogFormat string `env:"CHATCOMPONENTS_LOG_FORMAT,default=text"`
	// ComponentKey is the additional_kwargs key holding a nested descriptor.
	// ENV: CHATCOMPONENTS_COMPONENT_KEY
	ComponentKey string `env:"CHATCOMPONENTS_COMPONENT_KEY,default=component"`
	// ChartTools are the recognized chart tool names, separated by
	// semicolons. ENV: CHATCOMPONENTS_CHART_TOOLS
	ChartTools []string `env:"CHATCOMPONENTS_CHART_TOOLS,default=render_chart;create_visualization"`
	// Preprocess rewrites :::chart{}::: directives before extraction.
	// ENV: CHATCOMPONENTS_PREPROCESS
	Preprocess bool `env:"CHATCOMPONENTS_PREPROCESS,default=false"`
	// WatchDebounce coalesces bursts of file writes. ENV: CHATCOMPONENTS_WATCH_DEBOUNCE
	WatchDebounce time.Duration `env:"CHATCOMPONENTS_WATCH_DEBOUNCE,default=100ms"`
}

// Load decodes Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("config: negative watch debounce %s", c.WatchDebounce)
	}
	for _, name := range c.ChartTools {
		if strings.TrimSpace(name) == "" {
			return errors.New("config: empty chart tool name")
		}
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("config: log level: %w", err)
	}
	return lvl, nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(logctx.Handler{Handler: h})
}

// ExtractorOptions configures a component.Extractor from c.
func (c Config) ExtractorOptions(log *slog.Logger) []component.Option {
	return []component.Option{
		component.WithLogger(log),
		component.WithComponentKey(c.ComponentKey),
		component.WithChartTools(c.ChartTools...),
	}
}
