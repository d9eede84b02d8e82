package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the root engine config (engine.toml)
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Display DisplayConfig `toml:"display"`
	Render  RenderConfig  `toml:"render"`
	Scenes  ScenesConfig  `toml:"scenes"`
	Trace   TraceConfig   `toml:"trace"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DisplayConfig struct {
	Title        string `toml:"title"`
	ScreenWidth  int    `toml:"screen_width"`
	ScreenHeight int    `toml:"screen_height"`
	Scale        int    `toml:"scale"`
	Framerate    int    `toml:"framerate"`
}

// Backend names accepted in RenderConfig.Backend
const (
	BackendEbiten   = "ebiten"
	BackendHeadless = "headless"
)

type RenderConfig struct {
	Backend        string `toml:"backend"`
	SeparateThread bool   `toml:"separate_thread"` // headless backend only
	MaxFrames      uint64 `toml:"max_frames"`      // headless run length, 0 = until interrupted
}

type ScenesConfig struct {
	LoadingType string `toml:"loading_type"`
	Catalog     string `toml:"catalog"`
	Router      string `toml:"router"` // optional Lua script deciding next scenes
}

type TraceConfig struct {
	Path string `toml:"path"` // empty disables tracing
}

// Parse decodes engine config TOML, overlaying it on the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	switch c.Render.Backend {
	case BackendEbiten, BackendHeadless:
	default:
		return fmt.Errorf("render.backend %q: want %q or %q", c.Render.Backend, BackendEbiten, BackendHeadless)
	}
	if c.Render.SeparateThread && c.Render.Backend != BackendHeadless {
		return fmt.Errorf("render.separate_thread requires backend %q, got %q", BackendHeadless, c.Render.Backend)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("display.scale must be positive, got %d", c.Display.Scale)
	}
	if c.Display.Framerate <= 0 {
		return fmt.Errorf("display.framerate must be positive, got %d", c.Display.Framerate)
	}
	if c.Display.ScreenWidth <= 0 || c.Display.ScreenHeight <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.ScreenWidth, c.Display.ScreenHeight)
	}
	if c.Scenes.LoadingType == "" {
		return fmt.Errorf("scenes.loading_type is required")
	}
	if c.Scenes.Catalog == "" {
		return fmt.Errorf("scenes.catalog is required")
	}
	return nil
}

// Defaults returns the built-in engine config
func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Display: DisplayConfig{
			Title:        "scenecore",
			ScreenWidth:  320,
			ScreenHeight: 240,
			Scale:        2,
			Framerate:    60,
		},
		Render: RenderConfig{
			Backend: BackendEbiten,
		},
		Scenes: ScenesConfig{
			LoadingType: "loading",
			Catalog:     "scenes.yaml",
		},
	}
}
