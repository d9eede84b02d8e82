package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Catalog is the root config for the scene catalog YAML
type Catalog struct {
	Start  []string   `yaml:"start"`
	Scenes []SceneDef `yaml:"scenes"`
}

// SceneDef describes one data-driven scene type
type SceneDef struct {
	Type      string        `yaml:"type"`
	LoadDelay time.Duration `yaml:"load_delay"` // simulated resource loading time
	QuitAfter int           `yaml:"quit_after"` // frames before the scene asks to quit, 0 = never
	Next      []string      `yaml:"next"`
	Bounds    RectDef       `yaml:"bounds"`
	Entities  []EntityDef   `yaml:"entities"`
}

type RectDef struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// EntityDef describes one renderable spawned when the scene loads
type EntityDef struct {
	Kind   string  `yaml:"kind"` // "sprite2d" or "mesh3d"
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	VX     float64 `yaml:"vx"`   // pixels per second
	VY     float64 `yaml:"vy"`   // pixels per second
	Spin   float64 `yaml:"spin"` // radians per second
	Color  string  `yaml:"color"`
	Layer  int     `yaml:"layer"`
}

// Entity kinds accepted in EntityDef.Kind
const (
	KindSprite2D = "sprite2d"
	KindMesh3D   = "mesh3d"
)

// Lookup returns the definition for a scene type
func (c *Catalog) Lookup(sceneType string) (*SceneDef, bool) {
	for i := range c.Scenes {
		if c.Scenes[i].Type == sceneType {
			return &c.Scenes[i], true
		}
	}
	return nil, false
}

// Validate checks the catalog for malformed definitions.
// Unknown types in start or next lists are left for the orchestrator to reject
// when a transition requests them.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		if s.Type == "" {
			return fmt.Errorf("scenes[%d]: type is required", i)
		}
		if seen[s.Type] {
			return fmt.Errorf("scenes[%d]: duplicate type %q", i, s.Type)
		}
		seen[s.Type] = true

		for j, e := range s.Entities {
			switch e.Kind {
			case KindSprite2D, KindMesh3D:
			default:
				return fmt.Errorf("scene %q entities[%d]: unknown kind %q", s.Type, j, e.Kind)
			}
			if _, err := ParseColor(e.Color); err != nil {
				return fmt.Errorf("scene %q entities[%d]: %w", s.Type, j, err)
			}
		}
	}
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string is opaque white.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{255, 255, 255, 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
