// Package scenes provides the concrete scenes and the factory that builds them
// from the scene catalog.
package scenes

import (
	"image/color"
	"math"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/entity"
)

const (
	spinnerDots   = 8
	spinnerRadius = 16.0
	spinnerDot    = 4.0
	spinnerSpeed  = 2 * math.Pi // radians per second
)

var colorSpinner = color.RGBA{220, 220, 240, 255}

// Loading is the scene shown while the next scene set loads.
// It draws a spinner of fading dots around the screen center.
type Loading struct {
	typ     scene.Type
	dt      float64
	centerX float64
	centerY float64
	idBase  entity.EntityID

	frames int
	angle  float64
}

// NewLoading creates a loading scene centered at (centerX, centerY)
func NewLoading(t scene.Type, dt, centerX, centerY float64, idBase entity.EntityID) *Loading {
	return &Loading{
		typ:     t,
		dt:      dt,
		centerX: centerX,
		centerY: centerY,
		idBase:  idBase,
	}
}

// Type implements scene.Scene
func (l *Loading) Type() scene.Type { return l.typ }

// Load implements scene.Scene
func (l *Loading) Load() error {
	l.frames = 0
	l.angle = 0
	return nil
}

// Run implements scene.Scene
func (l *Loading) Run() error {
	l.frames++
	l.angle = math.Mod(l.angle+spinnerSpeed*l.dt, 2*math.Pi)
	return nil
}

// ShouldQuit implements scene.Scene. The orchestrator replaces the loading
// scene when loading finishes, so it never asks to quit.
func (l *Loading) ShouldQuit() bool { return false }

// Frames returns how many ticks the loading scene has run
func (l *Loading) Frames() int { return l.frames }

// AppendRenderables implements scene.RenderableSource
func (l *Loading) AppendRenderables(dst []entity.Renderable) []entity.Renderable {
	for i := 0; i < spinnerDots; i++ {
		a := l.angle + float64(i)*2*math.Pi/spinnerDots
		c := colorSpinner
		c.A = uint8(255 * (i + 1) / spinnerDots)
		dst = append(dst, entity.Renderable{
			ID:   l.idBase + entity.EntityID(i+1),
			Kind: entity.KindSprite2D,
			Transform: entity.Transform{
				X:      l.centerX + spinnerRadius*math.Cos(a) - spinnerDot/2,
				Y:      l.centerY + spinnerRadius*math.Sin(a) - spinnerDot/2,
				ScaleX: 1, ScaleY: 1, ScaleZ: 1,
			},
			Appearance: entity.Appearance{
				Color:  c,
				Width:  spinnerDot,
				Height: spinnerDot,
				Layer:  100,
			},
		})
	}
	return dst
}
