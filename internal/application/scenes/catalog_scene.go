package scenes

import (
	"errors"
	"fmt"
	"time"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/entity"
	"github.com/younwookim/scenecore/internal/ecs"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
)

var (
	errAlreadyLoaded = errors.New("scene already loaded")
	errNotLoaded     = errors.New("scene not loaded")
)

// CatalogScene is a data-driven scene built from a catalog definition.
// Load spawns the defined entities; Run moves them and counts frames.
type CatalogScene struct {
	def    *config.SceneDef
	dt     float64
	idBase entity.EntityID

	world  *ecs.World
	frames int
}

// NewCatalogScene creates an unloaded scene for def
func NewCatalogScene(def *config.SceneDef, dt float64, idBase entity.EntityID) *CatalogScene {
	return &CatalogScene{
		def:    def,
		dt:     dt,
		idBase: idBase,
	}
}

// Type implements scene.Scene
func (s *CatalogScene) Type() scene.Type { return scene.Type(s.def.Type) }

// Load implements scene.Scene. It blocks for the definition's load delay,
// standing in for resource loading.
func (s *CatalogScene) Load() error {
	if s.world != nil {
		return errAlreadyLoaded
	}
	if s.def.LoadDelay > 0 {
		time.Sleep(s.def.LoadDelay)
	}

	w := ecs.NewWorld()
	w.Bounds = ecs.Bounds{X: s.def.Bounds.X, Y: s.def.Bounds.Y, W: s.def.Bounds.W, H: s.def.Bounds.H}

	for i, e := range s.def.Entities {
		c, err := config.ParseColor(e.Color)
		if err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
		w.CreateSprite(
			ecs.Position{X: e.X, Y: e.Y, Z: e.Z},
			ecs.Velocity{X: e.VX, Y: e.VY},
			ecs.Rotation{Spin: e.Spin},
			ecs.Shape{
				Mesh:   e.Kind == config.KindMesh3D,
				Width:  e.Width,
				Height: e.Height,
				Color:  c,
				Layer:  e.Layer,
			},
		)
	}

	s.world = w
	return nil
}

// Run implements scene.Scene
func (s *CatalogScene) Run() error {
	if s.world == nil {
		return errNotLoaded
	}
	ecs.MovementSystem(s.world, s.dt)
	s.frames++
	return nil
}

// ShouldQuit implements scene.Scene
func (s *CatalogScene) ShouldQuit() bool {
	return s.def.QuitAfter > 0 && s.frames >= s.def.QuitAfter
}

// AppendRenderables implements scene.RenderableSource
func (s *CatalogScene) AppendRenderables(dst []entity.Renderable) []entity.Renderable {
	if s.world == nil {
		return dst
	}
	return ecs.RenderSystem(s.world, s.idBase, dst)
}

// Frames returns how many ticks the scene has run
func (s *CatalogScene) Frames() int { return s.frames }
