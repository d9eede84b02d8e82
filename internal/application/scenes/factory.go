package scenes

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/younwookim/scenecore/internal/application/scene"
	"github.com/younwookim/scenecore/internal/domain/entity"
	"github.com/younwookim/scenecore/internal/infrastructure/config"
)

// idStride separates the entity IDs of scenes sharing a snapshot.
// ecs entity IDs are 32-bit, so a scene never reaches the next scene's range.
const idStride = 1 << 32

// Router decides next scenes ahead of the catalog.
// ok is false when it has no rule for current.
type Router interface {
	NextScenes(current []string) (next []string, ok bool, err error)
}

// Options configures a Factory
type Options struct {
	LoadingType scene.Type
	DT          float64 // seconds per logic tick
	ScreenW     int
	ScreenH     int
	Router      Router // optional
}

// Factory builds scenes from a catalog and routes transitions.
//
// Routing asks the Router first, if set; otherwise the first current scene's
// next list decides, and an empty current set starts from the catalog's start list.
// CreateScene and NextScenes are safe to call from the loader goroutine.
type Factory struct {
	catalog *config.Catalog
	opts    Options
	log     *zap.Logger

	serial atomic.Uint32
}

// NewFactory creates a factory over catalog
func NewFactory(catalog *config.Catalog, opts Options, log *zap.Logger) *Factory {
	return &Factory{
		catalog: catalog,
		opts:    opts,
		log:     log.Named("factory"),
	}
}

// CreateScene implements scene.Factory
func (f *Factory) CreateScene(t scene.Type) scene.Scene {
	idBase := entity.EntityID(f.serial.Add(1)) * idStride

	if t == f.opts.LoadingType {
		return NewLoading(t, f.opts.DT, float64(f.opts.ScreenW)/2, float64(f.opts.ScreenH)/2, idBase)
	}

	def, ok := f.catalog.Lookup(string(t))
	if !ok {
		f.log.Warn("unknown scene type", zap.String("type", string(t)))
		return nil
	}
	return NewCatalogScene(def, f.opts.DT, idBase)
}

// NextScenes implements scene.Factory
func (f *Factory) NextScenes(current []scene.Type) []scene.Type {
	names := make([]string, len(current))
	for i, t := range current {
		names[i] = string(t)
	}

	if f.opts.Router != nil {
		next, ok, err := f.opts.Router.NextScenes(names)
		if err != nil {
			f.log.Error("router failed", zap.Strings("current", names), zap.Error(err))
			return nil
		}
		if ok {
			return toTypes(next)
		}
	}

	if len(current) == 0 {
		return toTypes(f.catalog.Start)
	}
	def, ok := f.catalog.Lookup(names[0])
	if !ok {
		return nil
	}
	return toTypes(def.Next)
}

func toTypes(names []string) []scene.Type {
	types := make([]scene.Type, len(names))
	for i, n := range names {
		types[i] = scene.Type(n)
	}
	return types
}
