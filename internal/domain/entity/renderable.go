package entity

import "image/color"

// EntityID is a unique identifier for a renderable entity.
// The high 32 bits name the producing scene, the low 32 bits the entity within it.
type EntityID uint64

// RenderKind selects how a backend interprets a Renderable
type RenderKind int

const (
	KindSprite2D RenderKind = iota
	KindMesh3D
)

// String returns the string representation of the render kind
func (k RenderKind) String() string {
	switch k {
	case KindSprite2D:
		return "Sprite2D"
	case KindMesh3D:
		return "Mesh3D"
	default:
		return "Unknown"
	}
}

// Transform places an entity in world space.
// 2D sprites ignore Z, ScaleZ and use Rotation as the angle around Z (radians).
type Transform struct {
	X, Y, Z                float64
	Rotation               float64
	ScaleX, ScaleY, ScaleZ float64
}

// Appearance holds the data a backend needs to draw an entity
type Appearance struct {
	Color  color.RGBA
	Width  float64
	Height float64
	Layer  int // Draw order, lower first
}

// Renderable is a render-ready entity descriptor
type Renderable struct {
	ID         EntityID
	Kind       RenderKind
	Transform  Transform
	Appearance Appearance
}

// Snapshot is the complete set of renderables produced by one logic tick.
// A new snapshot always replaces the previous one; snapshots are never merged.
type Snapshot struct {
	Frame    uint64
	Entities []Renderable
}

// Len returns the number of renderables in the snapshot
func (s Snapshot) Len() int {
	return len(s.Entities)
}
