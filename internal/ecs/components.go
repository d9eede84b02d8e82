package ecs

import "image/color"

// Position represents an entity's world position in pixels
type Position struct {
	X, Y, Z float64
}

// Velocity represents movement speed in pixels per second
type Velocity struct {
	X, Y float64
}

// Rotation represents an entity's angle and angular speed in radians
type Rotation struct {
	Angle float64
	Spin  float64 // radians per second
}

// Shape describes how the entity is drawn
type Shape struct {
	Mesh   bool // 3D mesh instead of 2D sprite
	Width  float64
	Height float64
	Color  color.RGBA
	Layer  int
}

// Bounds is the rectangle moving entities bounce inside
type Bounds struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the bounds
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// Empty reports whether the bounds have no area
func (b Bounds) Empty() bool {
	return b.W <= 0 || b.H <= 0
}
