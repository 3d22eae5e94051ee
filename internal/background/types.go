package background

import "math"

// Vec represents a 2D coordinate or velocity
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the sum of two vectors
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Scale multiplies both components by s
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

// Len returns the euclidean length
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Surface is the drawing area the field lives on
type Surface struct {
	Width, Height float64
}

// Empty reports whether there is nothing to draw on
func (s Surface) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Area returns the surface area, zero for an empty surface
func (s Surface) Area() float64 {
	if s.Empty() {
		return 0
	}
	return s.Width * s.Height
}

// Contains checks if a point lies within the surface, edges included
func (s Surface) Contains(p Vec) bool {
	return p.X >= 0 && p.X <= s.Width && p.Y >= 0 && p.Y <= s.Height
}

// Particle is a moving dot of the field
type Particle struct {
	Pos     Vec
	Vel     Vec
	Size    float64
	Opacity float64
	Color   string
	Life    float64
	MaxLife float64
}

// Wave is an expanding ring
type Wave struct {
	Center  Vec
	Radius  float64
	Opacity float64
	Speed   float64
}

// Palette is the fixed set of particle colours
var Palette = []string{
	"rgba(99, 102, 241, 0.8)",
	"rgba(139, 92, 246, 0.8)",
	"rgba(168, 85, 247, 0.8)",
	"rgba(236, 72, 153, 0.8)",
	"rgba(59, 130, 246, 0.8)",
}
