// Package background simulates the decorative particle field drawn
// behind the hero section.
package background

import (
	"math"
	"sync"
)

const (
	maxParticles    = 150
	areaPerParticle = 8000.0
	waveCount       = 3
	attractRadius   = 100.0
	attractStrength = 0.01
	bounceDamping   = -0.8
	friction        = 0.99
	waveMaxRadius   = 300.0
	waveBaseOpacity = 0.1
	linkDistance    = 120.0
	linkMaxOpacity  = 0.3
	shapeCount      = 5
)

// Field is the particle and wave simulation. It is safe for concurrent
// use: pointer and resize events may arrive while frames are stepped.
type Field struct {
	mu        sync.Mutex
	surface   Surface
	particles []Particle
	waves     []Wave
	pointer   Vec
	frame     uint64
	rng       *RNG
}

// NewField creates a field for the given surface
func NewField(width, height float64, seed uint64) *Field {
	f := &Field{rng: NewRNG(seed)}
	f.reset(Surface{Width: width, Height: height})
	return f
}

// ParticleCount returns how many particles a surface holds
func ParticleCount(s Surface) int {
	n := int(math.Floor(s.Area() / areaPerParticle))
	if n > maxParticles {
		return maxParticles
	}
	return n
}

// Resize recreates particles and waves for a new surface
func (f *Field) Resize(width, height float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset(Surface{Width: width, Height: height})
}

// SetPointer records the last known pointer position
func (f *Field) SetPointer(x, y float64) {
	f.mu.Lock()
	f.pointer = Vec{x, y}
	f.mu.Unlock()
}

// Surface returns the current drawing surface
func (f *Field) Surface() Surface {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.surface
}

// Particles returns a copy of the current particles
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Waves returns a copy of the current waves
func (f *Field) Waves() []Wave {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Wave, len(f.waves))
	copy(out, f.waves)
	return out
}

// Frame returns the number of steps taken since the last reset
func (f *Field) Frame() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// Step advances the simulation by one display frame
func (f *Field) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.particles {
		f.stepParticle(&f.particles[i])
	}
	for i := range f.waves {
		f.stepWave(&f.waves[i])
	}
	f.frame++
}

// Run steps the field n times
func (f *Field) Run(n int) {
	for i := 0; i < n; i++ {
		f.Step()
	}
}

func (f *Field) reset(s Surface) {
	f.surface = s
	f.frame = 0

	n := ParticleCount(s)
	f.particles = make([]Particle, 0, n)
	for i := 0; i < n; i++ {
		f.particles = append(f.particles, f.newParticle())
	}

	f.waves = nil
	if s.Empty() {
		return
	}
	f.waves = make([]Wave, 0, waveCount)
	for i := 0; i < waveCount; i++ {
		f.waves = append(f.waves, Wave{
			Center:  f.randomPoint(),
			Opacity: waveBaseOpacity,
			Speed:   f.rng.Range(0.5, 1),
		})
	}
}

func (f *Field) newParticle() Particle {
	return Particle{
		Pos:     f.randomPoint(),
		Vel:     f.randomVelocity(),
		Size:    f.rng.Range(1, 4),
		Opacity: f.rng.Range(0.2, 0.8),
		Color:   f.rng.Choice(Palette),
		Life:    f.rng.Range(0, 100),
		MaxLife: f.rng.Range(100, 200),
	}
}

func (f *Field) randomPoint() Vec {
	return Vec{f.rng.Float64() * f.surface.Width, f.rng.Float64() * f.surface.Height}
}

func (f *Field) randomVelocity() Vec {
	return Vec{f.rng.Range(-0.5, 0.5), f.rng.Range(-0.5, 0.5)}
}

func (f *Field) stepParticle(p *Particle) {
	// Pointer attraction
	d := f.pointer.Sub(p.Pos)
	dist := d.Len()
	if dist > 0 && dist < attractRadius {
		force := (attractRadius - dist) / attractRadius
		p.Vel = p.Vel.Add(d.Scale(force * attractStrength / dist))
	}

	p.Pos = p.Pos.Add(p.Vel)

	p.Life++
	if p.Life > p.MaxLife {
		p.Life = 0
		p.Pos = f.randomPoint()
		p.Vel = f.randomVelocity()
	}

	if p.Pos.X < 0 || p.Pos.X > f.surface.Width {
		p.Vel.X *= bounceDamping
	}
	if p.Pos.Y < 0 || p.Pos.Y > f.surface.Height {
		p.Vel.Y *= bounceDamping
	}

	p.Vel = p.Vel.Scale(friction)
}

func (f *Field) stepWave(w *Wave) {
	w.Radius += w.Speed
	w.Opacity = math.Max(0, waveBaseOpacity-(w.Radius/waveMaxRadius)*waveBaseOpacity)

	if w.Radius > waveMaxRadius {
		w.Radius = 0
		w.Center = f.randomPoint()
		w.Opacity = waveBaseOpacity
	}
}
