package background

import "math"

// ParticleView is a particle as drawn in one frame
type ParticleView struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Glow    float64 `json:"glow"`
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color"`
}

// WaveView is a wave ring as drawn in one frame
type WaveView struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Opacity float64 `json:"opacity"`
}

// Shape is one of the rotating triangles
type Shape struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
}

// Link is a connection line between two nearby particles
type Link struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Opacity float64 `json:"opacity"`
}

// Snapshot is everything needed to draw one frame
type Snapshot struct {
	Frame     uint64         `json:"frame"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Particles []ParticleView `json:"particles"`
	Waves     []WaveView     `json:"waves"`
	Shapes    []Shape        `json:"shapes"`
	Links     []Link         `json:"links"`
}

// Snapshot captures the field for drawing at time t (seconds)
func (f *Field) Snapshot(t float64) Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		Frame:     f.frame,
		Width:     f.surface.Width,
		Height:    f.surface.Height,
		Particles: make([]ParticleView, len(f.particles)),
		Waves:     make([]WaveView, len(f.waves)),
		Links:     Links(f.particles),
	}

	for i, p := range f.particles {
		pulse := math.Sin(t+float64(i))*0.5 + 0.5
		size := p.Size * (0.5 + pulse*0.5)
		snap.Particles[i] = ParticleView{
			X:       p.Pos.X,
			Y:       p.Pos.Y,
			Size:    size,
			Glow:    size * 3,
			Opacity: p.Opacity,
			Color:   p.Color,
		}
	}
	for i, w := range f.waves {
		snap.Waves[i] = WaveView{X: w.Center.X, Y: w.Center.Y, Radius: w.Radius, Opacity: w.Opacity}
	}
	if !f.surface.Empty() {
		snap.Shapes = Shapes(f.surface, t)
	}
	return snap
}

// Shapes returns the rotating triangles for time t
func Shapes(s Surface, t float64) []Shape {
	shapes := make([]Shape, shapeCount)
	for i := range shapes {
		fi := float64(i)
		shapes[i] = Shape{
			X:        s.Width*0.1 + math.Sin(t+fi)*100,
			Y:        s.Height*0.1 + math.Cos(t+fi*0.5)*50 + fi*150,
			Size:     20 + math.Sin(t+fi)*10,
			Rotation: t + fi,
		}
	}
	return shapes
}

// Links returns connection lines between particle pairs closer than the
// link distance. Each pair appears once with From < To.
func Links(particles []Particle) []Link {
	var links []Link
	for i := range particles {
		for j := i + 1; j < len(particles); j++ {
			d := particles[i].Pos.Sub(particles[j].Pos).Len()
			if d < linkDistance {
				links = append(links, Link{
					From:    i,
					To:      j,
					Opacity: (1 - d/linkDistance) * linkMaxOpacity,
				})
			}
		}
	}
	return links
}
