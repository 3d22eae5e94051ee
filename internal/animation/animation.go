// Package animation models the page's entrance animations: visibility
// observers, eased tweens, staggered delays, skill bar widths and
// count-up counters. Everything here is a pure function of elapsed time
// so the server can emit the same schedule the browser plays.
package animation

import (
	"math"
	"strconv"
	"time"
)

// DefaultThreshold is the visible fraction that triggers a reveal
const DefaultThreshold = 0.1

// Observer tracks whether an element has crossed into view
type Observer struct {
	Threshold float64
	Once      bool

	triggered bool
	inView    bool
}

// NewObserver returns the observer used by every section
func NewObserver() *Observer {
	return &Observer{Threshold: DefaultThreshold, Once: true}
}

// Observe feeds the currently visible ratio and reports whether the
// element counts as in view
func (o *Observer) Observe(ratio float64) bool {
	if o.Once && o.triggered {
		return true
	}
	o.inView = ratio > 0 && ratio >= o.Threshold
	if o.inView {
		o.triggered = true
	}
	return o.inView
}

// InView reports the last observed state
func (o *Observer) InView() bool {
	if o.Once {
		return o.triggered
	}
	return o.inView
}

// EaseOut is a cubic ease-out curve on [0, 1]
func EaseOut(p float64) float64 {
	p = clamp01(p)
	return 1 - math.Pow(1-p, 3)
}

// Tween interpolates From..To over Duration after Delay
type Tween struct {
	Delay    time.Duration
	Duration time.Duration
	From     float64
	To       float64
}

// Progress returns the linear progress in [0, 1] at elapsed
func (t Tween) Progress(elapsed time.Duration) float64 {
	if elapsed <= t.Delay {
		return 0
	}
	if t.Duration <= 0 {
		return 1
	}
	return clamp01(float64(elapsed-t.Delay) / float64(t.Duration))
}

// At returns the eased value at elapsed
func (t Tween) At(elapsed time.Duration) float64 {
	p := t.Progress(elapsed)
	if p >= 1 {
		return t.To
	}
	return t.From + (t.To-t.From)*EaseOut(p)
}

// End returns the time at which the tween finishes
func (t Tween) End() time.Duration {
	return t.Delay + t.Duration
}

// Stagger returns the delay of the i-th child
func Stagger(base, step time.Duration, i int) time.Duration {
	return base + time.Duration(i)*step
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Seconds formats a duration as CSS seconds, e.g. "0.3s"
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}
