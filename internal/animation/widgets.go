package animation

import (
	"math"
	"strconv"
	"time"
)

const (
	skillBarDuration = 1500 * time.Millisecond
	categoryStep     = 200 * time.Millisecond
	skillStep        = 100 * time.Millisecond
	wordStep         = 100 * time.Millisecond
)

// SkillBar animates a proficiency bar from zero to its level
type SkillBar struct {
	Level int
	Tween Tween
}

// NewSkillBar builds the bar for the skill at (category, skill) index
func NewSkillBar(level, category, skill int) SkillBar {
	return SkillBar{
		Level: level,
		Tween: Tween{
			Delay:    Stagger(0, categoryStep, category) + Stagger(0, skillStep, skill),
			Duration: skillBarDuration,
			From:     0,
			To:       float64(level),
		},
	}
}

// Width returns the bar width in percent. A bar that has not been
// revealed stays at zero; elapsed counts from the reveal.
func (b SkillBar) Width(revealed bool, elapsed time.Duration) float64 {
	if !revealed {
		return 0
	}
	return b.Tween.At(elapsed)
}

// CountUp animates a stat counter from zero to End
type CountUp struct {
	End      float64
	Duration time.Duration
}

// NewCountUp returns the two second counter used by the About stats
func NewCountUp(end float64) CountUp {
	return CountUp{End: end, Duration: 2 * time.Second}
}

// Value returns the counter value at elapsed (linear progress)
func (c CountUp) Value(elapsed time.Duration) float64 {
	if c.Duration <= 0 || elapsed >= c.Duration {
		return c.End
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(c.Duration) * c.End
}

// Decimals is 2 for fractional end values and 0 otherwise
func (c CountUp) Decimals() int {
	if c.End != math.Trunc(c.End) {
		return 2
	}
	return 0
}

// Format renders v with the counter's precision
func (c CountUp) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', c.Decimals(), 64)
}

// WordDelay is the delay of the i-th word of the typed-in tagline
func WordDelay(i int) time.Duration {
	return Stagger(0, wordStep, i)
}
