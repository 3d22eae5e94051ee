package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserver_TriggerOnce(t *testing.T) {
	o := NewObserver()

	assert.False(t, o.Observe(0))
	assert.False(t, o.Observe(0.05))
	assert.False(t, o.InView())

	assert.True(t, o.Observe(0.1))
	// scrolled away again, stays revealed
	assert.True(t, o.Observe(0))
	assert.True(t, o.InView())
}

func TestObserver_Repeating(t *testing.T) {
	o := &Observer{Threshold: 0.5}

	assert.True(t, o.Observe(0.6))
	assert.False(t, o.Observe(0.2))
	assert.False(t, o.InView())
}

func TestEaseOut(t *testing.T) {
	assert.Equal(t, 0.0, EaseOut(0))
	assert.Equal(t, 1.0, EaseOut(1))
	assert.Equal(t, 1.0, EaseOut(2))
	assert.InDelta(t, 0.875, EaseOut(0.5), 1e-12)
}

func TestTween(t *testing.T) {
	tw := Tween{Delay: time.Second, Duration: 2 * time.Second, From: 10, To: 20}

	assert.Equal(t, 10.0, tw.At(0))
	assert.Equal(t, 10.0, tw.At(time.Second))
	assert.InDelta(t, 18.75, tw.At(2*time.Second), 1e-9)
	assert.Equal(t, 20.0, tw.At(3*time.Second))
	assert.Equal(t, 20.0, tw.At(time.Hour))
	assert.Equal(t, 3*time.Second, tw.End())
}

func TestSkillBar_Width(t *testing.T) {
	bar := NewSkillBar(90, 1, 2)
	assert.Equal(t, 400*time.Millisecond, bar.Tween.Delay)

	// not before reveal, however long we wait
	assert.Equal(t, 0.0, bar.Width(false, time.Hour))

	assert.Equal(t, 0.0, bar.Width(true, 0))
	mid := bar.Width(true, bar.Tween.Delay+750*time.Millisecond)
	assert.Greater(t, mid, 0.0)
	assert.Less(t, mid, 90.0)

	assert.Equal(t, 90.0, bar.Width(true, bar.Tween.End()))
	assert.Equal(t, 90.0, bar.Width(true, bar.Tween.End()+time.Second))
}

func TestCountUp(t *testing.T) {
	c := NewCountUp(15)
	assert.Equal(t, 0.0, c.Value(0))
	assert.Equal(t, 7.5, c.Value(time.Second))
	assert.Equal(t, 15.0, c.Value(5*time.Second))
	assert.Equal(t, "15", c.Format(c.Value(2*time.Second)))

	cgpa := NewCountUp(9.53)
	assert.Equal(t, 2, cgpa.Decimals())
	assert.Equal(t, "9.53", cgpa.Format(cgpa.End))
	assert.Equal(t, "0.00", cgpa.Format(0))
}

func TestStaggerAndSeconds(t *testing.T) {
	assert.Equal(t, 700*time.Millisecond, Stagger(500*time.Millisecond, 100*time.Millisecond, 2))
	assert.Equal(t, "0.3s", Seconds(WordDelay(3)))
	assert.Equal(t, "0s", Seconds(WordDelay(0)))
}
