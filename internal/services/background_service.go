package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"shrikavin.dev/internal/background"
)

const (
	// MaxViewport bounds each viewport dimension a client may request
	MaxViewport = 8192
	// MaxSnapshotSteps bounds the steps simulated for one snapshot
	MaxSnapshotSteps = 3600
	// MaxFPS bounds the stream frame rate
	MaxFPS = 120
)

// ErrInvalidViewport is returned for viewport sizes out of range
var ErrInvalidViewport = errors.New("invalid viewport")

// BackgroundService creates and drives particle fields
type BackgroundService struct {
	fps    int
	seed   func() uint64
	logger *log.Logger
}

// NewBackgroundService creates a service that streams at fps frames per
// second
func NewBackgroundService(fps int, logger *log.Logger) *BackgroundService {
	if fps <= 0 {
		fps = 30
	}
	fps = min(fps, MaxFPS)
	if logger == nil {
		logger = log.Default()
	}
	return &BackgroundService{
		fps:    fps,
		seed:   func() uint64 { return uint64(time.Now().UnixNano()) },
		logger: logger,
	}
}

// FPS returns the stream frame rate
func (s *BackgroundService) FPS() int {
	return s.fps
}

// CheckViewport validates a viewport size
func CheckViewport(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) {
		return ErrInvalidViewport
	}
	if width < 0 || height < 0 || width > MaxViewport || height > MaxViewport {
		return ErrInvalidViewport
	}
	return nil
}

// NewField creates a field for a viewport
func (s *BackgroundService) NewField(width, height float64) (*background.Field, error) {
	if err := CheckViewport(width, height); err != nil {
		return nil, err
	}
	return background.NewField(width, height, s.seed()), nil
}

// Snapshot simulates steps frames of a seeded field and returns the last
// one. The same seed always yields the same snapshot.
func (s *BackgroundService) Snapshot(width, height float64, steps int, seed uint64) (background.Snapshot, error) {
	if err := CheckViewport(width, height); err != nil {
		return background.Snapshot{}, err
	}
	if steps < 0 || steps > MaxSnapshotSteps {
		return background.Snapshot{}, errors.New("steps out of range")
	}
	f := background.NewField(width, height, seed)
	f.Run(steps)
	return f.Snapshot(float64(steps) / float64(s.fps)), nil
}

// Stream steps field once per frame and offers each snapshot on out. A
// frame the consumer is not ready for is dropped. Stream returns when ctx
// is done.
func (s *BackgroundService) Stream(ctx context.Context, field *background.Field, out chan<- background.Snapshot) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()

	start := time.Now()
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			if dropped > 0 {
				s.logger.Printf("[Background] stream closed, %d frames dropped", dropped)
			}
			return ctx.Err()
		case now := <-ticker.C:
			field.Step()
			snap := field.Snapshot(now.Sub(start).Seconds())
			select {
			case out <- snap:
			default:
				dropped++
			}
		}
	}
}
