package ffprobe

import (
	"context"
	"fmt"
	"math"
)

// DurationTolerance bounds how far a probed duration may drift from the
// recording metadata's expected duration before DurationVerifier reports
// a mismatch.
const DurationTolerance = 5 * 60 // seconds

// DurationVerifier is a manager.InputVerifier backed by ffprobe: a
// best-effort sanity check that the resolved input actually matches the
// recording it claims to be, run before spawn (SPEC_FULL.md §4).
type DurationVerifier struct{}

// Verify probes inputPath and compares its duration against
// expectedDurationSeconds. A probe failure or a duration this far off is
// reported as an error for the caller to log; it is never fatal to
// promotion.
func (DurationVerifier) Verify(_ context.Context, inputPath string, expectedDurationSeconds float64) error {
	result, err := Probe(inputPath)
	if err != nil {
		return fmt.Errorf("ffprobe: verify %s: %w", inputPath, err)
	}

	actual, err := result.GetDuration()
	if err != nil {
		return fmt.Errorf("ffprobe: verify %s: %w", inputPath, err)
	}

	if expectedDurationSeconds <= 0 {
		return nil
	}

	if math.Abs(actual-expectedDurationSeconds) > DurationTolerance {
		return fmt.Errorf("ffprobe: %s: probed duration %.0fs differs from expected %.0fs by more than %ds",
			inputPath, actual, expectedDurationSeconds, DurationTolerance)
	}

	return nil
}
