package speed

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultWindowSize is the default smoothing window length
	DefaultWindowSize = 5
	// DefaultOutlierThreshold is the default z-score above which a raw
	// sample is treated as an outlier
	DefaultOutlierThreshold = 3.0
)

// Smoother filters a stream of per track speed measurements with a moving
// average over a bounded window.  Detector jitter produces occasional
// extreme single frame spikes, so before a raw sample enters the window it
// is gated by its z-score against the existing window and substituted with
// the window mean if it exceeds the threshold.  One Smoother is held per
// track by the orchestrating caller
type Smoother struct {
	windowSize int
	threshold  float64
	window     []float64
}

// NewSmoother creates a new speed smoother.  A windowSize or threshold of
// zero or less uses the package defaults
func NewSmoother(windowSize int, outlierThreshold float64) *Smoother {

	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	if outlierThreshold <= 0 {
		outlierThreshold = DefaultOutlierThreshold
	}

	return &Smoother{
		windowSize: windowSize,
		threshold:  outlierThreshold,
		window:     make([]float64, 0, windowSize),
	}
}

// AddSpeed adds a new raw speed measurement and returns the smoothed value,
// the mean of the window after insertion.  Outliers are substituted with
// the prior window mean before insertion so a single bad sample cannot
// dominate the short window average
func (s *Smoother) AddSpeed(raw float64) float64 {

	if len(s.window) > 2 {
		mean := stat.Mean(s.window, nil)
		std := stat.StdDev(s.window, nil)

		if std > 0 {
			z := math.Abs((raw - mean) / std)

			if z > s.threshold {
				raw = mean
			}
		}
	}

	s.window = append(s.window, raw)

	if len(s.window) > s.windowSize {
		s.window = s.window[1:]
	}

	return stat.Mean(s.window, nil)
}

// Reset clears the window.  Used when a track id is known to have switched
// to a different physical object
func (s *Smoother) Reset() {
	s.window = s.window[:0]
}

// Len returns the number of samples currently held in the window
func (s *Smoother) Len() int {
	return len(s.window)
}
