package speed

import (
	"fmt"

	"github.com/edgeview/go-trafficflow/tracker"
)

// DefaultPixelsPerMeter is the default pixel estimator calibration factor
const DefaultPixelsPerMeter = 20.0

// PixelEstimator converts pixel motion to real world speed using a flat
// pixels per meter calibration ratio.  Fast but less accurate than the
// homography based estimator for scenes with perspective
type PixelEstimator struct {
	fps            float64
	pixelsPerMeter float64
}

// NewPixelEstimator creates a new pixel ratio speed estimator.  Both fps
// and pixelsPerMeter must be positive
func NewPixelEstimator(fps, pixelsPerMeter float64) (*PixelEstimator, error) {

	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}

	if pixelsPerMeter <= 0 {
		return nil, fmt.Errorf("pixelsPerMeter must be positive, got %v",
			pixelsPerMeter)
	}

	return &PixelEstimator{
		fps:            fps,
		pixelsPerMeter: pixelsPerMeter,
	}, nil
}

// PixelsToSpeed converts a pixels per frame speed to km/h
func (e *PixelEstimator) PixelsToSpeed(pixelsPerFrame float64) float64 {

	// pixels/frame -> meters/frame
	metersPerFrame := pixelsPerFrame / e.pixelsPerMeter

	// meters/frame -> meters/second
	metersPerSecond := metersPerFrame * e.fps

	return metersPerSecond * msToKmh
}

// Convert returns the speed in km/h for a pixel displacement between two
// consecutive frame centroids
func (e *PixelEstimator) Convert(prev, curr tracker.Point) (float64, error) {
	return e.PixelsToSpeed(prev.Distance(curr)), nil
}

// Calibrate recalibrates the estimator from a known pixel distance and its
// real world meter equivalent
func (e *PixelEstimator) Calibrate(knownDistancePixels,
	knownDistanceMeters float64) error {

	if knownDistancePixels <= 0 || knownDistanceMeters <= 0 {
		return fmt.Errorf("calibration distances must be positive, got %v px and %v m",
			knownDistancePixels, knownDistanceMeters)
	}

	e.pixelsPerMeter = knownDistancePixels / knownDistanceMeters

	return nil
}

// PixelsPerMeter returns the current calibration factor
func (e *PixelEstimator) PixelsPerMeter() float64 {
	return e.pixelsPerMeter
}
