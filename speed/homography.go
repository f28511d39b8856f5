package speed

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"github.com/edgeview/go-trafficflow/tracker"
)

// ErrNotCalibrated is returned when a homography estimator is queried
// before its projective transform has been computed
var ErrNotCalibrated = errors.New("homography matrix not computed, call ComputeHomography first")

const (
	// ransacReprojThreshold is the maximum reprojection error in pixels
	// for a correspondence to be treated as an inlier
	ransacReprojThreshold = 3.0
	// ransacMaxIters is the RANSAC iteration limit
	ransacMaxIters = 2000
	// ransacConfidence is the RANSAC confidence level
	ransacConfidence = 0.995
)

// HomographyEstimator converts pixel motion to real world speed by mapping
// image plane coordinates onto a ground plane coordinate system through a
// projective transform estimated from point correspondences
type HomographyEstimator struct {
	fps float64
	// h maps image coordinates to world coordinates, hinv the reverse.
	// Both are nil until ComputeHomography succeeds
	h    *mat.Dense
	hinv *mat.Dense
}

// NewHomographyEstimator creates a new homography based speed estimator.
// When imagePoints and worldPoints are supplied the transform is computed
// immediately, otherwise the estimator stays uncalibrated until
// ComputeHomography is called.  fps must be positive
func NewHomographyEstimator(fps float64, imagePoints,
	worldPoints []tracker.Point) (*HomographyEstimator, error) {

	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", fps)
	}

	e := &HomographyEstimator{fps: fps}

	if imagePoints != nil || worldPoints != nil {
		if err := e.ComputeHomography(imagePoints, worldPoints); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ComputeHomography estimates the projective transform from at least four
// image point/world point correspondences.  RANSAC is used so a noisy
// correspondence does not corrupt the transform
func (e *HomographyEstimator) ComputeHomography(imagePoints,
	worldPoints []tracker.Point) error {

	if len(imagePoints) < 4 {
		return fmt.Errorf("need at least 4 point correspondences, got %d",
			len(imagePoints))
	}

	if len(imagePoints) != len(worldPoints) {
		return fmt.Errorf("image and world point counts differ, %d vs %d",
			len(imagePoints), len(worldPoints))
	}

	src := gocv.NewMatWithSize(len(imagePoints), 1, gocv.MatTypeCV64FC2)
	defer src.Close()

	dst := gocv.NewMatWithSize(len(worldPoints), 1, gocv.MatTypeCV64FC2)
	defer dst.Close()

	for i, p := range imagePoints {
		src.SetDoubleAt(i, 0, p.X)
		src.SetDoubleAt(i, 1, p.Y)
	}

	for i, p := range worldPoints {
		dst.SetDoubleAt(i, 0, p.X)
		dst.SetDoubleAt(i, 1, p.Y)
	}

	mask := gocv.NewMat()
	defer mask.Close()

	hm := gocv.FindHomography(src, &dst, gocv.HomographyMethodRANSAC,
		ransacReprojThreshold, &mask, ransacMaxIters, ransacConfidence)
	defer hm.Close()

	if hm.Empty() {
		return errors.New("failed to estimate homography from correspondences")
	}

	// copy the 3x3 transform out of the Mat so the hot path needs no
	// further gocv calls
	data := make([]float64, 0, 9)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data = append(data, hm.GetDoubleAt(r, c))
		}
	}

	h := mat.NewDense(3, 3, data)
	hinv := mat.NewDense(3, 3, nil)

	if err := hinv.Inverse(h); err != nil {
		return fmt.Errorf("estimated homography is not invertible: %w", err)
	}

	e.h = h
	e.hinv = hinv

	return nil
}

// IsCalibrated returns whether the projective transform has been computed
func (e *HomographyEstimator) IsCalibrated() bool {
	return e.h != nil
}

// applyTransform applies a 3x3 projective transform to a point
func applyTransform(m *mat.Dense, p tracker.Point) tracker.Point {

	w := m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)

	if w == 0 {
		// point at infinity
		return tracker.Point{}
	}

	return tracker.Point{
		X: (m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)) / w,
		Y: (m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)) / w,
	}
}

// ImageToWorld transforms an image plane coordinate to ground plane world
// coordinates in meters
func (e *HomographyEstimator) ImageToWorld(p tracker.Point) (tracker.Point, error) {

	if e.h == nil {
		return tracker.Point{}, ErrNotCalibrated
	}

	return applyTransform(e.h, p), nil
}

// WorldToImage transforms a ground plane world coordinate back to the
// image plane
func (e *HomographyEstimator) WorldToImage(p tracker.Point) (tracker.Point, error) {

	if e.hinv == nil {
		return tracker.Point{}, ErrNotCalibrated
	}

	return applyTransform(e.hinv, p), nil
}

// WorldDistance returns the ground plane distance in meters between two
// image plane points
func (e *HomographyEstimator) WorldDistance(p1, p2 tracker.Point) (float64, error) {

	w1, err := e.ImageToWorld(p1)

	if err != nil {
		return 0, err
	}

	w2, err := e.ImageToWorld(p2)

	if err != nil {
		return 0, err
	}

	return w1.Distance(w2), nil
}

// Convert returns the speed in km/h for an object that moved from prev to
// curr between two consecutive frames
func (e *HomographyEstimator) Convert(prev, curr tracker.Point) (float64, error) {

	meters, err := e.WorldDistance(prev, curr)

	if err != nil {
		return 0, err
	}

	// meters/frame -> meters/second -> km/h
	return meters * e.fps * msToKmh, nil
}

// ProjectWorldGrid inverse maps a regular ground plane grid into image
// coordinates for calibration visualization.  Grid points are generated
// from the world origin out to maxDistance meters in both axes at the
// given spacing.  Callers filter the returned points to the frame bounds
func (e *HomographyEstimator) ProjectWorldGrid(spacing,
	maxDistance float64) ([]tracker.Point, error) {

	if e.hinv == nil {
		return nil, ErrNotCalibrated
	}

	if spacing <= 0 || maxDistance <= 0 {
		return nil, fmt.Errorf("spacing and maxDistance must be positive, got %v and %v",
			spacing, maxDistance)
	}

	var points []tracker.Point

	for x := 0.0; x < maxDistance; x += spacing {
		for y := 0.0; y < maxDistance; y += spacing {
			points = append(points,
				applyTransform(e.hinv, tracker.Point{X: x, Y: y}))
		}
	}

	return points, nil
}
