package speed

import (
	"errors"
	"testing"

	"github.com/edgeview/go-trafficflow/tracker"
)

// squareCalibration returns correspondences mapping a 100 pixel square onto
// a 10 meter square, a uniform 10 px/m scale
func squareCalibration() ([]tracker.Point, []tracker.Point) {

	imagePoints := []tracker.Point{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
	}

	worldPoints := []tracker.Point{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}

	return imagePoints, worldPoints
}

func TestHomographyNotCalibrated(t *testing.T) {

	est, err := NewHomographyEstimator(30, nil, nil)

	if err != nil {
		t.Fatalf("error creating estimator: %v", err)
	}

	if est.IsCalibrated() {
		t.Error("estimator must start uncalibrated")
	}

	_, err = est.Convert(tracker.Point{}, tracker.Point{X: 1})

	if !errors.Is(err, ErrNotCalibrated) {
		t.Errorf("expected ErrNotCalibrated, got %v", err)
	}

	_, err = est.ImageToWorld(tracker.Point{X: 5, Y: 5})

	if !errors.Is(err, ErrNotCalibrated) {
		t.Errorf("expected ErrNotCalibrated, got %v", err)
	}

	_, err = est.ProjectWorldGrid(1, 10)

	if !errors.Is(err, ErrNotCalibrated) {
		t.Errorf("expected ErrNotCalibrated, got %v", err)
	}
}

func TestHomographyValidation(t *testing.T) {

	if _, err := NewHomographyEstimator(0, nil, nil); err == nil {
		t.Error("expected error for zero fps")
	}

	est, err := NewHomographyEstimator(30, nil, nil)

	if err != nil {
		t.Fatalf("error creating estimator: %v", err)
	}

	// three correspondences are not enough for a projective transform
	short := []tracker.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}

	if err := est.ComputeHomography(short, short); err == nil {
		t.Error("expected error for fewer than 4 correspondences")
	}

	imagePoints, worldPoints := squareCalibration()

	if err := est.ComputeHomography(imagePoints, worldPoints[:3]); err == nil {
		t.Error("expected error for mismatched point counts")
	}
}

func TestHomographyKnownMapping(t *testing.T) {

	imagePoints, worldPoints := squareCalibration()

	est, err := NewHomographyEstimator(30, imagePoints, worldPoints)

	if err != nil {
		t.Fatalf("error creating estimator: %v", err)
	}

	if !est.IsCalibrated() {
		t.Fatal("estimator must be calibrated after construction")
	}

	// center of the image square maps to center of the world square
	world, err := est.ImageToWorld(tracker.Point{X: 50, Y: 50})

	if err != nil {
		t.Fatalf("unexpected transform error: %v", err)
	}

	if !almostEqual(world.X, 5.0, 1e-3) || !almostEqual(world.Y, 5.0, 1e-3) {
		t.Errorf("expected world (5,5), got (%v,%v)", world.X, world.Y)
	}

	// round trip through the inverse returns the original point
	img, err := est.WorldToImage(world)

	if err != nil {
		t.Fatalf("unexpected inverse transform error: %v", err)
	}

	if !almostEqual(img.X, 50.0, 1e-3) || !almostEqual(img.Y, 50.0, 1e-3) {
		t.Errorf("expected image (50,50), got (%v,%v)", img.X, img.Y)
	}

	// 10 image pixels is 1 meter under this calibration
	meters, err := est.WorldDistance(tracker.Point{X: 0, Y: 0},
		tracker.Point{X: 10, Y: 0})

	if err != nil {
		t.Fatalf("unexpected distance error: %v", err)
	}

	if !almostEqual(meters, 1.0, 1e-3) {
		t.Errorf("expected 1.0 m, got %v", meters)
	}

	// 1 m/frame at 30 fps is 108 km/h
	kmh, err := est.Convert(tracker.Point{X: 0, Y: 0},
		tracker.Point{X: 10, Y: 0})

	if err != nil {
		t.Fatalf("unexpected convert error: %v", err)
	}

	if !almostEqual(kmh, 108.0, 0.1) {
		t.Errorf("expected 108 km/h, got %v", kmh)
	}
}

func TestHomographyWorldGrid(t *testing.T) {

	imagePoints, worldPoints := squareCalibration()

	est, err := NewHomographyEstimator(30, imagePoints, worldPoints)

	if err != nil {
		t.Fatalf("error creating estimator: %v", err)
	}

	points, err := est.ProjectWorldGrid(5, 10)

	if err != nil {
		t.Fatalf("unexpected grid error: %v", err)
	}

	// 2x2 grid at 5 m spacing within 10 m
	if len(points) != 4 {
		t.Fatalf("expected 4 grid points, got %d", len(points))
	}

	// world origin maps back to the image origin
	if !almostEqual(points[0].X, 0, 1e-3) || !almostEqual(points[0].Y, 0, 1e-3) {
		t.Errorf("expected image origin, got (%v,%v)", points[0].X, points[0].Y)
	}

	if _, err := est.ProjectWorldGrid(0, 10); err == nil {
		t.Error("expected error for zero spacing")
	}
}
