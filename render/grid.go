package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/edgeview/go-trafficflow/speed"
)

// WorldGrid draws the projection of a regular ground plane grid onto the
// frame for homography calibration checks.  Grid points landing outside
// the frame bounds are skipped
func WorldGrid(img *gocv.Mat, est *speed.HomographyEstimator,
	spacing, maxDistance float64, clr color.RGBA, radius int) error {

	points, err := est.ProjectWorldGrid(spacing, maxDistance)

	if err != nil {
		return err
	}

	w := img.Cols()
	h := img.Rows()

	for _, p := range points {
		if p.X < 0 || p.X >= float64(w) || p.Y < 0 || p.Y >= float64(h) {
			continue
		}

		gocv.Circle(img, image.Pt(int(p.X), int(p.Y)), radius, clr, -1)
	}

	return nil
}
