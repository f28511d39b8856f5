package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/edgeview/go-trafficflow/tracker"
)

// Trails draws the centroid history of each track as a polyline with a
// circle marking the current position
func Trails(img *gocv.Mat, tracks []*tracker.Track, style TrailStyle) {

	for _, track := range tracks {

		objClr := trackColor(track.GetID())

		// determine style colors to use
		lineClr := objClr
		circleClr := objClr

		if !style.LineSame {
			lineClr = style.LineColor
		}

		if !style.CircleSame {
			circleClr = style.CircleColor
		}

		points := track.GetCentroids()

		if style.MaxPoints > 0 && len(points) > style.MaxPoints {
			points = points[len(points)-style.MaxPoints:]
		}

		if len(points) < 2 {
			continue
		}

		for i := 1; i < len(points); i++ {
			// draw line segment of trail
			gocv.Line(img,
				image.Pt(int(points[i-1].X), int(points[i-1].Y)),
				image.Pt(int(points[i].X), int(points[i].Y)),
				lineClr, style.LineThickness,
			)

			if i == len(points)-1 {
				// draw circle on current position
				gocv.Circle(img, image.Pt(int(points[i].X), int(points[i].Y)),
					style.CircleRadius, circleClr, -1)
			}
		}
	}
}
