package congestion

import (
	"math"

	clipper "github.com/ctessum/go.clipper"

	"github.com/edgeview/go-trafficflow/tracker"
)

// clipperScale converts sub-pixel box coordinates to the integer grid the
// clipper library operates on
const clipperScale = 100.0

// unionArea returns the total area covered by the boxes with overlapping
// regions counted once, by unioning the box polygons
func unionArea(boxes []tracker.Box) float64 {

	c := clipper.NewClipper(clipper.IoNone)
	added := false

	for _, b := range boxes {
		// degenerate boxes contribute nothing
		if b.Area() == 0 {
			continue
		}

		path := clipper.Path{
			&clipper.IntPoint{X: clipper.CInt(b.X1 * clipperScale), Y: clipper.CInt(b.Y1 * clipperScale)},
			&clipper.IntPoint{X: clipper.CInt(b.X2 * clipperScale), Y: clipper.CInt(b.Y1 * clipperScale)},
			&clipper.IntPoint{X: clipper.CInt(b.X2 * clipperScale), Y: clipper.CInt(b.Y2 * clipperScale)},
			&clipper.IntPoint{X: clipper.CInt(b.X1 * clipperScale), Y: clipper.CInt(b.Y2 * clipperScale)},
		}

		c.AddPath(path, clipper.PtSubject, true)
		added = true
	}

	if !added {
		return 0
	}

	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		// union failed, fall back to the plain sum
		return sumArea(boxes)
	}

	// holes carry the opposite orientation so summing signed areas
	// subtracts them from their outer contour
	total := 0.0

	for _, path := range solution {
		total += signedArea(path)
	}

	return math.Abs(total) / (clipperScale * clipperScale)
}

// signedArea computes the signed shoelace area of a closed path
func signedArea(path clipper.Path) float64 {

	n := len(path)

	if n < 3 {
		return 0
	}

	area := 0.0

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += float64(path[i].X)*float64(path[j].Y) -
			float64(path[j].X)*float64(path[i].Y)
	}

	return area / 2.0
}
