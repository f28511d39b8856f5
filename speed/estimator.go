// Package speed converts per frame pixel motion of tracked objects into
// calibrated real world speeds and filters measurement noise
package speed

import (
	"github.com/edgeview/go-trafficflow/tracker"
)

// msToKmh converts meters per second to kilometers per hour
const msToKmh = 3.6

// Estimator converts the displacement between two consecutive frame
// centroids into a real world speed in km/h.  Implementations are selected
// once at session setup and are stateless per call
type Estimator interface {
	// Convert returns the speed in km/h for an object that moved from
	// prev to curr between two consecutive frames
	Convert(prev, curr tracker.Point) (float64, error)
}
