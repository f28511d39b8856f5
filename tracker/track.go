package tracker

import (
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultMaxHistory is the default number of most recent observations
	// kept per track
	DefaultMaxHistory = 30
	// DefaultStoppedThreshold is the default speed in pixels per frame
	// below which a vehicle is considered stopped
	DefaultStoppedThreshold = 2.0
	// stoppedWindow is the number of recent speed samples averaged when
	// checking if a vehicle is stopped
	stoppedWindow = 5
)

// Track represents one physical object observed over multiple frames.  It
// keeps bounded FIFO histories of positions, bounding boxes, and speeds,
// with the oldest entries silently dropped once capacity is reached.
// Tracks are owned exclusively by the Manager, callers receiving a Track
// must treat it as a read only snapshot apart from AppendRealSpeed
type Track struct {
	// id is the identifier assigned by the upstream detector
	id int64
	// maxHistory is the bounded capacity of each history buffer
	maxHistory int
	// centroids is the position history, index aligned with boxes
	centroids []Point
	// boxes is the bounding box history
	boxes []Box
	// frames holds the frame index of each observation
	frames []int
	// pixelSpeeds holds speeds in pixels per frame between consecutive
	// centroids
	pixelSpeeds []float64
	// realSpeeds holds calibrated/smoothed real world speeds appended by
	// the caller
	realSpeeds []float64
	// latest known object class, last write wins
	classID   int
	className string
	// inclusive frame bounds of observed activity
	firstFrame int
	lastFrame  int
	// totalFrames is the number of frames this track was observed in
	totalFrames int
	// active indicates the track has not been evicted yet
	active bool
}

// NewTrack creates a new Track with the given history capacity.  A
// maxHistory of zero or less uses DefaultMaxHistory
func NewTrack(id int64, maxHistory int) *Track {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	return &Track{
		id:          id,
		maxHistory:  maxHistory,
		centroids:   make([]Point, 0, maxHistory),
		boxes:       make([]Box, 0, maxHistory),
		frames:      make([]int, 0, maxHistory),
		pixelSpeeds: make([]float64, 0, maxHistory),
		realSpeeds:  make([]float64, 0, maxHistory),
		classID:     -1,
		active:      true,
	}
}

// observe appends a new detection observation to the track histories and
// computes the pixel speed once two centroids exist.  Called by the Manager
// on every frame the track id reappears in
func (t *Track) observe(box Box, frameIdx int, classID int, className string) {

	c := box.Centroid()

	t.centroids = append(t.centroids, c)
	t.boxes = append(t.boxes, box)
	t.frames = append(t.frames, frameIdx)

	// drop oldest entries once capacity is exceeded
	if len(t.centroids) > t.maxHistory {
		t.centroids = t.centroids[1:]
		t.boxes = t.boxes[1:]
		t.frames = t.frames[1:]
	}

	if classID >= 0 {
		t.classID = classID
	}

	if className != "" {
		t.className = className
	}

	if t.totalFrames == 0 {
		t.firstFrame = frameIdx
	}

	t.lastFrame = frameIdx
	t.totalFrames++

	// first observation yields no speed sample
	if len(t.centroids) >= 2 {
		prev := t.centroids[len(t.centroids)-2]
		t.pixelSpeeds = append(t.pixelSpeeds, prev.Distance(c))

		if len(t.pixelSpeeds) > t.maxHistory {
			t.pixelSpeeds = t.pixelSpeeds[1:]
		}
	}
}

// AppendRealSpeed appends a calibrated/smoothed real world speed sample to
// the track history
func (t *Track) AppendRealSpeed(kmh float64) {
	t.realSpeeds = append(t.realSpeeds, kmh)

	if len(t.realSpeeds) > t.maxHistory {
		t.realSpeeds = t.realSpeeds[1:]
	}
}

// GetID returns the identifier assigned by the upstream detector
func (t *Track) GetID() int64 {
	return t.id
}

// GetCentroids returns the centroid history, oldest first.  The returned
// slice is the internal buffer and must not be modified
func (t *Track) GetCentroids() []Point {
	return t.centroids
}

// GetBoxes returns the bounding box history, oldest first.  The returned
// slice is the internal buffer and must not be modified
func (t *Track) GetBoxes() []Box {
	return t.boxes
}

// GetFrames returns the frame index of each observation.  The returned
// slice is the internal buffer and must not be modified
func (t *Track) GetFrames() []int {
	return t.frames
}

// GetPixelSpeeds returns the pixels per frame speed history.  The returned
// slice is the internal buffer and must not be modified
func (t *Track) GetPixelSpeeds() []float64 {
	return t.pixelSpeeds
}

// GetRealSpeeds returns the real world speed history.  The returned slice
// is the internal buffer and must not be modified
func (t *Track) GetRealSpeeds() []float64 {
	return t.realSpeeds
}

// GetClassID returns the latest known class id, or -1 if never set
func (t *Track) GetClassID() int {
	return t.classID
}

// GetClassName returns the latest known class label
func (t *Track) GetClassName() string {
	return t.className
}

// GetFirstFrame returns the frame index the track was first observed in
func (t *Track) GetFirstFrame() int {
	return t.firstFrame
}

// GetLastFrame returns the frame index the track was last observed in
func (t *Track) GetLastFrame() int {
	return t.lastFrame
}

// GetTotalFrames returns the number of frames the track was observed in
func (t *Track) GetTotalFrames() int {
	return t.totalFrames
}

// IsActive returns whether the track is still held by the Manager
func (t *Track) IsActive() bool {
	return t.active
}

// CurrentBox returns the most recent bounding box and false if no
// observation exists yet
func (t *Track) CurrentBox() (Box, bool) {
	if len(t.boxes) == 0 {
		return Box{}, false
	}

	return t.boxes[len(t.boxes)-1], true
}

// CurrentCentroid returns the most recent centroid and false if no
// observation exists yet
func (t *Track) CurrentCentroid() (Point, bool) {
	if len(t.centroids) == 0 {
		return Point{}, false
	}

	return t.centroids[len(t.centroids)-1], true
}

// PixelSpeed returns the speed in pixels per frame between the last two
// centroids, or 0 with fewer than two observations
func (t *Track) PixelSpeed() float64 {
	if len(t.centroids) < 2 {
		return 0
	}

	n := len(t.centroids)
	return t.centroids[n-2].Distance(t.centroids[n-1])
}

// AverageSpeedPixels returns the mean pixels per frame speed over the
// given number of most recent samples.  A window of zero or less averages
// the full history.  Returns 0 when no speed samples exist
func (t *Track) AverageSpeedPixels(window int) float64 {
	if len(t.pixelSpeeds) == 0 {
		return 0
	}

	recent := t.pixelSpeeds

	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	return stat.Mean(recent, nil)
}

// SmoothedSpeedPixels returns an exponentially smoothed pixels per frame
// speed over the full history using the given smoothing factor in (0,1]
func (t *Track) SmoothedSpeedPixels(alpha float64) float64 {
	if len(t.pixelSpeeds) == 0 {
		return 0
	}

	smoothed := t.pixelSpeeds[0]

	for _, s := range t.pixelSpeeds[1:] {
		smoothed = alpha*s + (1-alpha)*smoothed
	}

	return smoothed
}

// IsStopped reports whether the vehicle is stopped, defined as the average
// speed over the last few frames being below threshold pixels per frame
func (t *Track) IsStopped(threshold float64) bool {
	return t.AverageSpeedPixels(stoppedWindow) < threshold
}

// TrajectoryLength returns the total distance travelled in pixels over the
// recorded centroid history
func (t *Track) TrajectoryLength() float64 {

	total := 0.0

	for i := 1; i < len(t.centroids); i++ {
		total += t.centroids[i-1].Distance(t.centroids[i])
	}

	return total
}
