package tracker

import (
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxAge is the default number of consecutive frames a track may be
// absent from detections before being evicted
const DefaultMaxAge = 30

// Statistics holds counters describing the Manager lifetime activity
type Statistics struct {
	// ActiveTracks is the number of currently live tracks
	ActiveTracks int
	// TotalCreated is the number of tracks created since construction
	TotalCreated int
	// TotalCompleted is the number of tracks evicted into the archive
	TotalCompleted int
	// StoppedVehicles is the number of live tracks currently stopped
	StoppedVehicles int
	// AverageSpeedPx is the mean pixels per frame speed over live tracks
	AverageSpeedPx float64
}

// Manager owns the mapping of upstream track identifiers to Track state and
// applies the per frame update/age/evict cycle.  It is not safe for
// concurrent use, callers must serialize Update calls per instance
type Manager struct {
	// maxAge is the consecutive miss count after which a track is evicted
	maxAge int
	// maxHistory is the bounded history capacity given to new tracks
	maxHistory int
	// tracks maps track id to live track state
	tracks map[int64]*Track
	// ages maps track id to its consecutive miss counter.  Every key in
	// ages has a corresponding key in tracks and vice versa
	ages map[int64]int
	// completed is the archive of evicted tracks
	completed []*Track

	totalCreated   int
	totalCompleted int
}

// NewManager creates a new track Manager.  A maxAge or maxHistory of zero
// or less uses the package defaults
func NewManager(maxAge, maxHistory int) *Manager {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}

	return &Manager{
		maxAge:     maxAge,
		maxHistory: maxHistory,
		tracks:     make(map[int64]*Track),
		ages:       make(map[int64]int),
	}
}

// Update applies one frame of detections.  Unknown ids create new tracks,
// known ids are appended to and have their miss age reset.  Every tracked
// id absent from detections has its miss age incremented and is evicted
// into the completed archive once the age exceeds maxAge.  Creation and
// eviction complete atomically within the call
func (m *Manager) Update(detections []Detection, frameIdx int) {

	seen := make(map[int64]bool, len(detections))

	for _, det := range detections {
		seen[det.TrackID] = true

		track, exists := m.tracks[det.TrackID]

		if !exists {
			track = NewTrack(det.TrackID, m.maxHistory)
			m.tracks[det.TrackID] = track
			m.totalCreated++
		}

		track.observe(det.Box, frameIdx, det.ClassID, det.ClassName)
		m.ages[det.TrackID] = 0
	}

	// age tracks missing from this frame and collect those exceeding
	// the miss limit
	var evict []int64

	for id := range m.tracks {
		if seen[id] {
			continue
		}

		m.ages[id]++

		if m.ages[id] > m.maxAge {
			evict = append(evict, id)
		}
	}

	for _, id := range evict {
		m.remove(id)
	}
}

// remove evicts a track from both maps and archives it as inactive
func (m *Manager) remove(id int64) {

	track, exists := m.tracks[id]

	if !exists {
		return
	}

	track.active = false
	m.completed = append(m.completed, track)

	delete(m.tracks, id)
	delete(m.ages, id)

	m.totalCompleted++
}

// ActiveTracks returns a snapshot list of live tracks in unspecified
// order.  Ordering is not stable across calls
func (m *Manager) ActiveTracks() []*Track {

	tracks := make([]*Track, 0, len(m.tracks))

	for _, track := range m.tracks {
		tracks = append(tracks, track)
	}

	return tracks
}

// GetTrack returns the live track for the given id, or nil if unknown
func (m *Manager) GetTrack(id int64) *Track {
	return m.tracks[id]
}

// ActiveCount returns the number of live tracks
func (m *Manager) ActiveCount() int {
	return len(m.tracks)
}

// CompletedTracks returns the archive of evicted tracks.  The returned
// slice is the internal buffer and must not be modified
func (m *Manager) CompletedTracks() []*Track {
	return m.completed
}

// StoppedCount returns the number of live tracks currently stopped, using
// threshold in pixels per frame
func (m *Manager) StoppedCount(threshold float64) int {

	count := 0

	for _, track := range m.tracks {
		if track.IsStopped(threshold) {
			count++
		}
	}

	return count
}

// AverageSpeed returns the mean windowed pixel speed across all live
// tracks, or 0 when no tracks exist
func (m *Manager) AverageSpeed() float64 {

	if len(m.tracks) == 0 {
		return 0
	}

	speeds := make([]float64, 0, len(m.tracks))

	for _, track := range m.tracks {
		speeds = append(speeds, track.AverageSpeedPixels(10))
	}

	return stat.Mean(speeds, nil)
}

// Clear evicts all live tracks into the completed archive
func (m *Manager) Clear() {
	for id := range m.tracks {
		m.remove(id)
	}
}

// Statistics returns counters describing current tracking activity
func (m *Manager) Statistics() Statistics {
	return Statistics{
		ActiveTracks:    m.ActiveCount(),
		TotalCreated:    m.totalCreated,
		TotalCompleted:  m.totalCompleted,
		StoppedVehicles: m.StoppedCount(DefaultStoppedThreshold),
		AverageSpeedPx:  m.AverageSpeed(),
	}
}
