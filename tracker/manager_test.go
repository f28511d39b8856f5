package tracker

import (
	"testing"
)

// det is a helper building a detection with a unit box at the given position
func det(id int64, x, y float64) Detection {
	return NewDetection(id, NewBox(x, y, x+20, y+20), 2, "car")
}

func TestManagerCreateAndUpdate(t *testing.T) {

	m := NewManager(30, 30)

	m.Update([]Detection{det(1, 0, 0), det(2, 100, 0)}, 0)

	if m.ActiveCount() != 2 {
		t.Errorf("expected 2 active tracks, got %d", m.ActiveCount())
	}

	m.Update([]Detection{det(1, 5, 0), det(2, 100, 0)}, 1)

	if m.ActiveCount() != 2 {
		t.Errorf("expected 2 active tracks, got %d", m.ActiveCount())
	}

	track := m.GetTrack(1)

	if track == nil {
		t.Fatal("expected track 1 to exist")
	}

	if len(track.GetCentroids()) != 2 {
		t.Errorf("expected 2 observations, got %d", len(track.GetCentroids()))
	}

	if m.GetTrack(99) != nil {
		t.Error("expected nil for unknown track id")
	}
}

func TestManagerEvictionBoundary(t *testing.T) {

	maxAge := 30
	m := NewManager(maxAge, 30)

	m.Update([]Detection{det(1, 0, 0)}, 0)

	// exactly maxAge consecutive misses keeps the track alive
	for i := 1; i <= maxAge; i++ {
		m.Update(nil, i)
	}

	if m.ActiveCount() != 1 {
		t.Fatalf("track must survive exactly %d misses, got %d active",
			maxAge, m.ActiveCount())
	}

	// one more miss crosses the limit and evicts
	m.Update(nil, maxAge+1)

	if m.ActiveCount() != 0 {
		t.Errorf("track must be evicted after %d misses", maxAge+1)
	}

	completed := m.CompletedTracks()

	if len(completed) != 1 {
		t.Fatalf("expected 1 completed track, got %d", len(completed))
	}

	if completed[0].IsActive() {
		t.Error("completed track must be inactive")
	}

	if completed[0].GetID() != 1 {
		t.Errorf("expected completed track id 1, got %d", completed[0].GetID())
	}
}

func TestManagerMissResetOnReappear(t *testing.T) {

	m := NewManager(30, 30)

	m.Update([]Detection{det(1, 0, 0)}, 0)

	// miss for 5 frames then reappear
	for i := 1; i <= 5; i++ {
		m.Update(nil, i)
	}

	m.Update([]Detection{det(1, 10, 0)}, 6)

	// another 30 misses must still not evict since the counter reset
	for i := 7; i <= 36; i++ {
		m.Update(nil, i)
	}

	if m.ActiveCount() != 1 {
		t.Errorf("reappeared track must survive another %d misses", 30)
	}
}

func TestManagerStatistics(t *testing.T) {

	m := NewManager(2, 30)

	m.Update([]Detection{det(1, 0, 0), det(2, 100, 100)}, 0)

	// track 1 moves fast, track 2 stays put
	m.Update([]Detection{det(1, 50, 0), det(2, 100, 100)}, 1)
	m.Update([]Detection{det(1, 100, 0), det(2, 100, 100)}, 2)

	stats := m.Statistics()

	if stats.ActiveTracks != 2 {
		t.Errorf("expected 2 active, got %d", stats.ActiveTracks)
	}

	if stats.TotalCreated != 2 {
		t.Errorf("expected 2 created, got %d", stats.TotalCreated)
	}

	if stats.StoppedVehicles != 1 {
		t.Errorf("expected 1 stopped vehicle, got %d", stats.StoppedVehicles)
	}

	// evict track 1 with misses while keeping track 2 alive
	m.Update([]Detection{det(2, 100, 100)}, 3)
	m.Update([]Detection{det(2, 100, 100)}, 4)
	m.Update([]Detection{det(2, 100, 100)}, 5)

	stats = m.Statistics()

	if stats.ActiveTracks != 1 || stats.TotalCompleted != 1 {
		t.Errorf("expected 1 active and 1 completed, got %d/%d",
			stats.ActiveTracks, stats.TotalCompleted)
	}
}

func TestManagerClear(t *testing.T) {

	m := NewManager(30, 30)

	m.Update([]Detection{det(1, 0, 0), det(2, 50, 0), det(3, 100, 0)}, 0)

	m.Clear()

	if m.ActiveCount() != 0 {
		t.Errorf("expected no active tracks after clear, got %d",
			m.ActiveCount())
	}

	if len(m.CompletedTracks()) != 3 {
		t.Errorf("expected 3 completed tracks, got %d",
			len(m.CompletedTracks()))
	}
}

func TestManagerDefaults(t *testing.T) {

	m := NewManager(0, -1)

	m.Update([]Detection{det(1, 0, 0)}, 0)

	// defaults applied, track survives DefaultMaxAge misses
	for i := 1; i <= DefaultMaxAge; i++ {
		m.Update(nil, i)
	}

	if m.ActiveCount() != 1 {
		t.Errorf("expected default maxAge %d to be applied", DefaultMaxAge)
	}
}
