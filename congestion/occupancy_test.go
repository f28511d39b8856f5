package congestion

import (
	"testing"

	"github.com/edgeview/go-trafficflow/tracker"
)

func TestUnionAreaDisjoint(t *testing.T) {

	boxes := []tracker.Box{
		tracker.NewBox(0, 0, 10, 10),
		tracker.NewBox(50, 50, 60, 60),
	}

	// disjoint boxes union to the plain sum
	if got := unionArea(boxes); !almostEqual(got, 200, 1e-6) {
		t.Errorf("expected 200, got %v", got)
	}
}

func TestUnionAreaIdentical(t *testing.T) {

	boxes := []tracker.Box{
		tracker.NewBox(0, 0, 10, 10),
		tracker.NewBox(0, 0, 10, 10),
	}

	// stacked detections count once
	if got := unionArea(boxes); !almostEqual(got, 100, 1e-6) {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestUnionAreaOverlap(t *testing.T) {

	boxes := []tracker.Box{
		tracker.NewBox(0, 0, 10, 10),
		tracker.NewBox(5, 0, 15, 10),
	}

	// half overlapping boxes cover 150, not the summed 200
	if got := unionArea(boxes); !almostEqual(got, 150, 1e-6) {
		t.Errorf("expected 150, got %v", got)
	}
}

func TestUnionAreaDegenerate(t *testing.T) {

	if got := unionArea(nil); got != 0 {
		t.Errorf("expected 0 for no boxes, got %v", got)
	}

	boxes := []tracker.Box{
		tracker.NewBox(10, 10, 10, 30),
	}

	// zero area boxes contribute nothing
	if got := unionArea(boxes); got != 0 {
		t.Errorf("expected 0 for degenerate box, got %v", got)
	}
}

func TestSumArea(t *testing.T) {

	boxes := []tracker.Box{
		tracker.NewBox(0, 0, 10, 10),
		tracker.NewBox(5, 0, 15, 10),
	}

	// overlap counted in full
	if got := sumArea(boxes); !almostEqual(got, 200, 1e-9) {
		t.Errorf("expected 200, got %v", got)
	}
}
