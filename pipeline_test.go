package trafficflow

import (
	"math"
	"testing"

	"github.com/edgeview/go-trafficflow/congestion"
	"github.com/edgeview/go-trafficflow/speed"
	"github.com/edgeview/go-trafficflow/tracker"
)

// almostEqual compares floats within a tolerance
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

// movingDetections builds one frame of detections for n vehicles each
// advancing step pixels per frame
func movingDetections(n, frame int, step float64) []tracker.Detection {

	dets := make([]tracker.Detection, 0, n)

	for i := 0; i < n; i++ {
		x := float64(frame)*step + float64(i)*150
		y := float64(i) * 60
		dets = append(dets, tracker.NewDetection(int64(i+1),
			tracker.NewBox(x, y, x+100, y+50), 2, "car"))
	}

	return dets
}

func TestPipelineValidation(t *testing.T) {

	cfg := DefaultConfig()
	cfg.FPS = 0

	if _, err := NewPipeline(cfg); err == nil {
		t.Error("expected error for zero fps")
	}

	cfg = DefaultConfig()
	cfg.Detector.Weights = congestion.Weights{Density: 1, Speed: 1, Flow: 1, Queue: 1}

	if _, err := NewPipeline(cfg); err == nil {
		t.Error("expected error for invalid detector weights")
	}
}

func TestPipelineFreeFlow(t *testing.T) {

	est, err := speed.NewPixelEstimator(30, 20)

	if err != nil {
		t.Fatalf("error creating estimator: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Estimator = est
	cfg.Detector.ROIArea = 1920 * 1080

	pipe, err := NewPipeline(cfg)

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	// two vehicles moving briskly at 10 px/frame
	var metrics congestion.Metrics

	for frame := 0; frame < 10; frame++ {
		metrics, err = pipe.Process(movingDetections(2, frame, 10), frame)

		if err != nil {
			t.Fatalf("process error at frame %d: %v", frame, err)
		}
	}

	if metrics.VehicleCount != 2 {
		t.Errorf("expected 2 vehicles, got %d", metrics.VehicleCount)
	}

	if metrics.StoppedCount != 0 {
		t.Errorf("expected no stopped vehicles, got %d", metrics.StoppedCount)
	}

	// each track carries the 54 km/h converted speed
	track := pipe.Manager().GetTrack(1)

	if track == nil {
		t.Fatal("expected track 1 to exist")
	}

	realSpeeds := track.GetRealSpeeds()

	if len(realSpeeds) == 0 {
		t.Fatal("expected real speed history")
	}

	// 10 px/frame at 20 px/m and 30 fps
	if got := realSpeeds[len(realSpeeds)-1]; !almostEqual(got, 54.0, 0.5) {
		t.Errorf("expected ~54 km/h, got %v", got)
	}
}

func TestPipelineStoppedTraffic(t *testing.T) {

	cfg := DefaultConfig()
	cfg.Detector.ROIArea = 640 * 480
	cfg.Detector.MaxVehicles = 10

	pipe, err := NewPipeline(cfg)

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	var metrics congestion.Metrics

	// ten vehicles not moving at all
	for frame := 0; frame < 10; frame++ {
		metrics, err = pipe.Process(movingDetections(10, 0, 0), frame)

		if err != nil {
			t.Fatalf("process error at frame %d: %v", frame, err)
		}
	}

	if metrics.StoppedCount != 10 {
		t.Errorf("expected 10 stopped vehicles, got %d", metrics.StoppedCount)
	}

	if metrics.CongestionLevel < congestion.Heavy {
		t.Errorf("expected at least HEAVY, got %s", metrics.CongestionLevel)
	}
}

func TestPipelineNilEstimatorRecordsPixels(t *testing.T) {

	pipe, err := NewPipeline(DefaultConfig())

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	for frame := 0; frame < 5; frame++ {
		if _, err := pipe.Process(movingDetections(1, frame, 4), frame); err != nil {
			t.Fatalf("process error: %v", err)
		}
	}

	track := pipe.Manager().GetTrack(1)

	realSpeeds := track.GetRealSpeeds()

	// with no estimator the raw pixel speed is recorded
	if got := realSpeeds[len(realSpeeds)-1]; !almostEqual(got, 4.0, 0.5) {
		t.Errorf("expected ~4 px/f, got %v", got)
	}
}

func TestPipelineSmootherPruning(t *testing.T) {

	cfg := DefaultConfig()
	cfg.TrackMaxAge = 2

	pipe, err := NewPipeline(cfg)

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	if _, err := pipe.Process(movingDetections(3, 0, 5), 0); err != nil {
		t.Fatalf("process error: %v", err)
	}

	if len(pipe.smoothers) != 3 {
		t.Fatalf("expected 3 smoothers, got %d", len(pipe.smoothers))
	}

	// all vehicles leave, tracks evict after maxAge misses and the
	// smoother registry follows
	for frame := 1; frame <= 4; frame++ {
		if _, err := pipe.Process(nil, frame); err != nil {
			t.Fatalf("process error: %v", err)
		}
	}

	if pipe.Manager().ActiveCount() != 0 {
		t.Fatalf("expected all tracks evicted, got %d active",
			pipe.Manager().ActiveCount())
	}

	if len(pipe.smoothers) != 0 {
		t.Errorf("expected smoother registry emptied, got %d entries",
			len(pipe.smoothers))
	}
}

func TestPipelineMetricsHistory(t *testing.T) {

	pipe, err := NewPipeline(DefaultConfig())

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	for frame := 0; frame < 7; frame++ {
		if _, err := pipe.Process(movingDetections(2, frame, 5), frame); err != nil {
			t.Fatalf("process error: %v", err)
		}
	}

	history := pipe.MetricsHistory()

	if len(history) != 7 {
		t.Fatalf("expected 7 snapshots, got %d", len(history))
	}

	if history[3].FrameIndex != 3 {
		t.Errorf("expected frame index 3, got %d", history[3].FrameIndex)
	}

	// recording disabled keeps no history
	cfg := DefaultConfig()
	cfg.RecordMetrics = false

	quiet, err := NewPipeline(cfg)

	if err != nil {
		t.Fatalf("error creating pipeline: %v", err)
	}

	if _, err := quiet.Process(movingDetections(2, 0, 5), 0); err != nil {
		t.Fatalf("process error: %v", err)
	}

	if len(quiet.MetricsHistory()) != 0 {
		t.Errorf("expected empty history with recording off, got %d",
			len(quiet.MetricsHistory()))
	}
}

func TestSummarize(t *testing.T) {

	empty := Summarize(nil)

	if empty.FramesAnalyzed != 0 || empty.PeakVehicles != 0 {
		t.Errorf("expected zero summary for empty history, got %+v", empty)
	}

	history := []congestion.Metrics{
		{VehicleCount: 2, AverageSpeed: 10, CongestionScore: 0.1,
			CongestionLevel: congestion.FreeFlow},
		{VehicleCount: 6, AverageSpeed: 4, CongestionScore: 0.5,
			CongestionLevel: congestion.Moderate},
		{VehicleCount: 4, AverageSpeed: 7, CongestionScore: 0.3,
			CongestionLevel: congestion.Light},
	}

	sum := Summarize(history)

	if sum.FramesAnalyzed != 3 {
		t.Errorf("expected 3 frames, got %d", sum.FramesAnalyzed)
	}

	if sum.PeakVehicles != 6 {
		t.Errorf("expected peak 6, got %d", sum.PeakVehicles)
	}

	if !almostEqual(sum.AverageVehicles, 4.0, 1e-9) {
		t.Errorf("expected average 4.0, got %v", sum.AverageVehicles)
	}

	if !almostEqual(sum.AverageScore, 0.3, 1e-9) {
		t.Errorf("expected average score 0.3, got %v", sum.AverageScore)
	}

	if sum.LevelCounts[congestion.Moderate] != 1 {
		t.Errorf("expected 1 MODERATE frame, got %d",
			sum.LevelCounts[congestion.Moderate])
	}
}
