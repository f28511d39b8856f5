package congestion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/edgeview/go-trafficflow/tracker"
)

const (
	// weightTolerance is the allowed deviation of the weight sum from 1.0
	weightTolerance = 1e-6
	// speedWindow is the number of recent pixel speed samples averaged per
	// vehicle during analysis
	speedWindow = 5
)

// Weights are the fusion weights applied to the four congestion
// sub-scores.  They must sum to 1.0
type Weights struct {
	Density float64
	Speed   float64
	Flow    float64
	Queue   float64
}

// DefaultWeights returns the default fusion weights
func DefaultWeights() Weights {
	return Weights{
		Density: 0.35,
		Speed:   0.35,
		Flow:    0.20,
		Queue:   0.10,
	}
}

// Band maps a half open congestion score range [Min,Max) to a Level
type Band struct {
	Level Level
	Min   float64
	Max   float64
}

// DefaultBands returns the default classification table
func DefaultBands() []Band {
	return []Band{
		{Level: FreeFlow, Min: 0.0, Max: 0.2},
		{Level: Light, Min: 0.2, Max: 0.4},
		{Level: Moderate, Min: 0.4, Max: 0.6},
		{Level: Heavy, Min: 0.6, Max: 0.8},
		{Level: Jam, Min: 0.8, Max: 1.0},
	}
}

// DetectorConfig holds the Detector construction parameters.  Zero valued
// fields are replaced with defaults
type DetectorConfig struct {
	// ROIArea is the region of interest area in square pixels
	ROIArea float64
	// MaxVehicles is the vehicle capacity the count density is
	// normalized against
	MaxVehicles int
	// MaxSpeed is the speed the average speed is normalized against
	MaxSpeed float64
	// StoppedThreshold is the speed below which a vehicle counts as
	// stopped, in pixels per frame or the calibrated equivalent
	StoppedThreshold float64
	// ExpectedFlowRate is the free flow rate in vehicles per minute
	ExpectedFlowRate float64
	// FlowWindowSeconds is the rolling flow measurement window duration
	FlowWindowSeconds float64
	// Weights are the sub-score fusion weights, validated to sum to 1.0
	Weights Weights
	// UnionOccupancy unions overlapping bounding boxes before computing
	// the occupancy ratio so stacked detections are not double counted.
	// Off by default, which preserves the plain summed-area behavior
	UnionOccupancy bool
}

// DefaultDetectorConfig returns the default detector configuration
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ROIArea:           640 * 480,
		MaxVehicles:       50,
		MaxSpeed:          100.0,
		StoppedThreshold:  2.0,
		ExpectedFlowRate:  30.0,
		FlowWindowSeconds: 60.0,
		Weights:           DefaultWeights(),
	}
}

// Detector computes congestion metrics from the active track list each
// frame.  Analyze mutates the rolling flow window state, so calls must be
// serialized per instance and one Detector used per stream
type Detector struct {
	roiArea          float64
	maxVehicles      int
	maxSpeed         float64
	stoppedThreshold float64
	expectedFlow     float64
	flowWindowSecs   float64
	weights          Weights
	unionOccupancy   bool

	bands []Band

	// flowWindowFrames counts elapsed frames within the current flow
	// measurement window
	flowWindowFrames int
}

// NewDetector creates a congestion Detector.  Construction fails when the
// fusion weights do not sum to 1.0, weights are never renormalized
func NewDetector(cfg DetectorConfig) (*Detector, error) {

	def := DefaultDetectorConfig()

	if cfg.ROIArea <= 0 {
		cfg.ROIArea = def.ROIArea
	}

	if cfg.MaxVehicles <= 0 {
		cfg.MaxVehicles = def.MaxVehicles
	}

	if cfg.MaxSpeed <= 0 {
		cfg.MaxSpeed = def.MaxSpeed
	}

	if cfg.StoppedThreshold <= 0 {
		cfg.StoppedThreshold = def.StoppedThreshold
	}

	if cfg.ExpectedFlowRate <= 0 {
		cfg.ExpectedFlowRate = def.ExpectedFlowRate
	}

	if cfg.FlowWindowSeconds <= 0 {
		cfg.FlowWindowSeconds = def.FlowWindowSeconds
	}

	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}

	sum := cfg.Weights.Density + cfg.Weights.Speed + cfg.Weights.Flow +
		cfg.Weights.Queue

	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("congestion weights must sum to 1.0, got %v", sum)
	}

	return &Detector{
		roiArea:          cfg.ROIArea,
		maxVehicles:      cfg.MaxVehicles,
		maxSpeed:         cfg.MaxSpeed,
		stoppedThreshold: cfg.StoppedThreshold,
		expectedFlow:     cfg.ExpectedFlowRate,
		flowWindowSecs:   cfg.FlowWindowSeconds,
		weights:          cfg.Weights,
		unionOccupancy:   cfg.UnionOccupancy,
		bands:            DefaultBands(),
	}, nil
}

// SetROIArea updates the occupancy denominator from frame dimensions.
// Intended to be called once per video/stream session
func (d *Detector) SetROIArea(width, height float64) {
	d.roiArea = width * height
}

// SetBands replaces the classification table used for all subsequent
// Analyze calls.  Bands are evaluated in the given order
func (d *Detector) SetBands(bands []Band) error {

	if len(bands) == 0 {
		return fmt.Errorf("classification bands must not be empty")
	}

	d.bands = make([]Band, len(bands))
	copy(d.bands, bands)

	return nil
}

// DensityScore returns the density sub-score, the average of the count
// based density and the occupancy based density, each clamped to 1.0
func (d *Detector) DensityScore(vehicleCount int, occupiedArea float64) float64 {

	countDensity := math.Min(float64(vehicleCount)/float64(d.maxVehicles), 1.0)
	areaDensity := math.Min(occupiedArea/d.roiArea, 1.0)

	return (countDensity + areaDensity) / 2.0
}

// SpeedScore returns the speed sub-score.  Lower speed means higher
// congestion, an unmeasurable average speed is treated as worst case
func (d *Detector) SpeedScore(averageSpeed float64) float64 {

	if averageSpeed <= 0 {
		return 1.0
	}

	return 1.0 - math.Min(averageSpeed/d.maxSpeed, 1.0)
}

// FlowScore returns the flow sub-score.  Lower throughput means higher
// congestion, a zero flow rate is treated as worst case
func (d *Detector) FlowScore(flowRate float64) float64 {

	if flowRate <= 0 {
		return 1.0
	}

	return 1.0 - math.Min(flowRate/d.expectedFlow, 1.0)
}

// QueueScore returns the ratio of stopped vehicles to the total vehicle
// count, or 0 when there are no vehicles
func (d *Detector) QueueScore(stoppedCount, vehicleCount int) float64 {

	if vehicleCount == 0 {
		return 0.0
	}

	return float64(stoppedCount) / float64(vehicleCount)
}

// Classify maps a congestion score to a Level using the configured bands.
// A score above all configured upper bounds classifies to the highest
// configured level
func (d *Detector) Classify(score float64) Level {

	highest := d.bands[0].Level

	for _, band := range d.bands {
		if score >= band.Min && score < band.Max {
			return band.Level
		}

		if band.Level > highest {
			highest = band.Level
		}
	}

	return highest
}

// Analyze computes a congestion metrics snapshot for the current frame.
// The timestamp is derived from the frame index and fps
func (d *Detector) Analyze(tracks []*tracker.Track, frameIdx int,
	fps float64) Metrics {

	return d.AnalyzeAt(tracks, frameIdx, fps, float64(frameIdx)/fps)
}

// AnalyzeAt computes a congestion metrics snapshot with an explicit
// timestamp.  An empty track list is a defined fast path returning all
// zero metrics at the FreeFlow level
func (d *Detector) AnalyzeAt(tracks []*tracker.Track, frameIdx int,
	fps, timestamp float64) Metrics {

	if len(tracks) == 0 {
		return Metrics{
			CongestionLevel: FreeFlow,
			FrameIndex:      frameIdx,
			Timestamp:       timestamp,
			ROIArea:         d.roiArea,
		}
	}

	speeds := make([]float64, 0, len(tracks))
	stoppedCount := 0
	boxes := make([]tracker.Box, 0, len(tracks))

	for _, track := range tracks {
		speeds = append(speeds, track.AverageSpeedPixels(speedWindow))

		if track.IsStopped(d.stoppedThreshold) {
			stoppedCount++
		}

		if box, ok := track.CurrentBox(); ok {
			boxes = append(boxes, box)
		}
	}

	averageSpeed := stat.Mean(speeds, nil)

	occupiedArea := sumArea(boxes)

	if d.unionOccupancy {
		occupiedArea = unionArea(boxes)
	}

	occupancyRatio := occupiedArea / d.roiArea

	flowRate := d.updateFlowRate(len(tracks), fps)

	queueLength := d.QueueScore(stoppedCount, len(tracks))

	densityScore := d.DensityScore(len(tracks), occupiedArea)
	speedScore := d.SpeedScore(averageSpeed)
	flowScore := d.FlowScore(flowRate)
	queueScore := queueLength

	congestionScore := d.weights.Density*densityScore +
		d.weights.Speed*speedScore +
		d.weights.Flow*flowScore +
		d.weights.Queue*queueScore

	return Metrics{
		VehicleCount:    len(tracks),
		StoppedCount:    stoppedCount,
		AverageSpeed:    averageSpeed,
		OccupancyRatio:  occupancyRatio,
		FlowRate:        flowRate,
		QueueLength:     queueLength,
		DensityScore:    densityScore,
		SpeedScore:      speedScore,
		FlowScore:       flowScore,
		QueueScore:      queueScore,
		CongestionScore: congestionScore,
		CongestionLevel: d.Classify(congestionScore),
		FrameIndex:      frameIdx,
		Timestamp:       timestamp,
		ROIArea:         d.roiArea,
	}
}

// updateFlowRate advances the frame counted rolling window and returns the
// current vehicles per minute estimate.  The window resets once fps times
// the window duration frames have elapsed, and partial windows yield a
// best effort estimate rather than a precise rate
func (d *Detector) updateFlowRate(vehicleCount int, fps float64) float64 {

	d.flowWindowFrames++

	if float64(d.flowWindowFrames) >= fps*d.flowWindowSecs {
		d.flowWindowFrames = 0
	}

	if d.flowWindowFrames == 0 {
		return 0.0
	}

	elapsedMinutes := float64(d.flowWindowFrames) / (fps * 60)

	return float64(vehicleCount) / math.Max(elapsedMinutes, 1.0/60)
}

// sumArea returns the total area of the boxes with overlaps counted in full
func sumArea(boxes []tracker.Box) float64 {

	total := 0.0

	for _, box := range boxes {
		total += box.Area()
	}

	return total
}
