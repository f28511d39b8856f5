package trafficflow

import (
	"fmt"

	"github.com/edgeview/go-trafficflow/congestion"
	"github.com/edgeview/go-trafficflow/speed"
	"github.com/edgeview/go-trafficflow/tracker"
)

// speedWindow is the number of recent pixel speed samples averaged per
// track before conversion to real world speed
const speedWindow = 5

// Config holds the Pipeline construction parameters.  Zero valued fields
// are replaced with defaults
type Config struct {
	// FPS is the frame rate of the stream, assumed stable for the session
	FPS float64
	// TrackMaxAge is the consecutive miss count before a track is evicted
	TrackMaxAge int
	// TrackMaxHistory is the bounded history capacity per track
	TrackMaxHistory int
	// SmootherWindow is the per track speed smoothing window length
	SmootherWindow int
	// OutlierThreshold is the smoother z-score gate threshold
	OutlierThreshold float64
	// Estimator converts pixel motion to real world speed.  A nil
	// Estimator records raw pixel speeds as the real speed values
	Estimator speed.Estimator
	// Detector configures the congestion detector
	Detector congestion.DetectorConfig
	// RecordMetrics keeps every produced metrics snapshot for later
	// export and summary reporting
	RecordMetrics bool
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		FPS:              30.0,
		TrackMaxAge:      tracker.DefaultMaxAge,
		TrackMaxHistory:  tracker.DefaultMaxHistory,
		SmootherWindow:   speed.DefaultWindowSize,
		OutlierThreshold: speed.DefaultOutlierThreshold,
		Detector:         congestion.DefaultDetectorConfig(),
		RecordMetrics:    true,
	}
}

// Pipeline applies the full per frame analysis cycle, detections into the
// track manager, real world speed per track, then congestion analysis.  It
// owns the track manager, one speed smoother per live track, the speed
// estimator and the congestion detector.  A Pipeline serves exactly one
// stream and calls must be serialized per instance, hosts parallelizing
// across cameras run one Pipeline each with no shared state
type Pipeline struct {
	fps              float64
	manager          *tracker.Manager
	smoothers        map[int64]*speed.Smoother
	smootherWindow   int
	outlierThreshold float64
	estimator        speed.Estimator
	detector         *congestion.Detector
	record           bool
	history          []congestion.Metrics
}

// NewPipeline creates a Pipeline from the given configuration
func NewPipeline(cfg Config) (*Pipeline, error) {

	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", cfg.FPS)
	}

	detector, err := congestion.NewDetector(cfg.Detector)

	if err != nil {
		return nil, fmt.Errorf("error creating congestion detector: %w", err)
	}

	return &Pipeline{
		fps:              cfg.FPS,
		manager:          tracker.NewManager(cfg.TrackMaxAge, cfg.TrackMaxHistory),
		smoothers:        make(map[int64]*speed.Smoother),
		smootherWindow:   cfg.SmootherWindow,
		outlierThreshold: cfg.OutlierThreshold,
		estimator:        cfg.Estimator,
		detector:         detector,
		record:           cfg.RecordMetrics,
	}, nil
}

// Process applies one frame of detections and returns the congestion
// metrics snapshot for that frame
func (p *Pipeline) Process(detections []tracker.Detection,
	frameIdx int) (congestion.Metrics, error) {

	p.manager.Update(detections, frameIdx)

	active := p.manager.ActiveTracks()

	if err := p.computeSpeeds(active); err != nil {
		return congestion.Metrics{}, err
	}

	metrics := p.detector.Analyze(active, frameIdx, p.fps)

	if p.record {
		p.history = append(p.history, metrics)
	}

	return metrics, nil
}

// computeSpeeds converts and smooths the current speed of every live
// track, appending the result to the track real speed history.  Smoothers
// of evicted tracks are pruned so the registry stays bounded by the live
// track count
func (p *Pipeline) computeSpeeds(active []*tracker.Track) error {

	live := make(map[int64]bool, len(active))

	for _, track := range active {

		id := track.GetID()
		live[id] = true

		smoother, exists := p.smoothers[id]

		if !exists {
			smoother = speed.NewSmoother(p.smootherWindow, p.outlierThreshold)
			p.smoothers[id] = smoother
		}

		var raw float64

		switch est := p.estimator.(type) {
		case nil:
			// no calibration configured, record pixel speeds
			raw = track.AverageSpeedPixels(speedWindow)

		case *speed.PixelEstimator:
			// the flat ratio conversion is linear so it can be
			// applied to the windowed pixel average directly
			raw = est.PixelsToSpeed(track.AverageSpeedPixels(speedWindow))

		default:
			// perspective aware estimators need the actual
			// centroid pair
			centroids := track.GetCentroids()

			if len(centroids) >= 2 {
				var err error
				raw, err = est.Convert(centroids[len(centroids)-2],
					centroids[len(centroids)-1])

				if err != nil {
					return fmt.Errorf("error converting speed for track %d: %w",
						id, err)
				}
			}
		}

		track.AppendRealSpeed(smoother.AddSpeed(raw))
	}

	for id := range p.smoothers {
		if !live[id] {
			delete(p.smoothers, id)
		}
	}

	return nil
}

// ResetSmoother clears the speed window of the given track.  Used when the
// caller knows a track id switched to a different physical object
func (p *Pipeline) ResetSmoother(trackID int64) {
	if smoother, exists := p.smoothers[trackID]; exists {
		smoother.Reset()
	}
}

// Manager returns the track manager owned by the pipeline
func (p *Pipeline) Manager() *tracker.Manager {
	return p.manager
}

// Detector returns the congestion detector owned by the pipeline
func (p *Pipeline) Detector() *congestion.Detector {
	return p.detector
}

// MetricsHistory returns every recorded metrics snapshot.  The returned
// slice is the internal buffer and must not be modified
func (p *Pipeline) MetricsHistory() []congestion.Metrics {
	return p.history
}
