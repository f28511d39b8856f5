package congestion

// Metrics is an immutable snapshot of the traffic state produced once per
// analyzed frame.  It is created fresh on each Analyze call and never
// mutated after construction
type Metrics struct {
	// VehicleCount is the number of active tracks analyzed
	VehicleCount int
	// StoppedCount is the number of vehicles below the stillness threshold
	StoppedCount int
	// AverageSpeed is the mean windowed pixel speed across vehicles in
	// pixels per frame
	AverageSpeed float64
	// OccupancyRatio is the fraction of the region of interest covered by
	// vehicle bounding boxes
	OccupancyRatio float64
	// FlowRate is the estimated vehicles per minute within the rolling
	// measurement window
	FlowRate float64
	// QueueLength is the fraction of vehicles classified as stopped
	QueueLength float64

	// Normalized sub-scores, each in [0,1]
	DensityScore float64
	SpeedScore   float64
	FlowScore    float64
	QueueScore   float64

	// CongestionScore is the weighted fusion of the four sub-scores in [0,1]
	CongestionScore float64
	// CongestionLevel is the discrete classification of CongestionScore
	CongestionLevel Level

	// FrameIndex and Timestamp identify the analyzed frame for traceability
	FrameIndex int
	Timestamp  float64
	// ROIArea is the region of interest area the snapshot was computed with
	ROIArea float64
}
