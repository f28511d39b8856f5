package trafficflow

import (
	"gonum.org/v1/gonum/stat"

	"github.com/edgeview/go-trafficflow/congestion"
)

// Summary aggregates a session's recorded metrics history
type Summary struct {
	// FramesAnalyzed is the number of metrics snapshots recorded
	FramesAnalyzed int
	// AverageVehicles is the mean vehicle count per frame
	AverageVehicles float64
	// PeakVehicles is the highest vehicle count seen in a single frame
	PeakVehicles int
	// AverageSpeed is the mean of the per frame average speeds
	AverageSpeed float64
	// AverageScore is the mean congestion score over the session
	AverageScore float64
	// LevelCounts is the number of frames classified at each level
	LevelCounts map[congestion.Level]int
}

// Summarize aggregates a metrics history into session statistics
func Summarize(history []congestion.Metrics) Summary {

	summary := Summary{
		FramesAnalyzed: len(history),
		LevelCounts:    make(map[congestion.Level]int),
	}

	if len(history) == 0 {
		return summary
	}

	counts := make([]float64, len(history))
	speeds := make([]float64, len(history))
	scores := make([]float64, len(history))

	for i, m := range history {
		counts[i] = float64(m.VehicleCount)
		speeds[i] = m.AverageSpeed
		scores[i] = m.CongestionScore

		if m.VehicleCount > summary.PeakVehicles {
			summary.PeakVehicles = m.VehicleCount
		}

		summary.LevelCounts[m.CongestionLevel]++
	}

	summary.AverageVehicles = stat.Mean(counts, nil)
	summary.AverageSpeed = stat.Mean(speeds, nil)
	summary.AverageScore = stat.Mean(scores, nil)

	return summary
}

// Summary aggregates the pipeline's recorded metrics history
func (p *Pipeline) Summary() Summary {
	return Summarize(p.history)
}
