// Package export writes analysis results out to files for offline review
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/edgeview/go-trafficflow/congestion"
)

// csvHeader is the column layout of the metrics CSV file
var csvHeader = []string{
	"frame_idx", "timestamp", "vehicle_count", "occupancy_ratio",
	"average_speed", "stopped_count", "flow_rate", "queue_length",
	"density_score", "speed_score", "flow_score", "congestion_score",
	"congestion_level",
}

// WriteMetricsCSV writes the metrics history as CSV rows, one per
// analyzed frame
func WriteMetricsCSV(w io.Writer, history []congestion.Metrics) error {

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, m := range history {
		row := []string{
			strconv.Itoa(m.FrameIndex),
			strconv.FormatFloat(m.Timestamp, 'f', 3, 64),
			strconv.Itoa(m.VehicleCount),
			strconv.FormatFloat(m.OccupancyRatio, 'f', 4, 64),
			strconv.FormatFloat(m.AverageSpeed, 'f', 2, 64),
			strconv.Itoa(m.StoppedCount),
			strconv.FormatFloat(m.FlowRate, 'f', 2, 64),
			strconv.FormatFloat(m.QueueLength, 'f', 4, 64),
			strconv.FormatFloat(m.DensityScore, 'f', 4, 64),
			strconv.FormatFloat(m.SpeedScore, 'f', 4, 64),
			strconv.FormatFloat(m.FlowScore, 'f', 4, 64),
			strconv.FormatFloat(m.CongestionScore, 'f', 4, 64),
			m.CongestionLevel.String(),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return nil
}

// SaveMetricsCSV writes the metrics history to the given file
func SaveMetricsCSV(path string, history []congestion.Metrics) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	defer f.Close()

	if err := WriteMetricsCSV(f, history); err != nil {
		return err
	}

	return f.Sync()
}
