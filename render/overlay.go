package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/edgeview/go-trafficflow/congestion"
)

// OverlayStyle defines the parameters for the congestion status panel
type OverlayStyle struct {
	// Position is the top left anchor of the panel text
	Position image.Point
	Font     Font
	// Detailed includes the raw metric lines below the status and score
	Detailed bool
}

// DefaultOverlayStyle returns default overlay style settings
func DefaultOverlayStyle() OverlayStyle {
	font := DefaultFont()
	font.Scale = 0.7
	font.Thickness = 2

	return OverlayStyle{
		Position: image.Pt(20, 40),
		Font:     font,
		Detailed: true,
	}
}

// Overlay draws the congestion status panel onto the frame, a box bordered
// in the level color holding the classification, score and optionally the
// raw metrics
func Overlay(img *gocv.Mat, metrics congestion.Metrics, style OverlayStyle) {

	x := style.Position.X
	y := style.Position.Y
	lineHeight := int(30 * style.Font.Scale)

	lines := 3

	if style.Detailed {
		lines = 8
	}

	levelClr := metrics.CongestionLevel.Color()

	// background panel with level colored border
	panel := image.Rect(x-10, y-25, x+400, y+lineHeight*lines)
	gocv.Rectangle(img, panel, Black, -1)
	gocv.Rectangle(img, panel, levelClr, 2)

	// main status
	statusText := fmt.Sprintf("Status: %s", metrics.CongestionLevel)
	gocv.PutTextWithParams(img, statusText, image.Pt(x, y),
		style.Font.Face, style.Font.Scale, levelClr, style.Font.Thickness,
		style.Font.LineType, false)
	y += lineHeight

	scoreText := fmt.Sprintf("Score: %.2f", metrics.CongestionScore)
	gocv.PutTextWithParams(img, scoreText, image.Pt(x, y),
		style.Font.Face, style.Font.Scale, White, style.Font.Thickness,
		style.Font.LineType, false)
	y += lineHeight

	if !style.Detailed {
		return
	}

	details := []string{
		fmt.Sprintf("Vehicles: %d", metrics.VehicleCount),
		fmt.Sprintf("Speed: %.1f px/f", metrics.AverageSpeed),
		fmt.Sprintf("Stopped: %d", metrics.StoppedCount),
		fmt.Sprintf("Occupancy: %.1f%%", metrics.OccupancyRatio*100),
		fmt.Sprintf("Flow: %.1f veh/min", metrics.FlowRate),
		fmt.Sprintf("Queue: %.1f%%", metrics.QueueLength*100),
	}

	thickness := style.Font.Thickness - 1

	if thickness < 1 {
		thickness = 1
	}

	for _, detail := range details {
		gocv.PutTextWithParams(img, detail, image.Pt(x, y),
			style.Font.Face, style.Font.Scale*0.6, Grey, thickness,
			style.Font.LineType, false)
		y += lineHeight
	}
}
