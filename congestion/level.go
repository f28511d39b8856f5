// Package congestion fuses vehicle density, speed, flow and queueing
// signals from tracked objects into a stable classified congestion level
package congestion

import (
	"image/color"
)

// Level is an ordinal traffic congestion classification
type Level int

const (
	// FreeFlow indicates traffic moving freely
	FreeFlow Level = 0
	// Light indicates minor slowdowns
	Light Level = 1
	// Moderate indicates significant slowdowns
	Moderate Level = 2
	// Heavy indicates stop-and-go traffic
	Heavy Level = 3
	// Jam indicates standstill conditions
	Jam Level = 4
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case FreeFlow:
		return "FREE_FLOW"
	case Light:
		return "LIGHT"
	case Moderate:
		return "MODERATE"
	case Heavy:
		return "HEAVY"
	case Jam:
		return "TRAFFIC_JAM"
	}

	return "UNKNOWN"
}

// Description returns a human readable description of the level
func (l Level) Description() string {
	switch l {
	case FreeFlow:
		return "Free Flow - Traffic moving freely"
	case Light:
		return "Light Traffic - Minor slowdowns"
	case Moderate:
		return "Moderate Congestion - Significant slowdowns"
	case Heavy:
		return "Heavy Congestion - Stop-and-go traffic"
	case Jam:
		return "Traffic Jam - Standstill conditions"
	}

	return "Unknown"
}

// Color returns the color conventionally used to visualize the level
func (l Level) Color() color.RGBA {
	switch l {
	case FreeFlow:
		return color.RGBA{G: 255, A: 255}
	case Light:
		return color.RGBA{R: 255, G: 255, A: 255}
	case Moderate:
		return color.RGBA{R: 255, G: 165, A: 255}
	case Heavy:
		return color.RGBA{R: 255, G: 69, A: 255}
	case Jam:
		return color.RGBA{R: 255, A: 255}
	}

	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
