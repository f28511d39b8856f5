package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/edgeview/go-trafficflow/tracker"
)

// TrackBoxes renders bounding boxes around the tracked vehicles with an
// id/class label above the box and the latest speed below it.  showSpeed
// draws the most recent real world speed when the track has one, falling
// back to the windowed pixel speed
func TrackBoxes(img *gocv.Mat, tracks []*tracker.Track, font Font,
	lineThickness int, showSpeed bool) {

	for _, track := range tracks {

		box, ok := track.CurrentBox()

		if !ok {
			continue
		}

		boxLeft := int(box.X1)
		boxTop := int(box.Y1)
		boxRight := int(box.X2)
		boxBottom := int(box.Y2)

		useClr := trackColor(track.GetID())

		// draw rectangle around tracked vehicle
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %d", track.GetClassName(), track.GetID())

		if track.GetClassName() == "" {
			text = fmt.Sprintf("ID %d", track.GetID())
		}

		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (boxLeft + boxRight) / 2

		case Right:
			centerX = boxRight - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = boxLeft + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// draw box text gets written on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		gocv.Rectangle(img, bRect, useClr, -1)

		gocv.PutTextWithParams(img, text, labelPosition,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)

		if !showSpeed {
			continue
		}

		// speed label below the box
		speedText := speedLabel(track)
		speedPos := image.Pt(boxLeft+font.LeftPad,
			boxBottom+textSize.Y+font.TopPad)

		gocv.PutTextWithParams(img, speedText, speedPos,
			font.Face, font.Scale, useClr, font.Thickness,
			font.LineType, false)
	}
}

// speedLabel formats the latest speed of a track, preferring the real
// world value over the raw pixel speed
func speedLabel(track *tracker.Track) string {

	realSpeeds := track.GetRealSpeeds()

	if len(realSpeeds) > 0 {
		return fmt.Sprintf("%.1f km/h", realSpeeds[len(realSpeeds)-1])
	}

	return fmt.Sprintf("%.1f px/f", track.AverageSpeedPixels(5))
}
