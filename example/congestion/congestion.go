package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/edgeview/go-trafficflow"
	"github.com/edgeview/go-trafficflow/congestion"
	"github.com/edgeview/go-trafficflow/export"
	"github.com/edgeview/go-trafficflow/render"
	"github.com/edgeview/go-trafficflow/speed"
	"github.com/edgeview/go-trafficflow/tracker"
	"gocv.io/x/gocv"
)

// FrameDetections is a single line of the JSONL detections file holding
// the tracked objects seen on one video frame
type FrameDetections struct {
	Frame      int `json:"frame"`
	Detections []struct {
		TrackID   int64   `json:"track_id"`
		X1        float64 `json:"x1"`
		Y1        float64 `json:"y1"`
		X2        float64 `json:"x2"`
		Y2        float64 `json:"y2"`
		ClassID   int     `json:"class_id"`
		ClassName string  `json:"class_name"`
	} `json:"detections"`
}

// loadDetections reads the JSONL detections file, one frame per line
func loadDetections(path string) ([]FrameDetections, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, fmt.Errorf("error opening detections file: %w", err)
	}

	defer f.Close()

	var frames []FrameDetections

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var fd FrameDetections

		if err := json.Unmarshal(line, &fd); err != nil {
			return nil, fmt.Errorf("error parsing detections line: %w", err)
		}

		frames = append(frames, fd)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading detections file: %w", err)
	}

	return frames, nil
}

// annotateVideo runs the pipeline over the video frames and writes an
// annotated copy with track boxes, trails and the congestion panel
func annotateVideo(pipe *trafficflow.Pipeline, frames []FrameDetections,
	vidFile, outFile string, fps float64) error {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return fmt.Errorf("error opening video: %w", err)
	}

	defer video.Close()

	img := gocv.NewMat()
	defer img.Close()

	if ok := video.Read(&img); !ok {
		return fmt.Errorf("error reading first video frame")
	}

	writer, err := gocv.VideoWriterFile(outFile, "mp4v", fps,
		img.Cols(), img.Rows(), true)

	if err != nil {
		return fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	font := render.DefaultFont()
	trailStyle := render.DefaultTrailStyle()
	overlayStyle := render.DefaultOverlayStyle()

	for i, fd := range frames {

		if i > 0 {
			if ok := video.Read(&img); !ok {
				break
			}
		}

		if img.Empty() {
			continue
		}

		metrics, err := pipe.Process(toDetections(fd), fd.Frame)

		if err != nil {
			return fmt.Errorf("error processing frame %d: %w", fd.Frame, err)
		}

		tracks := pipe.Manager().ActiveTracks()

		render.Trails(&img, tracks, trailStyle)
		render.TrackBoxes(&img, tracks, font, 2, true)
		render.Overlay(&img, metrics, overlayStyle)

		if err := writer.Write(img); err != nil {
			return fmt.Errorf("error writing video frame: %w", err)
		}
	}

	return nil
}

// runHeadless processes the detections without any video rendering
func runHeadless(pipe *trafficflow.Pipeline, frames []FrameDetections) error {

	for _, fd := range frames {

		_, err := pipe.Process(toDetections(fd), fd.Frame)

		if err != nil {
			return fmt.Errorf("error processing frame %d: %w", fd.Frame, err)
		}
	}

	return nil
}

// toDetections converts a JSONL frame record into tracker detections
func toDetections(fd FrameDetections) []tracker.Detection {

	dets := make([]tracker.Detection, 0, len(fd.Detections))

	for _, d := range fd.Detections {
		dets = append(dets, tracker.NewDetection(d.TrackID,
			tracker.NewBox(d.X1, d.Y1, d.X2, d.Y2), d.ClassID, d.ClassName))
	}

	return dets
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	detFile := flag.String("d", "../data/detections.jsonl", "JSONL file with per frame tracked detections")
	vidFile := flag.String("v", "", "Optional video file to annotate")
	outFile := flag.String("o", "../data/congestion-out.mp4", "The annotated output video file")
	csvFile := flag.String("c", "", "Optional CSV file to write per frame metrics to")
	fps := flag.Float64("f", 30, "Video frame rate")
	ppm := flag.Float64("p", speed.DefaultPixelsPerMeter, "Scene calibration in pixels per meter")
	roiW := flag.Int("W", 1920, "Region of interest width in pixels")
	roiH := flag.Int("H", 1080, "Region of interest height in pixels")

	flag.Parse()

	frames, err := loadDetections(*detFile)

	if err != nil {
		log.Fatalf("Error loading detections: %v", err)
	}

	log.Printf("Loaded %d frames of detections", len(frames))

	est, err := speed.NewPixelEstimator(*fps, *ppm)

	if err != nil {
		log.Fatalf("Error creating speed estimator: %v", err)
	}

	cfg := trafficflow.DefaultConfig()
	cfg.FPS = *fps
	cfg.Estimator = est
	cfg.Detector.ROIArea = float64(*roiW) * float64(*roiH)

	pipe, err := trafficflow.NewPipeline(cfg)

	if err != nil {
		log.Fatalf("Error creating pipeline: %v", err)
	}

	if *vidFile != "" {
		err = annotateVideo(pipe, frames, *vidFile, *outFile, *fps)
	} else {
		err = runHeadless(pipe, frames)
	}

	if err != nil {
		log.Fatalf("Error running analysis: %v", err)
	}

	if *csvFile != "" {
		err = export.SaveMetricsCSV(*csvFile, pipe.MetricsHistory())

		if err != nil {
			log.Fatalf("Error writing metrics CSV: %v", err)
		}

		log.Printf("Wrote metrics to %s", *csvFile)
	}

	sum := pipe.Summary()

	log.Printf("Frames analyzed: %d", sum.FramesAnalyzed)
	log.Printf("Average vehicles: %.1f, peak: %d", sum.AverageVehicles, sum.PeakVehicles)
	log.Printf("Average speed: %.2f", sum.AverageSpeed)
	log.Printf("Average congestion score: %.3f", sum.AverageScore)

	for lvl := congestion.FreeFlow; lvl <= congestion.Jam; lvl++ {
		if n, ok := sum.LevelCounts[lvl]; ok {
			log.Printf("  %-15s %d frames", lvl, n)
		}
	}
}
