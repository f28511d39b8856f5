package tracker

// Detection represents a single object detection reported by the upstream
// detector/tracker for one frame
type Detection struct {
	// TrackID is the stable identifier assigned by the upstream tracker,
	// unique among objects present in the frame
	TrackID int64
	// Box is the bounding box of the detected object
	Box Box
	// ClassID is the class index of the object detected
	ClassID int
	// ClassName is the class label of the object detected
	ClassName string
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(trackID int64, box Box, classID int, className string) Detection {
	return Detection{
		TrackID:   trackID,
		Box:       box,
		ClassID:   classID,
		ClassName: className,
	}
}
