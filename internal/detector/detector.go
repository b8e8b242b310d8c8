package detector

import "gocv.io/x/gocv"

// Detector defines the interface for face detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of the most
	// prominent face, or nil if no face is found. Detection failure for a
	// single frame is not an error; errors are reserved for broken
	// detectors (missing model, closed resources).
	Detect(frame *gocv.Mat) (*FaceLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// CascadeFile is the path to the Haar cascade XML model.
	CascadeFile string

	// ScaleFactor is the image pyramid scale step for the cascade scan.
	ScaleFactor float64

	// MinNeighbors is the number of neighboring detections required to
	// retain a face candidate.
	MinNeighbors int

	// MinFaceSize is the smallest face edge length in pixels to consider.
	MinFaceSize int
}

// DefaultConfig returns a Config with sensible default values.
// The cascade path matches the file shipped with OpenCV installs.
func DefaultConfig() Config {
	return Config{
		CascadeFile:  "haarcascade_frontalface_default.xml",
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		MinFaceSize:  30,
	}
}
