package detector

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// HaarDetector implements Detector using OpenCV's Haar cascade frontal-face
// model. The cascade yields a bounding rectangle only, so the six landmarks
// are synthesized from face-box geometry: eyes a third of the way down, the
// mouth two thirds down, the chin at the bottom edge. The nose tip is skewed
// by the face's offset from the frame center, which makes the synthesized
// geometry track head rotation the same way the box itself drifts.
type HaarDetector struct {
	config     Config
	classifier gocv.CascadeClassifier
	mu         sync.Mutex
	closed     bool
}

// NewHaarDetector creates a HaarDetector, loading the cascade model from the
// configured path or from common OpenCV install locations.
func NewHaarDetector(config Config) (*HaarDetector, error) {
	path := findCascadeFile(config.CascadeFile)
	if path == "" {
		return nil, fmt.Errorf("haar cascade %q not found", config.CascadeFile)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load haar cascade from %s", path)
	}

	return &HaarDetector{
		config:     config,
		classifier: classifier,
	}, nil
}

// Detect runs the cascade over the frame and synthesizes landmarks for the
// largest detected face. Returns nil landmarks when no face is present.
func (d *HaarDetector) Detect(frame *gocv.Mat) (*FaceLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("detector is closed")
	}
	if frame == nil || frame.Empty() {
		return nil, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	minSize := image.Pt(d.config.MinFaceSize, d.config.MinFaceSize)
	rects := d.classifier.DetectMultiScaleWithParams(
		gray, d.config.ScaleFactor, d.config.MinNeighbors, 0, minSize, image.Pt(0, 0),
	)
	if len(rects) == 0 {
		return nil, nil
	}

	// Largest face wins; smaller detections are bystanders or noise.
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
		}
	}

	return synthesizeLandmarks(best, frame.Cols(), frame.Rows()), nil
}

// Close releases the cascade classifier.
func (d *HaarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.classifier.Close()
}

// synthesizeLandmarks builds the six-point landmark set from a face
// rectangle. The nose tip and chin encode the face's displacement from the
// frame center so that EstimatePose recovers a yaw/pitch proxy from the
// geometry alone.
func synthesizeLandmarks(face image.Rectangle, frameW, frameH int) *FaceLandmarks {
	x := float64(face.Min.X)
	y := float64(face.Min.Y)
	w := float64(face.Dx())
	h := float64(face.Dy())

	centerX := x + w/2
	eyeY := y + h/3
	mouthY := y + 2*h/3
	eyeSpan := w / 2

	// Horizontal drift of the face box from frame center, normalized to a
	// quarter frame. A head turn moves the box the same direction the nose
	// tip moves relative to the eyes, so the skew stands in for the real
	// nose displacement the cascade cannot see.
	xDrift := (centerX - float64(frameW)/2) / (float64(frameW) / 4)
	yDrift := (y + h/2 - float64(frameH)/2) / (float64(frameH) / 4)

	noseX := centerX + xDrift*eyeSpan/3

	chinY := y + h
	noseRatio := neutralNoseRatio + yDrift/3
	noseY := eyeY + noseRatio*(chinY-eyeY)

	lm := &FaceLandmarks{
		Score:       1.0,
		TimestampMs: time.Now().UnixMilli(),
	}
	lm.Points[NoseTip] = Point2D{X: noseX, Y: noseY}
	lm.Points[Chin] = Point2D{X: centerX, Y: chinY}
	lm.Points[LeftEyeOuter] = Point2D{X: centerX - eyeSpan/2, Y: eyeY}
	lm.Points[RightEyeOuter] = Point2D{X: centerX + eyeSpan/2, Y: eyeY}
	lm.Points[MouthLeft] = Point2D{X: centerX - w/4, Y: mouthY}
	lm.Points[MouthRight] = Point2D{X: centerX + w/4, Y: mouthY}

	return lm
}

// findCascadeFile locates the Haar cascade XML, checking the configured path
// first and then common OpenCV data directories.
func findCascadeFile(configured string) string {
	if configured == "" {
		configured = DefaultConfig().CascadeFile
	}

	candidates := []string{
		configured,
		filepath.Join("/usr/share/opencv4/haarcascades", filepath.Base(configured)),
		filepath.Join("/usr/local/share/opencv4/haarcascades", filepath.Base(configured)),
		filepath.Join("/opt/homebrew/share/opencv4/haarcascades", filepath.Base(configured)),
		filepath.Join(os.Getenv("HOME"), ".kathakali", filepath.Base(configured)),
	}

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
