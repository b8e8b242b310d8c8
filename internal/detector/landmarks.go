// Package detector provides face detection interfaces and types for head-pose tracking.
package detector

import "math"

// Facial landmark indices. The set follows the six-point model the
// pose estimator needs: nose, chin, the outer eye corners and the
// mouth corners.
const (
	NoseTip = iota
	Chin
	LeftEyeOuter
	RightEyeOuter
	MouthLeft
	MouthRight
	NumLandmarks
)

// Point2D represents a point in frame coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FaceLandmarks represents the six facial landmarks for a single detected
// face, with the capture timestamp in Unix milliseconds. Instances are
// produced once per frame and never mutated afterwards.
type FaceLandmarks struct {
	Points      [NumLandmarks]Point2D `json:"points"`
	Score       float64               `json:"score"`
	TimestampMs int64                 `json:"timestamp_ms"`
}

// Complete reports whether the landmark set is usable for pose estimation.
// A face whose eye corners coincide (or whose chin sits on the eye line)
// has no measurable geometry and is treated as absent by callers.
func (f *FaceLandmarks) Complete() bool {
	if f == nil {
		return false
	}

	eyeSpan := distance2D(f.Points[LeftEyeOuter], f.Points[RightEyeOuter])
	if eyeSpan < 1e-9 {
		return false
	}

	eyeMid := midpoint(f.Points[LeftEyeOuter], f.Points[RightEyeOuter])
	if math.Abs(f.Points[Chin].Y-eyeMid.Y) < 1e-9 {
		return false
	}

	return true
}

// distance2D calculates the Euclidean distance between two points.
func distance2D(a, b Point2D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// midpoint returns the point halfway between a and b.
func midpoint(a, b Point2D) Point2D {
	return Point2D{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
	}
}
