package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed face, an error, or a scripted sequence of
// per-frame results (nil entries meaning "no face this frame").
type MockDetector struct {
	face     *FaceLandmarks
	err      error
	sequence []*FaceLandmarks
	index    int
	mu       sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFace sets the face that will be returned by every Detect call.
func (m *MockDetector) SetFace(face *FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.face = face
	m.sequence = nil
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetSequence scripts per-frame results. Each Detect call consumes one
// entry; after the sequence is exhausted, Detect reports no face.
func (m *MockDetector) SetSequence(faces []*FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = faces
	m.index = 0
	m.face = nil
}

// Detect returns the pre-configured face, sequence entry, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*FaceLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if m.index >= len(m.sequence) {
			return nil, nil
		}
		face := m.sequence[m.index]
		m.index++
		return face, nil
	}
	return m.face, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset geometry for synthetic faces. Frame coordinates are normalized to
// a unit frame with the eye line at y=0.4.
const (
	presetEyeMidX  = 0.5
	presetEyeMidY  = 0.4
	presetEyeSpan  = 0.2
	presetChinDrop = 0.3
	// presetMouthRatio is the neutral mouth drop below the eye line,
	// relative to the eye span.
	presetMouthRatio = 1.2
)

// FaceWithPose builds a synthetic landmark set whose EstimatePose result is
// the given yaw and pitch (degrees) and mouth ratio. It inverts the pose
// math, which makes classifier tests independent of the estimator's scale.
func FaceWithPose(yaw, pitch, mouthRatio float64) *FaceLandmarks {
	chinY := presetEyeMidY + presetChinDrop

	noseX := presetEyeMidX + yaw/90*presetEyeSpan
	noseRatio := neutralNoseRatio + pitch/90
	noseY := presetEyeMidY + noseRatio*(chinY-presetEyeMidY)

	mouthY := presetEyeMidY + mouthRatio*presetEyeSpan

	lm := &FaceLandmarks{
		Score:       0.95,
		TimestampMs: time.Now().UnixMilli(),
	}
	lm.Points[NoseTip] = Point2D{X: noseX, Y: noseY}
	lm.Points[Chin] = Point2D{X: presetEyeMidX, Y: chinY}
	lm.Points[LeftEyeOuter] = Point2D{X: presetEyeMidX - presetEyeSpan/2, Y: presetEyeMidY}
	lm.Points[RightEyeOuter] = Point2D{X: presetEyeMidX + presetEyeSpan/2, Y: presetEyeMidY}
	lm.Points[MouthLeft] = Point2D{X: presetEyeMidX - presetEyeSpan/2, Y: mouthY}
	lm.Points[MouthRight] = Point2D{X: presetEyeMidX + presetEyeSpan/2, Y: mouthY}

	return lm
}

// NeutralFaceLandmarks returns a preset face looking straight at the camera.
func NeutralFaceLandmarks() *FaceLandmarks {
	return FaceWithPose(0, 0, presetMouthRatio)
}

// TurnedRightFaceLandmarks returns a preset face turned toward the
// subject's right by the given yaw in degrees.
func TurnedRightFaceLandmarks(yaw float64) *FaceLandmarks {
	return FaceWithPose(yaw, 0, presetMouthRatio)
}

// TiltedFaceLandmarks returns a preset face tilted by the given pitch in
// degrees (positive is down).
func TiltedFaceLandmarks(pitch float64) *FaceLandmarks {
	return FaceWithPose(0, pitch, presetMouthRatio)
}

// OpenMouthFaceLandmarks returns a preset face with the jaw dropped by the
// given extra mouth ratio beyond neutral.
func OpenMouthFaceLandmarks(extra float64) *FaceLandmarks {
	return FaceWithPose(0, 0, presetMouthRatio+extra)
}
