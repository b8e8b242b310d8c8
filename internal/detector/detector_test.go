package detector

import (
	"image"
	"math"
	"testing"
)

func TestEstimatePose_Neutral(t *testing.T) {
	pose := EstimatePose(NeutralFaceLandmarks())

	if math.Abs(pose.Yaw) > 1e-9 {
		t.Errorf("neutral yaw = %f, want 0", pose.Yaw)
	}
	if math.Abs(pose.Pitch) > 1e-9 {
		t.Errorf("neutral pitch = %f, want 0", pose.Pitch)
	}
	if math.Abs(pose.Roll) > 1e-9 {
		t.Errorf("neutral roll = %f, want 0", pose.Roll)
	}
	if pose.MouthRatio <= 0 {
		t.Errorf("neutral mouth ratio = %f, want > 0", pose.MouthRatio)
	}
}

func TestEstimatePose_RoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		yaw        float64
		pitch      float64
		mouthRatio float64
	}{
		{name: "turned right", yaw: 25, pitch: 0, mouthRatio: presetMouthRatio},
		{name: "turned left", yaw: -30, pitch: 0, mouthRatio: presetMouthRatio},
		{name: "tilted down", yaw: 0, pitch: 18, mouthRatio: presetMouthRatio},
		{name: "tilted up", yaw: 0, pitch: -18, mouthRatio: presetMouthRatio},
		{name: "mouth open", yaw: 0, pitch: 0, mouthRatio: presetMouthRatio + 0.6},
		{name: "combined", yaw: 12, pitch: -7, mouthRatio: presetMouthRatio + 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pose := EstimatePose(FaceWithPose(tt.yaw, tt.pitch, tt.mouthRatio))

			if math.Abs(pose.Yaw-tt.yaw) > 1e-6 {
				t.Errorf("yaw = %f, want %f", pose.Yaw, tt.yaw)
			}
			if math.Abs(pose.Pitch-tt.pitch) > 1e-6 {
				t.Errorf("pitch = %f, want %f", pose.Pitch, tt.pitch)
			}
			if math.Abs(pose.MouthRatio-tt.mouthRatio) > 1e-6 {
				t.Errorf("mouth ratio = %f, want %f", pose.MouthRatio, tt.mouthRatio)
			}
		})
	}
}

func TestEstimatePose_BaselineRelative(t *testing.T) {
	baseline := EstimatePose(FaceWithPose(10, -5, presetMouthRatio))
	current := EstimatePose(FaceWithPose(35, -5, presetMouthRatio))

	rel := current.Sub(baseline)
	if math.Abs(rel.Yaw-25) > 1e-6 {
		t.Errorf("relative yaw = %f, want 25", rel.Yaw)
	}
	if math.Abs(rel.Pitch) > 1e-6 {
		t.Errorf("relative pitch = %f, want 0", rel.Pitch)
	}
}

func TestFaceLandmarks_Complete(t *testing.T) {
	var nilFace *FaceLandmarks
	if nilFace.Complete() {
		t.Error("nil landmarks should not be complete")
	}

	// Zero-value landmarks collapse all points onto the origin.
	degenerate := &FaceLandmarks{}
	if degenerate.Complete() {
		t.Error("degenerate landmarks should not be complete")
	}

	if !NeutralFaceLandmarks().Complete() {
		t.Error("preset landmarks should be complete")
	}
}

func TestEstimatePose_DegenerateIsZero(t *testing.T) {
	pose := EstimatePose(&FaceLandmarks{})
	if pose != (Pose{}) {
		t.Errorf("degenerate pose = %+v, want zero value", pose)
	}
}

func TestSynthesizeLandmarks_Centered(t *testing.T) {
	// A face box centered in the frame must synthesize a neutral pose.
	face := image.Rect(270, 190, 370, 290) // 100x100 centered in 640x480
	lm := synthesizeLandmarks(face, 640, 480)

	if !lm.Complete() {
		t.Fatal("synthesized landmarks should be complete")
	}

	pose := EstimatePose(lm)
	if math.Abs(pose.Yaw) > 0.5 {
		t.Errorf("centered face yaw = %f, want ~0", pose.Yaw)
	}
	if math.Abs(pose.Pitch) > 0.5 {
		t.Errorf("centered face pitch = %f, want ~0", pose.Pitch)
	}
}

func TestSynthesizeLandmarks_OffsetEncodesPose(t *testing.T) {
	// Shifting the face box right of center must raise yaw, and shifting
	// it down must raise pitch.
	right := synthesizeLandmarks(image.Rect(420, 190, 520, 290), 640, 480)
	left := synthesizeLandmarks(image.Rect(20, 190, 120, 290), 640, 480)
	down := synthesizeLandmarks(image.Rect(270, 340, 370, 440), 640, 480)

	if yaw := EstimatePose(right).Yaw; yaw <= 0 {
		t.Errorf("right-shifted face yaw = %f, want > 0", yaw)
	}
	if yaw := EstimatePose(left).Yaw; yaw >= 0 {
		t.Errorf("left-shifted face yaw = %f, want < 0", yaw)
	}
	if pitch := EstimatePose(down).Pitch; pitch <= 0 {
		t.Errorf("down-shifted face pitch = %f, want > 0", pitch)
	}
}

func TestMockDetector_Sequence(t *testing.T) {
	m := NewMockDetector()
	m.SetSequence([]*FaceLandmarks{
		NeutralFaceLandmarks(),
		nil,
		TurnedRightFaceLandmarks(25),
	})

	face, err := m.Detect(nil)
	if err != nil || face == nil {
		t.Fatalf("first Detect = (%v, %v), want face", face, err)
	}

	face, err = m.Detect(nil)
	if err != nil || face != nil {
		t.Fatalf("second Detect = (%v, %v), want absent", face, err)
	}

	face, err = m.Detect(nil)
	if err != nil || face == nil {
		t.Fatalf("third Detect = (%v, %v), want face", face, err)
	}

	// Exhausted sequence reports no face.
	face, err = m.Detect(nil)
	if err != nil || face != nil {
		t.Fatalf("exhausted Detect = (%v, %v), want absent", face, err)
	}
}
