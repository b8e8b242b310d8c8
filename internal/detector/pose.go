package detector

import "math"

// Pose holds the head-pose signals derived from one landmark snapshot.
// Angles are in degrees. Yaw is positive when the head turns toward the
// subject's right (nose drifts toward the right eye in frame coordinates),
// pitch is positive when the head tilts down. MouthRatio is the vertical
// drop of the mouth line below the eye line, scaled by the eye span; it
// rises when the jaw drops.
type Pose struct {
	Yaw        float64 `json:"yaw"`
	Pitch      float64 `json:"pitch"`
	Roll       float64 `json:"roll"`
	MouthRatio float64 `json:"mouth_ratio"`
}

// Sub returns the pose relative to a baseline.
func (p Pose) Sub(baseline Pose) Pose {
	return Pose{
		Yaw:        p.Yaw - baseline.Yaw,
		Pitch:      p.Pitch - baseline.Pitch,
		Roll:       p.Roll - baseline.Roll,
		MouthRatio: p.MouthRatio - baseline.MouthRatio,
	}
}

// neutralNoseRatio is where the nose tip sits between the eye line and the
// chin on a level head. Deviations from it drive the pitch estimate.
const neutralNoseRatio = 0.45

// EstimatePose derives yaw, pitch, roll and the mouth ratio from a landmark
// snapshot. The estimate is purely geometric: the nose tip's horizontal
// offset from the eye midpoint (scaled by the eye span) gives yaw, its
// vertical position between the eye line and the chin gives pitch, and the
// slope of the eye line gives roll.
//
// Absolute accuracy does not matter here; the classifier compares poses
// against a calibrated baseline, so the estimate only has to move
// monotonically with the real head rotation.
func EstimatePose(f *FaceLandmarks) Pose {
	if !f.Complete() {
		return Pose{}
	}

	leftEye := f.Points[LeftEyeOuter]
	rightEye := f.Points[RightEyeOuter]
	eyeMid := midpoint(leftEye, rightEye)
	eyeSpan := distance2D(leftEye, rightEye)

	nose := f.Points[NoseTip]
	chin := f.Points[Chin]

	yaw := (nose.X - eyeMid.X) / eyeSpan * 90

	noseRatio := (nose.Y - eyeMid.Y) / (chin.Y - eyeMid.Y)
	pitch := (noseRatio - neutralNoseRatio) * 90

	roll := math.Atan2(rightEye.Y-leftEye.Y, rightEye.X-leftEye.X) * 180 / math.Pi

	mouthMid := midpoint(f.Points[MouthLeft], f.Points[MouthRight])
	mouthRatio := (mouthMid.Y - eyeMid.Y) / eyeSpan

	return Pose{
		Yaw:        yaw,
		Pitch:      pitch,
		Roll:       roll,
		MouthRatio: mouthRatio,
	}
}
