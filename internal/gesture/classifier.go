package gesture

import (
	"errors"
	"time"

	"github.com/ayusman/kathakali/internal/detector"
)

// ErrIncompleteSnapshot is returned when recalibration is requested with a
// snapshot that has no usable face geometry.
var ErrIncompleteSnapshot = errors.New("incomplete landmark snapshot")

// Config holds the classifier's tunable parameters. All of them are
// configuration rather than constants; see config.Default for the values
// the application ships with.
type Config struct {
	// YawThreshold is the smoothed yaw angle in degrees beyond which a
	// head turn triggers next/previous track.
	YawThreshold float64

	// PitchThreshold is the smoothed pitch angle in degrees beyond which
	// a head tilt (either direction) triggers play/pause.
	PitchThreshold float64

	// SpecialThreshold is the smoothed mouth-ratio delta beyond which the
	// special gesture triggers mute.
	SpecialThreshold float64

	// SmoothingWindow is the number of samples in the moving average.
	SmoothingWindow int

	// Cooldown is the wall-clock interval after an emission during which
	// no further command is issued.
	Cooldown time.Duration

	// AbsenceTolerance is the number of consecutive absent frames
	// tolerated before state and history reset.
	AbsenceTolerance int

	// AbsenceReset is the wall-clock absence duration after which the
	// calibration baseline is dropped and must be re-established.
	AbsenceReset time.Duration
}

// normalize clamps nonsensical values to workable ones.
func (c Config) normalize() Config {
	if c.YawThreshold <= 0 {
		c.YawThreshold = 20
	}
	if c.PitchThreshold <= 0 {
		c.PitchThreshold = 15
	}
	if c.SpecialThreshold <= 0 {
		c.SpecialThreshold = 0.5
	}
	if c.SmoothingWindow < 1 {
		c.SmoothingWindow = 1
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 800 * time.Millisecond
	}
	if c.AbsenceTolerance < 0 {
		c.AbsenceTolerance = 0
	}
	if c.AbsenceReset <= 0 {
		c.AbsenceReset = 2 * time.Second
	}
	return c
}

// DefaultConfig returns the classifier defaults.
func DefaultConfig() Config {
	return Config{}.normalize()
}

// Status is a copy of the classifier's observable state, safe to hand to
// presentation code.
type Status struct {
	State       string  `json:"state"`
	Calibrated  bool    `json:"calibrated"`
	Yaw         float64 `json:"yaw"`
	Pitch       float64 `json:"pitch"`
	Special     float64 `json:"special"`
	LastCommand string  `json:"last_command,omitempty"`
}

// Classifier converts a per-frame stream of landmark snapshots into
// debounced media commands. It owns all of its state; it is pure
// computation with no side effects beyond the returned command, and it is
// not safe for concurrent use (the processing loop is its only caller).
type Classifier struct {
	config Config

	baseline   *detector.Pose
	history    *History
	state      State
	smoothed   Sample
	lastCmd    Command
	hasLastCmd bool

	cooldownUntil time.Time
	absentCount   int
	absentSince   time.Time
}

// NewClassifier creates a Classifier with the given configuration.
func NewClassifier(config Config) *Classifier {
	config = config.normalize()
	return &Classifier{
		config:  config,
		history: NewHistory(config.SmoothingWindow),
		state:   StateNeutral,
	}
}

// Process consumes one frame's snapshot (nil when no face was detected) and
// returns the command to emit, if any. Exactly one command is emitted per
// qualifying transition; ties are broken yaw over pitch over special. The
// supplied time drives the cooldown and absence timers, which keeps the
// classifier deterministic under test and robust to irregular frame rates.
func (c *Classifier) Process(snapshot *detector.FaceLandmarks, now time.Time) (Command, bool) {
	if !snapshot.Complete() {
		c.processAbsent(now)
		return 0, false
	}

	c.absentCount = 0
	c.absentSince = time.Time{}

	pose := detector.EstimatePose(snapshot)

	// First valid snapshot after startup or a long absence becomes the
	// neutral baseline; classification starts on the next frame's motion
	// relative to it.
	if c.baseline == nil {
		c.baseline = &pose
	}

	rel := pose.Sub(*c.baseline)
	c.history.Append(Sample{Yaw: rel.Yaw, Pitch: rel.Pitch, Special: rel.MouthRatio})
	c.smoothed = c.history.Mean()

	// The cooldown is keyed on time alone, so a brief face loss inside the
	// window (which resets state to neutral) cannot re-arm emission early.
	if now.Before(c.cooldownUntil) {
		c.state = StateCooldown
		return 0, false
	}

	state, cmd, ok := c.decide(c.smoothed)
	if !ok {
		c.state = StateNeutral
		return 0, false
	}

	c.state = state
	c.cooldownUntil = now.Add(c.config.Cooldown)
	c.lastCmd = cmd
	c.hasLastCmd = true
	return cmd, true
}

// decide applies the threshold comparisons in fixed priority order:
// yaw, then pitch, then the special gesture.
func (c *Classifier) decide(s Sample) (State, Command, bool) {
	switch {
	case s.Yaw >= c.config.YawThreshold:
		return StateTurningRight, CommandNextTrack, true
	case s.Yaw <= -c.config.YawThreshold:
		return StateTurningLeft, CommandPreviousTrack, true
	case s.Pitch <= -c.config.PitchThreshold:
		return StateTiltingUp, CommandPlayPause, true
	case s.Pitch >= c.config.PitchThreshold:
		return StateTiltingDown, CommandPlayPause, true
	case s.Special >= c.config.SpecialThreshold:
		return StateSpecialGesture, CommandToggleMute, true
	default:
		return StateNeutral, 0, false
	}
}

// processAbsent handles a frame with no usable face. Brief occlusion (a
// blink, a hand passing the lens) leaves history intact; a longer gap
// resets state and history, and a gap past the reset timeout drops the
// baseline entirely since the subject or camera may have changed.
func (c *Classifier) processAbsent(now time.Time) {
	c.absentCount++
	if c.absentSince.IsZero() {
		c.absentSince = now
	}

	if c.absentCount > c.config.AbsenceTolerance {
		c.state = StateNeutral
		c.history.Clear()
		c.smoothed = Sample{}
	}

	if now.Sub(c.absentSince) >= c.config.AbsenceReset {
		c.baseline = nil
	}
}

// Recalibrate replaces the neutral baseline with the pose of the given
// snapshot and clears all transient state. The baseline is overwritten
// wholesale; there is no partially-updated intermediate.
func (c *Classifier) Recalibrate(snapshot *detector.FaceLandmarks) error {
	if !snapshot.Complete() {
		return ErrIncompleteSnapshot
	}

	pose := detector.EstimatePose(snapshot)
	c.baseline = &pose
	c.history.Clear()
	c.smoothed = Sample{}
	c.state = StateNeutral
	c.cooldownUntil = time.Time{}
	c.absentCount = 0
	c.absentSince = time.Time{}
	return nil
}

// Reset drops the baseline and all transient state, as if the classifier
// had just been created.
func (c *Classifier) Reset() {
	c.baseline = nil
	c.history.Clear()
	c.smoothed = Sample{}
	c.state = StateNeutral
	c.cooldownUntil = time.Time{}
	c.absentCount = 0
	c.absentSince = time.Time{}
	c.hasLastCmd = false
}

// SetConfig replaces the tunables. The smoothing window is rebuilt, so a
// few frames of history are lost; that only delays the next emission by a
// fraction of a second.
func (c *Classifier) SetConfig(config Config) {
	config = config.normalize()
	if config.SmoothingWindow != c.config.SmoothingWindow {
		c.history = NewHistory(config.SmoothingWindow)
	}
	c.config = config
}

// Config returns the current tunables.
func (c *Classifier) Config() Config {
	return c.config
}

// Calibrated reports whether a neutral baseline exists.
func (c *Classifier) Calibrated() bool {
	return c.baseline != nil
}

// Baseline returns the current neutral pose, if any.
func (c *Classifier) Baseline() (detector.Pose, bool) {
	if c.baseline == nil {
		return detector.Pose{}, false
	}
	return *c.baseline, true
}

// State returns the current gesture state.
func (c *Classifier) State() State {
	return c.state
}

// Status returns a copy of the observable state for presentation code.
func (c *Classifier) Status() Status {
	st := Status{
		State:      c.state.String(),
		Calibrated: c.baseline != nil,
		Yaw:        c.smoothed.Yaw,
		Pitch:      c.smoothed.Pitch,
		Special:    c.smoothed.Special,
	}
	if c.hasLastCmd {
		st.LastCommand = c.lastCmd.String()
	}
	return st
}
