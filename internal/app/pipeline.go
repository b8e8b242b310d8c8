package app

import (
	"log"
	"time"

	"github.com/ayusman/kathakali/internal/detector"
	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/store"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idle FPS)
// 2. On motion detected, switch to active mode (active FPS)
// 3. Run face detection and pose estimation
// 4. Feed the snapshot to the classifier; absent frames count too
// 5. Dispatch and record any emitted media command
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(a.config.IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Skip processing if tracking is disabled
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}
			a.metrics.FramesTotal.Inc()

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(a.config.ActiveFPS)
					frameInterval = time.Second / time.Duration(a.config.ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(a.config.IdleFPS)
					frameInterval = time.Second / time.Duration(a.config.IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip detection while idle
			if !activeMode {
				frame.Close()
				continue
			}

			// Step 2: Face detection
			start := time.Now()
			face, err := a.Detector().Detect(frame)
			frame.Close()
			a.metrics.DetectDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				log.Printf("Error detecting face: %v", err)
				continue
			}

			if face != nil {
				a.metrics.FacesTotal.Inc()
			} else {
				a.metrics.AbsentFramesTotal.Inc()
			}

			// Step 3: Classification and dispatch
			a.handleSnapshot(face)
		}
	}
}

// handleSnapshot feeds one landmark snapshot to the classifier and acts on
// whatever it emits. A nil snapshot counts as an absent frame.
func (a *App) handleSnapshot(face *detector.FaceLandmarks) {
	a.mu.Lock()

	if a.recalibrate && face.Complete() {
		if err := a.classifier.Recalibrate(face); err == nil {
			a.recalibrate = false
			if baseline, ok := a.classifier.Baseline(); ok {
				a.saveCalibration(baseline)
			}
			log.Println("Recalibrated neutral pose")
		}
	}

	cmd, emitted := a.classifier.Process(face, time.Now())
	status := a.classifier.Status()
	dispatcher := a.dispatcher
	hook := a.onCommand
	a.mu.Unlock()

	if !emitted {
		return
	}

	a.metrics.CommandsTotal.WithLabelValues(cmd.String()).Inc()
	log.Printf("Command emitted: %s (yaw=%.1f pitch=%.1f special=%.2f)",
		cmd, status.Yaw, status.Pitch, status.Special)

	if err := dispatcher.Dispatch(cmd); err != nil {
		a.metrics.DispatchFailures.Inc()
		log.Printf("Failed to dispatch %s: %v", cmd, err)
	}

	a.recordEvent(cmd, status)

	if hook != nil {
		hook(cmd)
	}
}

// recordEvent persists an emitted command to the event log.
func (a *App) recordEvent(cmd gesture.Command, status gesture.Status) {
	if a.config.Store == nil {
		return
	}

	err := a.config.Store.Events().Create(&store.Event{
		Command: cmd.String(),
		State:   status.State,
		Yaw:     status.Yaw,
		Pitch:   status.Pitch,
		Special: status.Special,
	})
	if err != nil {
		log.Printf("Failed to record event: %v", err)
	}
}

// saveCalibration persists a captured baseline. Called with a.mu held.
func (a *App) saveCalibration(baseline detector.Pose) {
	if a.config.Store == nil {
		return
	}

	err := a.config.Store.Calibrations().Create(&store.Calibration{
		Yaw:        baseline.Yaw,
		Pitch:      baseline.Pitch,
		MouthRatio: baseline.MouthRatio,
	})
	if err != nil {
		log.Printf("Failed to save calibration: %v", err)
	}
}
