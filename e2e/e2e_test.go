package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/kathakali/internal/app"
	"github.com/ayusman/kathakali/internal/capture"
	"github.com/ayusman/kathakali/internal/detector"
	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/media"
	"github.com/ayusman/kathakali/internal/metrics"
	"github.com/ayusman/kathakali/internal/server"
	"github.com/ayusman/kathakali/internal/server/api"
	"github.com/ayusman/kathakali/internal/store"
)

type harness struct {
	app        *app.App
	store      *store.Store
	detector   *detector.MockDetector
	dispatcher *media.MockDispatcher
	ts         *httptest.Server
}

// newHarness wires the full stack with a mock camera playing alternating
// frames so the motion gate stays active.
func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	m := metrics.New()

	a := app.New(app.Config{
		Store:     s,
		Metrics:   m,
		PluginDir: filepath.Join(t.TempDir(), "plugins"),
		IdleFPS:   30,
		ActiveFPS: 30,
		Classifier: gesture.Config{
			YawThreshold:     20,
			PitchThreshold:   15,
			SpecialThreshold: 0.5,
			SmoothingWindow:  1,
			Cooldown:         300 * time.Millisecond,
			AbsenceTolerance: 5,
			AbsenceReset:     2 * time.Second,
		},
	})

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))
	t.Cleanup(func() {
		black.Close()
		white.Close()
	})
	a.SetCamera(capture.NewMockCamera([]*gocv.Mat{&black, &white}, true))

	det := detector.NewMockDetector()
	a.SetDetector(det)

	dispatcher := media.NewMockDispatcher()
	a.SetDispatcher(dispatcher)

	srv := server.New(server.Config{
		Store:  s,
		Status: a.Status,
		GetSettings: func() api.Settings {
			cfg := a.ClassifierConfig()
			return api.Settings{
				YawThreshold:     cfg.YawThreshold,
				PitchThreshold:   cfg.PitchThreshold,
				SpecialThreshold: cfg.SpecialThreshold,
				SmoothingWindow:  cfg.SmoothingWindow,
				CooldownMs:       int(cfg.Cooldown / time.Millisecond),
				AbsenceTolerance: cfg.AbsenceTolerance,
				AbsenceResetMs:   int(cfg.AbsenceReset / time.Millisecond),
			}
		},
		ApplySettings: func(in api.Settings) error {
			a.ApplySettings(gesture.Config{
				YawThreshold:     in.YawThreshold,
				PitchThreshold:   in.PitchThreshold,
				SpecialThreshold: in.SpecialThreshold,
				SmoothingWindow:  in.SmoothingWindow,
				Cooldown:         time.Duration(in.CooldownMs) * time.Millisecond,
				AbsenceTolerance: in.AbsenceTolerance,
				AbsenceReset:     time.Duration(in.AbsenceResetMs) * time.Millisecond,
			})
			return nil
		},
		Recalibrate: a.RequestRecalibration,
		Metrics:     m.Handler(),
	})

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &harness{app: a, store: s, detector: det, dispatcher: dispatcher, ts: ts}
}

func (h *harness) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(h.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s error = %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("GET %s decode error = %v", path, err)
		}
	}
	return resp
}

func TestEndToEnd_HeadTurnBecomesCommandAndEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test")
	}

	h := newHarness(t)

	h.detector.SetFace(detector.NeutralFaceLandmarks())
	if err := h.app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.app.Stop()
	h.app.SetEnabled(true)

	// Let the pipeline calibrate on the neutral pose.
	time.Sleep(500 * time.Millisecond)

	var status gesture.Status
	h.get(t, "/api/status", &status)
	if !status.Calibrated {
		t.Fatal("classifier should calibrate from the neutral pose")
	}

	// Turn the head and wait for at least one emission.
	h.detector.SetFace(detector.TurnedRightFaceLandmarks(30))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if len(h.dispatcher.Commands()) > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	cmds := h.dispatcher.Commands()
	if len(cmds) == 0 {
		t.Fatal("no command dispatched after a sustained head turn")
	}
	for _, cmd := range cmds {
		if cmd != gesture.CommandNextTrack {
			t.Errorf("dispatched %v, want only next-track", cmd)
		}
	}

	// The event log is visible over HTTP.
	var events struct {
		Events []struct {
			Command string `json:"command"`
			State   string `json:"state"`
		} `json:"events"`
	}
	h.get(t, "/api/events", &events)
	if len(events.Events) == 0 {
		t.Fatal("no events recorded")
	}
	if events.Events[0].Command != "next-track" {
		t.Errorf("event command = %q, want next-track", events.Events[0].Command)
	}
	if events.Events[0].State != "turning-right" {
		t.Errorf("event state = %q, want turning-right", events.Events[0].State)
	}

	// The metrics endpoint reflects the pipeline activity.
	resp, err := http.Get(h.ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body := make([]byte, 1<<16)
	n, _ := resp.Body.Read(body)
	resp.Body.Close()
	if !strings.Contains(string(body[:n]), `kathakali_commands_total{command="next-track"}`) {
		t.Error("metrics output missing the command counter")
	}
}

func TestEndToEnd_SettingsChangeAffectsPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test")
	}

	h := newHarness(t)

	h.detector.SetFace(detector.NeutralFaceLandmarks())
	if err := h.app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.app.Stop()
	h.app.SetEnabled(true)

	time.Sleep(500 * time.Millisecond)

	// Raise the yaw threshold over HTTP so a 30 degree turn stays quiet.
	req, err := http.NewRequest(http.MethodPut, h.ts.URL+"/api/settings",
		strings.NewReader(`{"yaw_threshold": 45}`))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /api/settings status = %d, want 200", resp.StatusCode)
	}

	h.detector.SetFace(detector.TurnedRightFaceLandmarks(30))
	time.Sleep(time.Second)

	if got := h.dispatcher.Commands(); len(got) != 0 {
		t.Errorf("dispatched %v below the raised threshold, want none", got)
	}

	var settings api.Settings
	h.get(t, "/api/settings", &settings)
	if settings.YawThreshold != 45 {
		t.Errorf("settings yaw threshold = %f, want 45", settings.YawThreshold)
	}
}

func TestEndToEnd_RecalibrateOverHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end test")
	}

	h := newHarness(t)

	h.detector.SetFace(detector.TurnedRightFaceLandmarks(30))
	if err := h.app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer h.app.Stop()
	h.app.SetEnabled(true)

	// The turned pose becomes the baseline, so holding it stays neutral.
	time.Sleep(500 * time.Millisecond)

	resp, err := http.Post(h.ts.URL+"/api/recalibrate", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("POST /api/recalibrate status = %d, want 202", resp.StatusCode)
	}

	time.Sleep(500 * time.Millisecond)

	calibrations, err := h.store.Calibrations().List()
	if err != nil {
		t.Fatal(err)
	}
	if len(calibrations) == 0 {
		t.Fatal("recalibration should persist a baseline")
	}
	if calibrations[0].Yaw < 20 {
		t.Errorf("calibration yaw = %f, want the turned pose", calibrations[0].Yaw)
	}
}
