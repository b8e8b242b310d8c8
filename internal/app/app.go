// Package app provides the main application logic for the Kathakali head
// gesture controller.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/ayusman/kathakali/internal/capture"
	"github.com/ayusman/kathakali/internal/detector"
	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/media"
	"github.com/ayusman/kathakali/internal/metrics"
	"github.com/ayusman/kathakali/internal/plugin"
	"github.com/ayusman/kathakali/internal/store"
)

// Pipeline timing constants.
const (
	// DefaultIdleFPS is the frame rate when no motion is detected.
	DefaultIdleFPS = 5
	// DefaultActiveFPS is the frame rate during active tracking.
	DefaultActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds without motion before
	// switching back to idle mode.
	IdleTimeoutMs = 2000
)

// ErrNotRunning is returned for operations that need the pipeline running.
var ErrNotRunning = errors.New("pipeline is not running")

// Config holds configuration options for the application.
type Config struct {
	Store           *store.Store
	Metrics         *metrics.Metrics
	CameraID        int
	IdleFPS         int
	ActiveFPS       int
	MotionThreshold float64
	CascadeFile     string
	Classifier      gesture.Config
	PluginDir       string
	PluginTimeout   time.Duration
}

// App orchestrates the capture, detection, classification, and dispatch
// pipeline.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	dispatcher media.Dispatcher
	pluginMgr  *plugin.Manager
	metrics    *metrics.Metrics

	enabled     bool
	recalibrate bool
	onCommand   func(gesture.Command)
	mu          sync.RWMutex
	stopCh      chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.IdleFPS <= 0 {
		config.IdleFPS = DefaultIdleFPS
	}
	if config.ActiveFPS <= 0 {
		config.ActiveFPS = DefaultActiveFPS
	}
	motionThreshold := config.MotionThreshold
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = 5 * time.Second
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}

	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		motion:     capture.NewMotionDetector(motionThreshold),
		classifier: gesture.NewClassifier(config.Classifier),
		pluginMgr:  plugin.NewManager(config.PluginDir),
		metrics:    config.Metrics,
		enabled:    false,
		stopCh:     nil,
	}

	exec := plugin.NewExecutor(config.PluginTimeout)
	a.dispatcher = media.NewPluginDispatcher(a.pluginMgr, exec, media.NewKeyDispatcher())

	// Try the Haar cascade first, fall back to mock detector
	detCfg := detector.DefaultConfig()
	if config.CascadeFile != "" {
		detCfg.CascadeFile = config.CascadeFile
	}
	if haar, err := detector.NewHaarDetector(detCfg); err == nil {
		a.detector = haar
		log.Println("Using Haar cascade face detection")
	} else {
		log.Printf("Haar cascade not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables head tracking.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether head tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the face detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDispatcher sets the media command dispatcher to use.
func (a *App) SetDispatcher(d media.Dispatcher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dispatcher = d
}

// OnCommand registers a hook invoked after each dispatched command.
func (a *App) OnCommand(fn func(gesture.Command)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onCommand = fn
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Status returns the current classifier status.
func (a *App) Status() gesture.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.classifier.Status()
}

// ClassifierConfig returns the live classifier tunables.
func (a *App) ClassifierConfig() gesture.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.classifier.Config()
}

// ApplySettings pushes updated tunables into the running classifier.
func (a *App) ApplySettings(cfg gesture.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.classifier.SetConfig(cfg)
}

// RequestRecalibration asks the pipeline to capture a new baseline from the
// next frame with a usable face.
func (a *App) RequestRecalibration() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return ErrNotRunning
	}
	a.recalibrate = true
	return nil
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	a.camera.SetFPS(a.config.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}
