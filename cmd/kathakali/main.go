package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ayusman/kathakali/internal/app"
	"github.com/ayusman/kathakali/internal/config"
	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/metrics"
	"github.com/ayusman/kathakali/internal/server"
	"github.com/ayusman/kathakali/internal/server/api"
	"github.com/ayusman/kathakali/internal/store"
	"github.com/ayusman/kathakali/internal/tray"
)

// settingsKey is the settings-table key for the persisted classifier tunables.
const settingsKey = "classifier"

var (
	configPath string
	cameraID   int
	serverAddr string
	pluginDir  string
	headless   bool
)

var rootCmd = &cobra.Command{
	Use:   "kathakali",
	Short: "Control media playback with head movements",
	Long: `Kathakali watches the webcam for head movements and turns them into
media key presses: turn for track skipping, nod for play/pause, open
your mouth to toggle mute. A small HTTP dashboard exposes live pose,
settings, and the command log.`,
	RunE: run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.Flags().IntVar(&cameraID, "camera", -1, "Camera device index (overrides config)")
	rootCmd.Flags().StringVar(&serverAddr, "addr", "", "Dashboard listen address (overrides config)")
	rootCmd.Flags().StringVar(&pluginDir, "plugins", "", "Plugin directory (overrides config)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "Run without the system tray")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("camera") {
		cfg.Camera.DeviceID = cameraID
	}
	if serverAddr != "" {
		cfg.Server.Addr = serverAddr
	}
	if pluginDir != "" {
		cfg.Plugins.Dir = pluginDir
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	classifierCfg := cfg.Classifier.ToClassifier()
	if saved, err := loadSavedSettings(st); err == nil {
		classifierCfg = configFromSettings(saved)
		log.Println("Restored classifier settings from database")
	}

	m := metrics.New()

	a := app.New(app.Config{
		Store:           st,
		Metrics:         m,
		CameraID:        cfg.Camera.DeviceID,
		IdleFPS:         cfg.Camera.IdleFPS,
		ActiveFPS:       cfg.Camera.ActiveFPS,
		MotionThreshold: cfg.Camera.MotionThreshold,
		CascadeFile:     cfg.Camera.CascadeFile,
		Classifier:      classifierCfg,
		PluginDir:       cfg.Plugins.Dir,
		PluginTimeout:   cfg.Plugins.PluginTimeout(),
	})

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	srv := server.New(server.Config{
		StaticDir: cfg.Server.StaticDir,
		Store:     st,
		Camera:    a.Camera(),
		Status:    a.Status,
		GetSettings: func() api.Settings {
			return settingsFromConfig(a.ClassifierConfig())
		},
		ApplySettings: func(s api.Settings) error {
			a.ApplySettings(configFromSettings(s))
			return saveSettings(st, s)
		},
		Recalibrate: a.RequestRecalibration,
		Metrics:     m.Handler(),
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Printf("Dashboard listening on http://%s", cfg.Server.Addr)
		srvErr <- srv.ListenAndServe(cfg.Server.Addr)
	}()

	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	a.SetEnabled(true)

	if headless {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		err := awaitShutdown(sigCh, srvErr)
		a.Stop()
		return err
	}

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnRecalibrate(func() {
		if err := a.RequestRecalibration(); err != nil {
			log.Printf("Recalibration request failed: %v", err)
		}
	})
	t.OnDashboard(func() {
		openBrowser("http://" + cfg.Server.Addr)
	})
	t.OnQuit(a.Stop)
	a.OnCommand(func(cmd gesture.Command) {
		t.SetLastCommand(cmd.String() + " at " + time.Now().Format("15:04:05"))
	})

	// Blocks until Quit is chosen from the tray menu; the app is stopped
	// from the quit callback.
	t.Run()

	select {
	case err := <-srvErr:
		return fmt.Errorf("server failed: %w", err)
	default:
	}
	return nil
}

// awaitShutdown blocks until a termination signal arrives or the server
// fails, and reports the server error when that is what ended the wait.
// The caller releases the camera and detector afterwards.
func awaitShutdown(sigCh <-chan os.Signal, srvErr <-chan error) error {
	select {
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
		return nil
	case err := <-srvErr:
		return fmt.Errorf("server failed: %w", err)
	}
}

// loadSavedSettings restores the classifier tunables persisted by the
// dashboard, if any.
func loadSavedSettings(st *store.Store) (api.Settings, error) {
	var s api.Settings

	value, err := st.Settings().Get(settingsKey)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return s, err
	}
	if s.YawThreshold <= 0 || s.PitchThreshold <= 0 {
		return s, errors.New("saved settings are invalid")
	}
	return s, nil
}

// saveSettings persists the classifier tunables for the next run.
func saveSettings(st *store.Store, s api.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return st.Settings().Set(settingsKey, string(data))
}

func settingsFromConfig(c gesture.Config) api.Settings {
	return api.Settings{
		YawThreshold:     c.YawThreshold,
		PitchThreshold:   c.PitchThreshold,
		SpecialThreshold: c.SpecialThreshold,
		SmoothingWindow:  c.SmoothingWindow,
		CooldownMs:       int(c.Cooldown / time.Millisecond),
		AbsenceTolerance: c.AbsenceTolerance,
		AbsenceResetMs:   int(c.AbsenceReset / time.Millisecond),
	}
}

func configFromSettings(s api.Settings) gesture.Config {
	return gesture.Config{
		YawThreshold:     s.YawThreshold,
		PitchThreshold:   s.PitchThreshold,
		SpecialThreshold: s.SpecialThreshold,
		SmoothingWindow:  s.SmoothingWindow,
		Cooldown:         time.Duration(s.CooldownMs) * time.Millisecond,
		AbsenceTolerance: s.AbsenceTolerance,
		AbsenceReset:     time.Duration(s.AbsenceResetMs) * time.Millisecond,
	}
}

// openBrowser opens the URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		log.Printf("Open %s in your browser", url)
		return
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
