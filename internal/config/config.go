// Package config loads application settings from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kathakali/internal/gesture"
)

// Config holds all application settings.
type Config struct {
	Camera     CameraConfig     `yaml:"camera"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Server     ServerConfig     `yaml:"server"`
	Plugins    PluginsConfig    `yaml:"plugins"`
	Database   DatabaseConfig   `yaml:"database"`
}

// CameraConfig controls capture and the motion gate.
type CameraConfig struct {
	DeviceID        int     `yaml:"device_id"`
	IdleFPS         int     `yaml:"idle_fps"`
	ActiveFPS       int     `yaml:"active_fps"`
	MotionThreshold float64 `yaml:"motion_threshold"` // changed-pixel percentage
	CascadeFile     string  `yaml:"cascade_file"`
}

// ClassifierConfig holds the gesture decision tunables. Cooldown and
// absence reset are in milliseconds.
type ClassifierConfig struct {
	YawThreshold     float64 `yaml:"yaw_threshold"`
	PitchThreshold   float64 `yaml:"pitch_threshold"`
	SpecialThreshold float64 `yaml:"special_threshold"`
	SmoothingWindow  int     `yaml:"smoothing_window"`
	CooldownMs       int     `yaml:"cooldown_ms"`
	AbsenceTolerance int     `yaml:"absence_tolerance"`
	AbsenceResetMs   int     `yaml:"absence_reset_ms"`
}

// ServerConfig controls the HTTP dashboard server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// PluginsConfig controls plugin discovery.
type PluginsConfig struct {
	Dir       string `yaml:"dir"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// DatabaseConfig controls the SQLite event store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".kathakali")

	return &Config{
		Camera: CameraConfig{
			DeviceID:        0,
			IdleFPS:         5,
			ActiveFPS:       15,
			MotionThreshold: 1.0,
		},
		Classifier: ClassifierConfig{
			YawThreshold:     20,
			PitchThreshold:   15,
			SpecialThreshold: 0.5,
			SmoothingWindow:  5,
			CooldownMs:       800,
			AbsenceTolerance: 5,
			AbsenceResetMs:   2000,
		},
		Server: ServerConfig{
			Addr: "localhost:8765",
		},
		Plugins: PluginsConfig{
			Dir:       filepath.Join(dataDir, "plugins"),
			TimeoutMs: 5000,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "kathakali.db"),
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty or missing), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Camera.DeviceID = envInt("KATHAKALI_CAMERA_DEVICE", c.Camera.DeviceID)
	c.Camera.CascadeFile = envString("KATHAKALI_CASCADE_FILE", c.Camera.CascadeFile)
	c.Classifier.YawThreshold = envFloat("KATHAKALI_YAW_THRESHOLD", c.Classifier.YawThreshold)
	c.Classifier.PitchThreshold = envFloat("KATHAKALI_PITCH_THRESHOLD", c.Classifier.PitchThreshold)
	c.Classifier.SpecialThreshold = envFloat("KATHAKALI_SPECIAL_THRESHOLD", c.Classifier.SpecialThreshold)
	c.Classifier.CooldownMs = envInt("KATHAKALI_COOLDOWN_MS", c.Classifier.CooldownMs)
	c.Server.Addr = envString("KATHAKALI_ADDR", c.Server.Addr)
	c.Plugins.Dir = envString("KATHAKALI_PLUGIN_DIR", c.Plugins.Dir)
	c.Database.Path = envString("KATHAKALI_DB_PATH", c.Database.Path)
}

// ToClassifier converts the stored tunables into a classifier config.
func (c *ClassifierConfig) ToClassifier() gesture.Config {
	return gesture.Config{
		YawThreshold:     c.YawThreshold,
		PitchThreshold:   c.PitchThreshold,
		SpecialThreshold: c.SpecialThreshold,
		SmoothingWindow:  c.SmoothingWindow,
		Cooldown:         time.Duration(c.CooldownMs) * time.Millisecond,
		AbsenceTolerance: c.AbsenceTolerance,
		AbsenceReset:     time.Duration(c.AbsenceResetMs) * time.Millisecond,
	}
}

// PluginTimeout returns the plugin execution timeout as a duration.
func (c *PluginsConfig) PluginTimeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// envString reads an environment variable, falling back to the default
// when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as an integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}
