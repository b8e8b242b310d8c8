package api

import (
	"encoding/json"
	"net/http"
)

// Settings is the wire representation of the classifier tunables.
type Settings struct {
	YawThreshold     float64 `json:"yaw_threshold"`
	PitchThreshold   float64 `json:"pitch_threshold"`
	SpecialThreshold float64 `json:"special_threshold"`
	SmoothingWindow  int     `json:"smoothing_window"`
	CooldownMs       int     `json:"cooldown_ms"`
	AbsenceTolerance int     `json:"absence_tolerance"`
	AbsenceResetMs   int     `json:"absence_reset_ms"`
}

// SettingsHandler handles HTTP requests for the classifier tunables.
// Get returns the current values; Apply pushes updated values into the
// running classifier.
type SettingsHandler struct {
	Get   func() Settings
	Apply func(Settings) error
}

// NewSettingsHandler creates a new SettingsHandler with the given accessors.
func NewSettingsHandler(get func() Settings, apply func(Settings) error) *SettingsHandler {
	return &SettingsHandler{Get: get, Apply: apply}
}

// ServeHTTP handles GET and PUT requests to /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.Get())
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	// Start from the current values so a partial body only changes the
	// fields it names.
	settings := h.Get()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if settings.YawThreshold <= 0 || settings.PitchThreshold <= 0 || settings.SpecialThreshold <= 0 {
		writeError(w, http.StatusBadRequest, "Thresholds must be positive")
		return
	}
	if settings.SmoothingWindow < 1 {
		writeError(w, http.StatusBadRequest, "Smoothing window must be at least 1")
		return
	}
	if settings.CooldownMs < 0 || settings.AbsenceResetMs < 0 || settings.AbsenceTolerance < 0 {
		writeError(w, http.StatusBadRequest, "Durations must not be negative")
		return
	}

	if err := h.Apply(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply settings")
		return
	}

	writeJSON(w, http.StatusOK, h.Get())
}
