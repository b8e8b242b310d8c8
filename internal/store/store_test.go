package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := testStore(t)

	tables := []string{"events", "calibrations", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestNewStore_IndexesCreated(t *testing.T) {
	s := testStore(t)

	indexes := []string{
		"idx_events_detected_at",
		"idx_events_command",
		"idx_calibrations_created_at",
	}
	for _, idx := range indexes {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			idx,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q should exist after migrations: %v", idx, err)
		}
	}
}

func TestStore_ForeignKeysEnabled(t *testing.T) {
	s := testStore(t)

	var fkEnabled int
	if err := s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled); err != nil {
		t.Fatalf("failed to check foreign keys pragma: %v", err)
	}
	if fkEnabled != 1 {
		t.Error("foreign keys should be enabled")
	}
}

func TestEventRepository_CreateAndList(t *testing.T) {
	s := testStore(t)
	repo := s.Events()

	base := time.Now().Add(-time.Minute)
	for i, cmd := range []string{"next-track", "play-pause", "toggle-mute"} {
		e := &Event{
			Command:    cmd,
			State:      "turning-right",
			Yaw:        25.0,
			Pitch:      1.0,
			Special:    0.1,
			DetectedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(e); err != nil {
			t.Fatalf("Create(%q) error = %v", cmd, err)
		}
		if e.ID == "" {
			t.Error("Create should assign an ID")
		}
	}

	events, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("List() returned %d events, want 3", len(events))
	}

	// Newest first.
	if events[0].Command != "toggle-mute" {
		t.Errorf("first listed command = %q, want toggle-mute", events[0].Command)
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d events, want 2", len(limited))
	}
}

func TestEventRepository_Prune(t *testing.T) {
	s := testStore(t)
	repo := s.Events()

	old := &Event{Command: "next-track", State: "turning-right", DetectedAt: time.Now().Add(-48 * time.Hour)}
	recent := &Event{Command: "play-pause", State: "tilting-up", DetectedAt: time.Now()}
	for _, e := range []*Event{old, recent} {
		if err := repo.Create(e); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := repo.Prune(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() deleted %d events, want 1", deleted)
	}

	events, err := repo.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Command != "play-pause" {
		t.Errorf("remaining events = %v, want just play-pause", events)
	}
}

func TestCalibrationRepository_Latest(t *testing.T) {
	s := testStore(t)
	repo := s.Calibrations()

	if _, err := repo.Latest(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() on empty table error = %v, want ErrNotFound", err)
	}

	base := time.Now().Add(-time.Minute)
	first := &Calibration{Yaw: 1.5, Pitch: -2.0, MouthRatio: 1.1, CreatedAt: base}
	second := &Calibration{Yaw: 0.5, Pitch: 0.2, MouthRatio: 1.2, CreatedAt: base.Add(30 * time.Second)}
	for _, c := range []*Calibration{first, second} {
		if err := repo.Create(c); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := repo.Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest() = %s, want the newest calibration %s", latest.ID, second.ID)
	}
	if latest.MouthRatio != 1.2 {
		t.Errorf("Latest().MouthRatio = %f, want 1.2", latest.MouthRatio)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("List() returned %d calibrations, want 2", len(all))
	}
}

func TestSettingsRepository_RoundTrip(t *testing.T) {
	s := testStore(t)
	repo := s.Settings()

	if _, err := repo.Get("yaw_threshold"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() on missing key error = %v, want ErrNotFound", err)
	}

	if err := repo.Set("yaw_threshold", "20"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, err := repo.Get("yaw_threshold"); err != nil || got != "20" {
		t.Errorf("Get() = %q, %v, want \"20\", nil", got, err)
	}

	// Overwrite.
	if err := repo.Set("yaw_threshold", "25"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _ := repo.Get("yaw_threshold"); got != "25" {
		t.Errorf("Get() after overwrite = %q, want \"25\"", got)
	}

	if err := repo.Set("cooldown_ms", "800"); err != nil {
		t.Fatal(err)
	}
	all, err := repo.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 2 || all["cooldown_ms"] != "800" {
		t.Errorf("All() = %v", all)
	}

	if err := repo.Delete("cooldown_ms"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete("cooldown_ms"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
