// Package media dispatches classifier commands to the operating system's
// media keys.
package media

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/ayusman/kathakali/internal/gesture"
)

// ErrUnsupportedCommand is returned when a dispatcher receives a command
// outside the media set. With the closed Command enum this only happens on
// a programming error.
var ErrUnsupportedCommand = errors.New("unsupported media command")

// Dispatcher delivers a media command to the OS. Implementations carry no
// state across calls and must tolerate rapid repeated invocation; the
// classifier's cooldown already spaces commands out, but a dispatcher must
// not break if it doesn't.
type Dispatcher interface {
	Dispatch(cmd gesture.Command) error
}

// KeyDispatcher simulates media key presses via AppleScript, using the same
// System Events key codes the macOS media keys send (F7/F8/F9) plus the
// volume-settings mute toggle.
type KeyDispatcher struct {
	run func(script string) error
}

// NewKeyDispatcher creates a KeyDispatcher backed by osascript.
func NewKeyDispatcher() *KeyDispatcher {
	return &KeyDispatcher{run: runAppleScript}
}

// Dispatch maps the command to its key-simulation script. The switch is
// exhaustive over the command enum.
func (d *KeyDispatcher) Dispatch(cmd gesture.Command) error {
	var script string
	switch cmd {
	case gesture.CommandNextTrack:
		script = `tell application "System Events"
	key code 101
end tell`
	case gesture.CommandPreviousTrack:
		script = `tell application "System Events"
	key code 98
end tell`
	case gesture.CommandPlayPause:
		script = `tell application "System Events"
	key code 100
end tell`
	case gesture.CommandToggleMute:
		script = `set volume output muted (not (output muted of (get volume settings)))`
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedCommand, cmd)
	}

	if err := d.run(script); err != nil {
		return fmt.Errorf("dispatch %s: %w", cmd, err)
	}
	return nil
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
