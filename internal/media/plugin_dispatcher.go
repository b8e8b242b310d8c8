package media

import (
	"errors"
	"fmt"

	"github.com/ayusman/kathakali/internal/gesture"
	"github.com/ayusman/kathakali/internal/plugin"
)

// PluginName is the plugin the dispatcher looks for in the plugin directory.
const PluginName = "media-keys"

// actionName maps a command to the plugin action it requests.
func actionName(cmd gesture.Command) (string, bool) {
	switch cmd {
	case gesture.CommandNextTrack:
		return "media-next", true
	case gesture.CommandPreviousTrack:
		return "media-prev", true
	case gesture.CommandPlayPause:
		return "media-play-pause", true
	case gesture.CommandToggleMute:
		return "volume-mute", true
	default:
		return "", false
	}
}

// PluginDispatcher routes media commands to the media-keys plugin when one
// is installed, and to a fallback dispatcher (normally the built-in
// KeyDispatcher) otherwise. A user can thus replace the key-simulation
// mechanism by dropping a plugin into the plugin directory without
// rebuilding the application.
type PluginDispatcher struct {
	manager  *plugin.Manager
	executor *plugin.Executor
	fallback Dispatcher
}

// NewPluginDispatcher creates a PluginDispatcher.
func NewPluginDispatcher(manager *plugin.Manager, executor *plugin.Executor, fallback Dispatcher) *PluginDispatcher {
	return &PluginDispatcher{
		manager:  manager,
		executor: executor,
		fallback: fallback,
	}
}

// Dispatch sends the command to the media-keys plugin, falling back to the
// built-in dispatcher when no plugin is installed or it does not advertise
// the action. Plugin failures are returned, not retried; the caller logs
// them and the loop moves on.
func (d *PluginDispatcher) Dispatch(cmd gesture.Command) error {
	action, ok := actionName(cmd)
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnsupportedCommand, cmd)
	}

	p, err := d.manager.Get(PluginName)
	if errors.Is(err, plugin.ErrPluginNotFound) || (err == nil && !p.HasAction(action)) {
		if d.fallback != nil {
			return d.fallback.Dispatch(cmd)
		}
		return fmt.Errorf("no dispatcher available for %s", cmd)
	}
	if err != nil {
		return err
	}

	resp, err := d.executor.Execute(p, &plugin.Request{
		Action:  action,
		Command: cmd.String(),
	})
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", cmd, err)
	}
	if !resp.Success {
		return fmt.Errorf("dispatch %s: plugin error: %s", cmd, resp.Error)
	}
	return nil
}
