// Package gesture turns a stream of face-landmark snapshots into debounced
// media commands.
package gesture

// Command is a media-control command emitted by the classifier. It is the
// only value that crosses from the classifier to the dispatcher; the set is
// closed so dispatch sites can match it exhaustively.
type Command int

const (
	CommandNextTrack Command = iota
	CommandPreviousTrack
	CommandPlayPause
	CommandToggleMute
)

// Commands lists every command, in a fixed order.
var Commands = []Command{
	CommandNextTrack,
	CommandPreviousTrack,
	CommandPlayPause,
	CommandToggleMute,
}

// String returns the stable wire name of the command, used in the event
// store, the HTTP API and plugin requests.
func (c Command) String() string {
	switch c {
	case CommandNextTrack:
		return "next-track"
	case CommandPreviousTrack:
		return "previous-track"
	case CommandPlayPause:
		return "play-pause"
	case CommandToggleMute:
		return "toggle-mute"
	default:
		return "unknown"
	}
}
