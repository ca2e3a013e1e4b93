package access

import "fmt"

// FormatRemaining renders seconds as "m:ss". A negative value means unknown and renders "--:--".
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		return "--:--"
	}

	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Display renders the status for a countdown label.
func (s Status) Display() string {
	switch s.State {
	case StateActive:
		return FormatRemaining(s.Remaining)
	case StateExpired:
		return FormatRemaining(0)
	default:
		return FormatRemaining(-1)
	}
}
