// Package attendance turns meeting presence into points. Reaction check-ins
// are scored per interval; voice presence accumulates across sessions.
package attendance

import (
	"context"
	"time"
)

// CheckinEmoji marks attendance on a meeting message
const CheckinEmoji = "✅"

// Messenger is the outbound side of the chat platform
type Messenger interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	SendDirect(ctx context.Context, userID, content string) error
}

// ElapsedMinutes returns the whole minutes between from and to, never negative
func ElapsedMinutes(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// ReactionPoints scores one check-in interval
func ReactionPoints(minutes int) int64 {
	switch {
	case minutes >= 60:
		return 5
	case minutes >= 10:
		return 3
	default:
		return 0
	}
}

// VoicePoints scores the cumulative voice minutes of a window
func VoicePoints(minutes int) int64 {
	switch {
	case minutes >= 30:
		return 10
	case minutes >= 10:
		return 3
	default:
		return 0
	}
}
