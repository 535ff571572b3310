package models

import "time"

// Member identifies the author of an inbound event
type Member struct {
	ID       string
	Username string
	Bot      bool
}

// MessageEvent is a new chat message
type MessageEvent struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string
	Author    Member
	CreatedAt time.Time
}

// ReactionEvent is an emoji added to or removed from a message
type ReactionEvent struct {
	ChannelID string
	MessageID string
	Emoji     string
	Member    Member
}

// ChannelSnapshot is the live occupancy of a voice channel
type ChannelSnapshot struct {
	ChannelID   string
	MemberCount int
}

// VoiceTransition is a member moving between voice channels; an empty
// channel id means "not connected".
type VoiceTransition struct {
	Member       Member
	OldChannelID string
	NewChannelID string
	NewChannel   ChannelSnapshot
}
