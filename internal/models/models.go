package models

import "time"

// PointsRecord is a member's entry in the points ledger
type PointsRecord struct {
	MemberID    string    `json:"-"`
	DisplayName string    `json:"username"`
	Points      int64     `json:"points"`
	LastUpdate  time.Time `json:"lastUpdate"`
}

// AttendanceInterval is one span of tracked presence. LeaveTime is nil while open.
type AttendanceInterval struct {
	JoinTime        time.Time  `json:"joinTime"`
	LeaveTime       *time.Time `json:"leaveTime"`
	DurationMinutes int        `json:"durationMinutes"`
	PointsAwarded   int64      `json:"pointsAwarded"`
}

// Open reports whether the interval has not been closed yet
func (i AttendanceInterval) Open() bool {
	return i.LeaveTime == nil
}

// MeetingAttendee is a reaction check-in entry on a meeting message
type MeetingAttendee struct {
	Username string `json:"username"`
	AttendanceInterval
}

// MeetingRecord tracks check-ins for one meeting message
type MeetingRecord struct {
	MessageID string                      `json:"messageId"`
	StartTime time.Time                   `json:"startTime"`
	Attendees map[string]*MeetingAttendee `json:"attendees"`
}

// VoiceAttendance holds a member's voice intervals in chronological order
type VoiceAttendance struct {
	Username string                `json:"username"`
	Sessions []*AttendanceInterval `json:"sessions"`
}

// VoiceSession is the in-memory presence of a member in a tracked voice channel.
// It survives a leave so later joins keep accumulating minutes.
type VoiceSession struct {
	JoinTime           time.Time
	ChannelID          string
	Active             bool
	AccumulatedMinutes int
	AwardedPoints      int64
}

// MeetingStatus is the process-wide "meeting announced" marker
type MeetingStatus struct {
	IsActive  bool       `json:"isActive"`
	StartTime *time.Time `json:"startTime"`
	Announcer string     `json:"announcer"`
}

// AnswerLogEntry records a rewarded coding answer
type AnswerLogEntry struct {
	ID            string    `json:"id"`
	MessageID     string    `json:"messageId"`
	ChannelID     string    `json:"channelId"`
	AnsweredBy    string    `json:"answeredBy"`
	AnsweredAt    time.Time `json:"answeredAt"`
	PointsAwarded int64     `json:"pointsAwarded"`
	Content       string    `json:"content"`
}

// TechWord is one entry of the daily tech words catalog
type TechWord struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Example    string `json:"example"`
	Video      string `json:"video,omitempty"`
	Category   string `json:"-"`
}
