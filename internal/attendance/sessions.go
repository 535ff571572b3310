package attendance

import (
	"sync"
	"time"

	"communitybot/internal/models"
)

// Settlement is the outcome of closing a voice session
type Settlement struct {
	SessionMinutes    int
	CumulativeMinutes int
	TierPoints        int64
	Credit            int64
	AlreadyCredited   int64
}

// SessionTracker owns the in-memory voice sessions. Sessions are kept after a
// leave so the next join continues the same cumulative window.
type SessionTracker struct {
	mu       sync.Mutex
	sessions map[string]*models.VoiceSession
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{sessions: make(map[string]*models.VoiceSession)}
}

// Begin opens a session, keeping any minutes accumulated earlier. Minutes of
// a session that is still active are folded into the window first.
func (t *SessionTracker) Begin(memberID, channelID string, at time.Time) models.VoiceSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[memberID]
	if !ok {
		s = &models.VoiceSession{}
		t.sessions[memberID] = s
	}
	// a join while still active means the leave was missed or reordered
	if s.Active {
		s.AccumulatedMinutes += ElapsedMinutes(s.JoinTime, at)
	}
	s.JoinTime = at
	s.ChannelID = channelID
	s.Active = true
	return *s
}

// End closes the active session of memberID, adds its minutes to the window
// and works out how many points are still owed for the new cumulative tier.
// Nothing counts as paid until Commit is called.
func (t *SessionTracker) End(memberID string, at time.Time, tier func(int) int64) (Settlement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[memberID]
	if !ok || !s.Active {
		return Settlement{}, false
	}

	minutes := ElapsedMinutes(s.JoinTime, at)
	s.AccumulatedMinutes += minutes
	s.Active = false

	st := Settlement{
		SessionMinutes:    minutes,
		CumulativeMinutes: s.AccumulatedMinutes,
		TierPoints:        tier(s.AccumulatedMinutes),
		AlreadyCredited:   s.AwardedPoints,
	}
	if st.TierPoints > s.AwardedPoints {
		st.Credit = st.TierPoints - s.AwardedPoints
	}
	return st, true
}

// Commit records points that reached the ledger for the member's window
func (t *SessionTracker) Commit(memberID string, credited int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[memberID]; ok {
		s.AwardedPoints += credited
	}
}

// Session returns a copy of the member's session
func (t *SessionTracker) Session(memberID string) (models.VoiceSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[memberID]
	if !ok {
		return models.VoiceSession{}, false
	}
	return *s, true
}
