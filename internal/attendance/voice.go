package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"communitybot/internal/ledger"
	"communitybot/internal/models"
	"communitybot/internal/store"
	"communitybot/pkg/utils"
)

// VoiceBook is the persisted shape of the voice attendance document
type VoiceBook map[string]*models.VoiceAttendance

func NewVoiceBook() VoiceBook { return VoiceBook{} }

// VoiceTracker scores presence in the tracked voice channels. Minutes add up
// across sessions until the process restarts; points follow the cumulative
// total and are never credited twice.
type VoiceTracker struct {
	attendance *store.Document[VoiceBook]
	sessions   *SessionTracker
	policy     *Policy
	ledger     ledger.Ledger
	messenger  Messenger
	clock      utils.Clock
	tracked    map[string]bool
}

func NewVoiceTracker(backend store.Backend, sessions *SessionTracker, policy *Policy, l ledger.Ledger, messenger Messenger, clock utils.Clock, channelIDs []string) *VoiceTracker {
	tracked := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		tracked[id] = true
	}
	return &VoiceTracker{
		attendance: store.NewDocument(backend, store.VoiceAttendance, NewVoiceBook),
		sessions:   sessions,
		policy:     policy,
		ledger:     l,
		messenger:  messenger,
		clock:      clock,
		tracked:    tracked,
	}
}

// Tracked reports whether channelID is a meeting voice channel
func (v *VoiceTracker) Tracked(channelID string) bool {
	return channelID != "" && v.tracked[channelID]
}

// HandleTransition applies the leave side, then the join side, of one
// voice state change.
func (v *VoiceTracker) HandleTransition(ctx context.Context, tr models.VoiceTransition) error {
	if tr.OldChannelID == tr.NewChannelID {
		return nil
	}

	var errs []error
	if v.Tracked(tr.OldChannelID) {
		if _, err := v.leave(ctx, tr.Member, tr.OldChannelID); err != nil {
			errs = append(errs, err)
		}
	}
	if v.Tracked(tr.NewChannelID) {
		snapshot := tr.NewChannel
		snapshot.ChannelID = tr.NewChannelID
		if err := v.join(ctx, tr.Member, snapshot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *VoiceTracker) join(ctx context.Context, member models.Member, snapshot models.ChannelSnapshot) error {
	log := zerolog.Ctx(ctx)
	if !v.policy.IsMeetingActive(ctx, snapshot) {
		log.Info().Str("member", member.Username).Int("occupancy", snapshot.MemberCount).
			Msg("Joined meeting channel, but no active meeting detected")
		return nil
	}

	now := v.clock.Now()
	session := v.sessions.Begin(member.ID, snapshot.ChannelID, now)

	_, err := v.attendance.Update(ctx, func(book *VoiceBook) error {
		if *book == nil {
			*book = NewVoiceBook()
		}
		rec, ok := (*book)[member.ID]
		if !ok || rec == nil {
			rec = &models.VoiceAttendance{}
			(*book)[member.ID] = rec
		}
		rec.Username = member.Username

		// A dangling interval means the leave was never observed
		if n := len(rec.Sessions); n > 0 && rec.Sessions[n-1] != nil && rec.Sessions[n-1].Open() {
			abandoned := now
			rec.Sessions[n-1].LeaveTime = &abandoned
		}
		rec.Sessions = append(rec.Sessions, &models.AttendanceInterval{JoinTime: now})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record voice join: %w", err)
	}

	log.Info().Str("member", member.Username).Str("channel", snapshot.ChannelID).
		Int("accumulated", session.AccumulatedMinutes).Msg("Joined meeting voice channel, tracking started")
	return nil
}

// leave settles the member's session and returns the points credited
func (v *VoiceTracker) leave(ctx context.Context, member models.Member, channelID string) (int64, error) {
	log := zerolog.Ctx(ctx)
	now := v.clock.Now()

	st, ok := v.sessions.End(member.ID, now, VoicePoints)
	if !ok {
		return 0, nil
	}

	var (
		credited int64
		total    int64
		awardErr error
	)
	if st.Credit > 0 {
		total, awardErr = v.ledger.Award(ctx, member.ID, member.Username, st.Credit)
		if awardErr == nil {
			v.sessions.Commit(member.ID, st.Credit)
			credited = st.Credit
		}
	}

	_, err := v.attendance.Update(ctx, func(book *VoiceBook) error {
		rec, ok := (*book)[member.ID]
		if !ok || rec == nil {
			log.Warn().Str("member", member.Username).Msg("No voice attendance record to close")
			return nil
		}
		for i := len(rec.Sessions) - 1; i >= 0; i-- {
			interval := rec.Sessions[i]
			if interval == nil || !interval.Open() {
				continue
			}
			leave := now
			interval.LeaveTime = &leave
			interval.DurationMinutes = st.CumulativeMinutes
			interval.PointsAwarded = credited
			return nil
		}
		log.Warn().Str("member", member.Username).Msg("No open voice interval to close")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to close voice interval")
	}

	log.Info().Str("member", member.Username).Str("channel", channelID).
		Int("session", st.SessionMinutes).Int("cumulative", st.CumulativeMinutes).
		Msg("Left meeting voice channel")

	if awardErr != nil {
		return 0, fmt.Errorf("failed to award voice points: %w", awardErr)
	}
	if credited == 0 {
		if st.TierPoints == 0 {
			log.Info().Str("member", member.Username).Int("cumulative", st.CumulativeMinutes).
				Msg("Not enough minutes for points yet (minimum 10)")
		}
		return 0, nil
	}
	log.Info().Str("member", member.Username).Int64("points", credited).Int64("total", total).
		Msg("Awarded voice meeting points")

	dm := fmt.Sprintf("🎤 **Meeting Attendance Recorded!**\nYou attended the voice meeting for **%s** in total\nYou earned **+%d points**!\nTotal Points: **%d**",
		utils.FormatMinutes(st.CumulativeMinutes), credited, total)
	if err := v.messenger.SendDirect(ctx, member.ID, dm); err != nil {
		log.Warn().Err(err).Str("member", member.Username).Msg("Could not send DM")
	}
	return credited, nil
}

// History returns the stored voice intervals of a member
func (v *VoiceTracker) History(ctx context.Context, memberID string) (models.VoiceAttendance, bool, error) {
	book, err := v.attendance.Get(ctx)
	if err != nil {
		return models.VoiceAttendance{}, false, err
	}
	rec, ok := book[memberID]
	if !ok || rec == nil {
		return models.VoiceAttendance{}, false, nil
	}
	return *rec, true, nil
}
