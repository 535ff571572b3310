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

// MeetingBook is the persisted shape of the meeting attendance document
type MeetingBook map[string]*models.MeetingRecord

func NewMeetingBook() MeetingBook { return MeetingBook{} }

var errNoOpenCheckin = errors.New("no open check-in")

// CheckinTracker scores check-ins made by reacting to a meeting message.
// Every check-in starts a fresh interval; nothing carries over between them.
type CheckinTracker struct {
	meetings  *store.Document[MeetingBook]
	ledger    ledger.Ledger
	messenger Messenger
	clock     utils.Clock
	channelID string
}

func NewCheckinTracker(backend store.Backend, l ledger.Ledger, messenger Messenger, clock utils.Clock, channelID string) *CheckinTracker {
	return &CheckinTracker{
		meetings:  store.NewDocument(backend, store.MeetingAttendance, NewMeetingBook),
		ledger:    l,
		messenger: messenger,
		clock:     clock,
		channelID: channelID,
	}
}

func (c *CheckinTracker) qualifies(ev models.ReactionEvent) bool {
	return c.channelID != "" && !ev.Member.Bot && ev.ChannelID == c.channelID && ev.Emoji == CheckinEmoji
}

// CheckIn opens an interval for the member on the reacted message
func (c *CheckinTracker) CheckIn(ctx context.Context, ev models.ReactionEvent) error {
	if !c.qualifies(ev) {
		return nil
	}

	now := c.clock.Now()
	_, err := c.meetings.Update(ctx, func(book *MeetingBook) error {
		if *book == nil {
			*book = NewMeetingBook()
		}
		meeting, ok := (*book)[ev.MessageID]
		if !ok || meeting == nil {
			meeting = &models.MeetingRecord{MessageID: ev.MessageID, StartTime: now}
			(*book)[ev.MessageID] = meeting
		}
		if meeting.Attendees == nil {
			meeting.Attendees = make(map[string]*models.MeetingAttendee)
		}
		meeting.Attendees[ev.Member.ID] = &models.MeetingAttendee{
			Username:           ev.Member.Username,
			AttendanceInterval: models.AttendanceInterval{JoinTime: now},
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record check-in: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("member", ev.Member.Username).Str("message", ev.MessageID).Msg("Checked in to meeting")

	reply := fmt.Sprintf("✅ **%s** has checked in to the meeting! Attendance is being tracked.", ev.Member.Username)
	if err := c.messenger.Reply(ctx, ev.ChannelID, ev.MessageID, reply); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Could not send reply")
	}
	return nil
}

// CheckOut closes the member's open interval and credits the points it earned.
// It returns the points credited.
func (c *CheckinTracker) CheckOut(ctx context.Context, ev models.ReactionEvent) (int64, error) {
	if !c.qualifies(ev) {
		return 0, nil
	}

	now := c.clock.Now()
	var (
		minutes int
		points  int64
	)
	_, err := c.meetings.Update(ctx, func(book *MeetingBook) error {
		meeting, ok := (*book)[ev.MessageID]
		if !ok || meeting == nil {
			return errNoOpenCheckin
		}
		attendee, ok := meeting.Attendees[ev.Member.ID]
		if !ok || attendee == nil || !attendee.Open() {
			return errNoOpenCheckin
		}

		minutes = ElapsedMinutes(attendee.JoinTime, now)
		points = ReactionPoints(minutes)
		leave := now
		attendee.LeaveTime = &leave
		attendee.DurationMinutes = minutes
		attendee.PointsAwarded = points
		return nil
	})
	if errors.Is(err, errNoOpenCheckin) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to record check-out: %w", err)
	}

	log := zerolog.Ctx(ctx)
	if points == 0 {
		log.Info().Str("member", ev.Member.Username).Int("minutes", minutes).Msg("Attendance too short for points")
		reply := fmt.Sprintf("⏱️ **Attendance Too Short**\n**%s** attended for only **%d minutes**\nMinimum 10 minutes required to earn points.",
			ev.Member.Username, minutes)
		if err := c.messenger.Reply(ctx, ev.ChannelID, ev.MessageID, reply); err != nil {
			log.Warn().Err(err).Msg("Could not send reply")
		}
		return 0, nil
	}

	total, err := c.ledger.Award(ctx, ev.Member.ID, ev.Member.Username, points)
	if err != nil {
		return 0, fmt.Errorf("failed to award meeting points: %w", err)
	}
	log.Info().Str("member", ev.Member.Username).Int("minutes", minutes).Int64("points", points).Int64("total", total).
		Msg("Awarded meeting attendance points")

	reply := fmt.Sprintf("✅ **Meeting Attendance Recorded!**\n**%s** attended for **%d minutes**\nYou earned **+%d points**!",
		ev.Member.Username, minutes, points)
	if err := c.messenger.Reply(ctx, ev.ChannelID, ev.MessageID, reply); err != nil {
		log.Warn().Err(err).Msg("Could not send reply")
	}
	return points, nil
}

// Meeting returns the stored record of a meeting message
func (c *CheckinTracker) Meeting(ctx context.Context, messageID string) (models.MeetingRecord, bool, error) {
	book, err := c.meetings.Get(ctx)
	if err != nil {
		return models.MeetingRecord{}, false, err
	}
	meeting, ok := book[messageID]
	if !ok || meeting == nil {
		return models.MeetingRecord{}, false, nil
	}
	return *meeting, true, nil
}
