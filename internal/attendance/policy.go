package attendance

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"communitybot/internal/models"
	"communitybot/internal/store"
	"communitybot/pkg/utils"
)

const (
	// OccupancyThreshold is the member count a channel must exceed to count as a meeting
	OccupancyThreshold = 5
	// AnnouncementWindow is how long an announcement keeps a meeting active
	AnnouncementWindow = 30 * time.Minute
)

// Policy decides whether a voice channel currently hosts a meeting
type Policy struct {
	status    *store.Document[models.MeetingStatus]
	messenger Messenger
	clock     utils.Clock
	channelID string
	triggers  []string
}

// NewPolicy creates the policy. With no trigger phrases every message in the
// announcement channel counts as an announcement.
func NewPolicy(backend store.Backend, messenger Messenger, clock utils.Clock, announcementChannelID string, triggers []string) *Policy {
	lowered := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}
	return &Policy{
		status:    store.NewDocument(backend, store.MeetingStatus, func() models.MeetingStatus { return models.MeetingStatus{} }),
		messenger: messenger,
		clock:     clock,
		channelID: announcementChannelID,
		triggers:  lowered,
	}
}

// IsMeetingActive is consulted at join time only
func (p *Policy) IsMeetingActive(ctx context.Context, snapshot models.ChannelSnapshot) bool {
	if snapshot.MemberCount > OccupancyThreshold {
		return true
	}

	status, err := p.status.Get(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Could not read meeting status")
		return false
	}
	if !status.IsActive || status.StartTime == nil {
		return false
	}
	return p.clock.Now().Sub(*status.StartTime) < AnnouncementWindow
}

// HandleMessage marks a meeting as announced when the message qualifies
func (p *Policy) HandleMessage(ctx context.Context, ev models.MessageEvent) error {
	if ev.Author.Bot || p.channelID == "" || ev.ChannelID != p.channelID {
		return nil
	}
	if !p.isAnnouncement(ev.Content) {
		return nil
	}

	if err := p.Announce(ctx, ev.Author.Username); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("announcer", ev.Author.Username).Msg("Meeting announced, attendance tracking enabled")

	if err := p.messenger.React(ctx, ev.ChannelID, ev.ID, CheckinEmoji); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Could not add reaction")
	}
	return nil
}

// Announce records a meeting start now
func (p *Policy) Announce(ctx context.Context, announcer string) error {
	now := p.clock.Now()
	return p.status.PutAll(ctx, models.MeetingStatus{IsActive: true, StartTime: &now, Announcer: announcer})
}

func (p *Policy) isAnnouncement(content string) bool {
	if len(p.triggers) == 0 {
		return true
	}
	lowered := strings.ToLower(content)
	for _, t := range p.triggers {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}
