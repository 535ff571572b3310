package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"communitybot/internal/attendance"
	"communitybot/internal/coding"
	"communitybot/internal/config"
	"communitybot/internal/ledger"
	"communitybot/internal/models"
)

// Deps are the services the bot routes gateway events to
type Deps struct {
	Config    *config.Config
	Messenger *Messenger
	Ledger    ledger.Ledger
	Policy    *attendance.Policy
	Checkin   *attendance.CheckinTracker
	Voice     *attendance.VoiceTracker
	Rewarder  *coding.Rewarder
}

// Bot represents the Discord bot
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	messenger *Messenger
	ledger    ledger.Ledger
	policy    *attendance.Policy
	checkin   *attendance.CheckinTracker
	voice     *attendance.VoiceTracker
	rewarder  *coding.Rewarder

	ctx context.Context
}

// New wires the event handlers onto session
func New(session *discordgo.Session, deps Deps) *Bot {
	bot := &Bot{
		session:   session,
		cfg:       deps.Config,
		messenger: deps.Messenger,
		ledger:    deps.Ledger,
		policy:    deps.Policy,
		checkin:   deps.Checkin,
		voice:     deps.Voice,
		rewarder:  deps.Rewarder,
		ctx:       context.Background(),
	}

	// Add event handlers
	session.AddHandler(bot.ready)
	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.reactionAdd)
	session.AddHandler(bot.reactionRemove)
	session.AddHandler(bot.voiceStateUpdate)

	return bot
}

// Start opens the gateway connection. Handlers run with ctx as their parent.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	log.Info().Msg("✅ Bot is running...")
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	return b.session.Close()
}

// dispatch runs fn with a per-event logger and keeps a handler panic from
// taking the process down.
func (b *Bot) dispatch(event string, fn func(ctx context.Context) error) {
	logger := log.With().Str("event", event).Str("event_id", uuid.NewString()).Logger()
	ctx := logger.WithContext(b.ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from handler panic")
		}
	}()

	if err := fn(ctx); err != nil {
		logger.Error().Err(err).Msg("Error handling event")
	}
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Logged in")
}

// messageCreate handles message creation events
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	b.dispatch("message_create", func(ctx context.Context) error {
		ev := messageEvent(m.Message)
		if name := commandName(ev.Content); name != "" {
			return b.handleCommand(ctx, name, ev)
		}

		var errs []error
		if err := b.policy.HandleMessage(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("meeting announcement: %w", err))
		}
		if _, err := b.rewarder.HandleMessage(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("coding answer: %w", err))
		}
		return errors.Join(errs...)
	})
}

// reactionAdd handles check-in reactions
func (b *Bot) reactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if !b.watchReaction(s, r.MessageReaction) {
		return
	}

	b.dispatch("reaction_add", func(ctx context.Context) error {
		member := b.resolveMember(ctx, s, r.GuildID, r.UserID, r.Member)
		return b.checkin.CheckIn(ctx, reactionEvent(r.MessageReaction, member))
	})
}

// reactionRemove handles check-out reactions
func (b *Bot) reactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if !b.watchReaction(s, r.MessageReaction) {
		return
	}

	b.dispatch("reaction_remove", func(ctx context.Context) error {
		member := b.resolveMember(ctx, s, r.GuildID, r.UserID, nil)
		_, err := b.checkin.CheckOut(ctx, reactionEvent(r.MessageReaction, member))
		return err
	})
}

func (b *Bot) watchReaction(s *discordgo.Session, r *discordgo.MessageReaction) bool {
	if r.ChannelID != b.cfg.MeetingChannelID || r.Emoji.Name != attendance.CheckinEmoji {
		return false
	}
	return s.State == nil || s.State.User == nil || r.UserID != s.State.User.ID
}

func reactionEvent(r *discordgo.MessageReaction, member models.Member) models.ReactionEvent {
	return models.ReactionEvent{
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Emoji:     r.Emoji.Name,
		Member:    member,
	}
}

// voiceStateUpdate handles voice state updates
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	oldChannel := previousChannel(vs)
	newChannel := vs.ChannelID

	// mute, deafen and stream toggles keep the channel
	if oldChannel == newChannel {
		return
	}
	if !b.voice.Tracked(oldChannel) && !b.voice.Tracked(newChannel) {
		return
	}

	b.dispatch("voice_state_update", func(ctx context.Context) error {
		member := b.resolveMember(ctx, s, vs.GuildID, vs.UserID, vs.Member)
		return b.voice.HandleTransition(ctx, models.VoiceTransition{
			Member:       member,
			OldChannelID: oldChannel,
			NewChannelID: newChannel,
			NewChannel:   b.channelSnapshot(s, vs.GuildID, newChannel),
		})
	})
}

// resolveMember prefers the payload, then the state cache, then the REST API
func (b *Bot) resolveMember(ctx context.Context, s *discordgo.Session, guildID, userID string, member *discordgo.Member) models.Member {
	if member != nil && member.User != nil {
		return memberFromUser(member.User)
	}
	if s.State != nil {
		if cached, err := s.State.Member(guildID, userID); err == nil && cached.User != nil {
			return memberFromUser(cached.User)
		}
	}
	user, err := s.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user", userID).Msg("Could not resolve member, using id as name")
		return models.Member{ID: userID, Username: userID}
	}
	return memberFromUser(user)
}

func (b *Bot) channelSnapshot(s *discordgo.Session, guildID, channelID string) models.ChannelSnapshot {
	snapshot := models.ChannelSnapshot{ChannelID: channelID}
	if channelID == "" || s.State == nil {
		return snapshot
	}
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return snapshot
	}

	s.State.RLock()
	snapshot.MemberCount = countVoiceMembers(guild, channelID)
	s.State.RUnlock()
	return snapshot
}

func (b *Bot) handleCommand(ctx context.Context, name string, ev models.MessageEvent) error {
	var (
		reply string
		err   error
	)
	switch name {
	case "!points":
		reply, err = pointsReply(ctx, b.ledger, ev.Author)
	case "!leaderboard", "!top":
		reply, err = leaderboardReply(ctx, b.ledger)
	case "!voice":
		history, found, herr := b.voice.History(ctx, ev.Author.ID)
		reply, err = voiceReply(history, found, ev.Author), herr
	case "!help":
		return b.messenger.SendEmbed(ctx, ev.ChannelID, helpEmbed(b.cfg.MeetingChannelID, b.cfg.CodingChannelID))
	default:
		return nil
	}

	if err != nil {
		if sendErr := b.messenger.Reply(ctx, ev.ChannelID, ev.ID, "Something went wrong reading the points."); sendErr != nil {
			zerolog.Ctx(ctx).Warn().Err(sendErr).Msg("Could not send reply")
		}
		return err
	}
	return b.messenger.Reply(ctx, ev.ChannelID, ev.ID, reply)
}
