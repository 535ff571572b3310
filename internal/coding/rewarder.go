// Package coding rewards answers posted in the coding challenge channel.
package coding

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"communitybot/internal/ledger"
	"communitybot/internal/models"
	"communitybot/internal/store"
	"communitybot/pkg/utils"
)

const (
	AnswerPoints     = 5
	MinAnswerLength  = 5
	AnswerEmoji      = "✅"
	maxStoredContent = 300
)

// ErrAlreadyAnswered means the message was rewarded before
var ErrAlreadyAnswered = errors.New("coding: answer already rewarded")

// Messenger is the outbound side used to acknowledge answers
type Messenger interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
}

// AnswerLog is the persisted shape of the answer log, keyed by message id
type AnswerLog map[string]*models.AnswerLogEntry

func NewAnswerLog() AnswerLog { return AnswerLog{} }

// Rewarder awards a flat bonus for every answer, at most once per message
type Rewarder struct {
	answers   *store.Document[AnswerLog]
	ledger    ledger.Ledger
	messenger Messenger
	clock     utils.Clock
	channelID string
}

func NewRewarder(backend store.Backend, l ledger.Ledger, messenger Messenger, clock utils.Clock, channelID string) *Rewarder {
	return &Rewarder{
		answers:   store.NewDocument(backend, store.CodingQuestions, NewAnswerLog),
		ledger:    l,
		messenger: messenger,
		clock:     clock,
		channelID: channelID,
	}
}

// HandleMessage rewards qualifying answers and returns the points credited
func (r *Rewarder) HandleMessage(ctx context.Context, ev models.MessageEvent) (int64, error) {
	if r.channelID == "" || ev.Author.Bot || ev.ChannelID != r.channelID {
		return 0, nil
	}
	if utf8.RuneCountInString(ev.Content) < MinAnswerLength {
		return 0, nil
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("member", ev.Author.Username).Str("content", utils.Preview(ev.Content, 50)).Msg("New coding answer")

	if err := r.claim(ctx, ev); err != nil {
		if errors.Is(err, ErrAlreadyAnswered) {
			log.Debug().Str("message", ev.ID).Msg("Answer already rewarded, skipping")
			return 0, nil
		}
		return 0, err
	}

	if err := r.messenger.React(ctx, ev.ChannelID, ev.ID, AnswerEmoji); err != nil {
		log.Warn().Err(err).Msg("Could not add reaction")
	}

	total, err := r.ledger.Award(ctx, ev.Author.ID, ev.Author.Username, AnswerPoints)
	if err != nil {
		if releaseErr := r.release(ctx, ev.ID); releaseErr != nil {
			log.Error().Err(releaseErr).Str("message", ev.ID).Msg("Could not release answer claim")
		}
		return 0, fmt.Errorf("failed to award answer points: %w", err)
	}
	log.Info().Str("member", ev.Author.Username).Int64("points", AnswerPoints).Int64("total", total).Msg("Awarded coding answer points")

	reply := fmt.Sprintf("✅ **Answer Verified!**\n**%s** earned **+%d points** 🎉\nTotal Points: **%d**",
		ev.Author.Username, AnswerPoints, total)
	if err := r.messenger.Reply(ctx, ev.ChannelID, ev.ID, reply); err != nil {
		log.Warn().Err(err).Msg("Could not send reply")
	}
	return AnswerPoints, nil
}

// claim writes the log entry for the message, failing if it already exists
func (r *Rewarder) claim(ctx context.Context, ev models.MessageEvent) error {
	answeredAt := ev.CreatedAt
	if answeredAt.IsZero() {
		answeredAt = r.clock.Now()
	}

	_, err := r.answers.Update(ctx, func(answers *AnswerLog) error {
		if *answers == nil {
			*answers = NewAnswerLog()
		}
		if _, ok := (*answers)[ev.ID]; ok {
			return ErrAlreadyAnswered
		}
		(*answers)[ev.ID] = &models.AnswerLogEntry{
			ID:            uuid.NewString(),
			MessageID:     ev.ID,
			ChannelID:     ev.ChannelID,
			AnsweredBy:    ev.Author.Username,
			AnsweredAt:    answeredAt,
			PointsAwarded: AnswerPoints,
			Content:       utils.TruncateString(ev.Content, maxStoredContent),
		}
		return nil
	})
	return err
}

// release drops the claim on a message whose award failed so a redelivery
// can pay it
func (r *Rewarder) release(ctx context.Context, messageID string) error {
	_, err := r.answers.Update(ctx, func(answers *AnswerLog) error {
		delete(*answers, messageID)
		return nil
	})
	return err
}

// Answer returns the log entry of a message
func (r *Rewarder) Answer(ctx context.Context, messageID string) (models.AnswerLogEntry, bool, error) {
	answers, err := r.answers.Get(ctx)
	if err != nil {
		return models.AnswerLogEntry{}, false, err
	}
	entry, ok := answers[messageID]
	if !ok || entry == nil {
		return models.AnswerLogEntry{}, false, nil
	}
	return *entry, true, nil
}
