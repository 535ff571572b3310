package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a Discord session with the intents the bot listens on
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	// handlers run in gateway order so a leave is settled before the rejoin
	session.SyncEvents = true

	return session, nil
}

// Messenger sends replies, reactions and direct messages through a session
type Messenger struct {
	session *discordgo.Session
}

func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

// Reply posts content as a reply to a message
func (m *Messenger) Reply(ctx context.Context, channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	if _, err := m.session.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to reply in %s: %w", channelID, err)
	}
	return nil
}

// React adds an emoji reaction to a message
func (m *Messenger) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := m.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to react in %s: %w", channelID, err)
	}
	return nil
}

// SendDirect opens a DM channel with the user and posts content there
func (m *Messenger) SendDirect(ctx context.Context, userID, content string) error {
	channel, err := m.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM with %s: %w", userID, err)
	}
	if _, err := m.session.ChannelMessageSend(channel.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send DM to %s: %w", userID, err)
	}
	return nil
}

// SendChannel posts content to a channel
func (m *Messenger) SendChannel(ctx context.Context, channelID, content string) error {
	if _, err := m.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send to %s: %w", channelID, err)
	}
	return nil
}

// SendEmbed posts an embed to a channel
func (m *Messenger) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if _, err := m.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send embed to %s: %w", channelID, err)
	}
	return nil
}
