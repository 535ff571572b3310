package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"communitybot/internal/models"
)

func memberFromUser(u *discordgo.User) models.Member {
	if u == nil {
		return models.Member{}
	}
	return models.Member{ID: u.ID, Username: u.Username, Bot: u.Bot}
}

func messageEvent(m *discordgo.Message) models.MessageEvent {
	createdAt := m.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return models.MessageEvent{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Author:    memberFromUser(m.Author),
		CreatedAt: createdAt,
	}
}

// countVoiceMembers counts the members connected to channelID
func countVoiceMembers(guild *discordgo.Guild, channelID string) int {
	if guild == nil || channelID == "" {
		return 0
	}
	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			count++
		}
	}
	return count
}

// previousChannel returns the channel the member was in before the update
func previousChannel(vs *discordgo.VoiceStateUpdate) string {
	if vs.BeforeUpdate == nil {
		return ""
	}
	return vs.BeforeUpdate.ChannelID
}
