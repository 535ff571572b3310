package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"communitybot/internal/ledger"
	"communitybot/internal/models"
	"communitybot/pkg/utils"
)

const (
	commandPrefix   = "!"
	leaderboardSize = 10
	embedColor      = 0x5865F2
)

var commands = map[string]bool{
	"!points":      true,
	"!leaderboard": true,
	"!top":         true,
	"!voice":       true,
	"!help":        true,
}

// commandName returns the known command content starts with, or ""
func commandName(content string) string {
	fields := strings.Fields(content)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], commandPrefix) {
		return ""
	}
	name := strings.ToLower(fields[0])
	if !commands[name] {
		return ""
	}
	return name
}

// pointsReply answers !points for the author
func pointsReply(ctx context.Context, l ledger.Ledger, author models.Member) (string, error) {
	total, err := l.Balance(ctx, author.ID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("💰 %s, you have **%d points**.", author.Username, total), nil
}

// leaderboardReply answers !leaderboard
func leaderboardReply(ctx context.Context, l ledger.Ledger) (string, error) {
	top, err := l.Top(ctx, leaderboardSize)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return "🏆 No points awarded yet.", nil
	}

	lines := []string{"🏆 **Leaderboard**"}
	for i, rec := range top {
		name := rec.DisplayName
		if name == "" {
			name = utils.FormatUserMention(rec.MemberID)
		}
		lines = append(lines, utils.FormatLeaderboardEntry(i+1, name, rec.Points))
	}
	return strings.Join(lines, "\n"), nil
}

// voiceReply answers !voice with the author's meeting voice history
func voiceReply(history models.VoiceAttendance, found bool, author models.Member) string {
	if !found || len(history.Sessions) == 0 {
		return fmt.Sprintf("🔊 %s, no meeting voice time recorded yet.", author.Username)
	}

	var (
		closed int
		earned int64
		last   *models.AttendanceInterval
	)
	for _, session := range history.Sessions {
		if session.Open() {
			continue
		}
		closed++
		earned += session.PointsAwarded
		last = session
	}

	lines := []string{fmt.Sprintf("🔊 %s, meeting voice sessions: %d, points earned: %d", author.Username, closed, earned)}
	if last != nil {
		lines = append(lines, "Last session: "+utils.FormatMinutes(last.DurationMinutes))
	}
	if history.Sessions[len(history.Sessions)-1].Open() {
		lines = append(lines, "Currently connected 🟢")
	}
	return strings.Join(lines, "\n")
}

// helpEmbed lists the commands and the ways to earn points
func helpEmbed(meetingChannelID, codingChannelID string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: "Commands available", Color: embedColor}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`!points`",
		Value:  "Show your current points",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`!leaderboard`",
		Value:  fmt.Sprintf("Show the top %d members", leaderboardSize),
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`!voice`",
		Value:  "Show your meeting voice sessions",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`!help`",
		Value:  "Show this message",
		Inline: false,
	})

	var earn []string
	if meetingChannelID != "" {
		earn = append(earn,
			fmt.Sprintf("React ✅ on a meeting message in %s, remove it when you leave (10m: 3 pts, 60m: 5 pts)", utils.FormatChannelMention(meetingChannelID)),
			"Stay in the meeting voice channel while a meeting is running (10m: 3 pts, 30m: 10 pts)")
	}
	if codingChannelID != "" {
		earn = append(earn, fmt.Sprintf("Answer in %s (+5 pts per answer)", utils.FormatChannelMention(codingChannelID)))
	}
	if len(earn) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Earning points",
			Value:  strings.Join(earn, "\n"),
			Inline: false,
		})
	}
	return embed
}
