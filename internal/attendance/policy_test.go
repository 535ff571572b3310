package attendance

import (
	"context"
	"testing"
	"time"

	"communitybot/internal/models"
)

func TestTiers(t *testing.T) {
	cases := []struct {
		minutes  int
		reaction int64
		voice    int64
	}{
		{0, 0, 0},
		{9, 0, 0},
		{10, 3, 3},
		{29, 3, 3},
		{30, 3, 10},
		{59, 3, 10},
		{60, 5, 10},
		{240, 5, 10},
	}
	for _, tc := range cases {
		if got := ReactionPoints(tc.minutes); got != tc.reaction {
			t.Fatalf("ReactionPoints(%d) = %d, want %d", tc.minutes, got, tc.reaction)
		}
		if got := VoicePoints(tc.minutes); got != tc.voice {
			t.Fatalf("VoicePoints(%d) = %d, want %d", tc.minutes, got, tc.voice)
		}
	}
}

func TestElapsedMinutesFloorsAndClamps(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if got := ElapsedMinutes(start, start.Add(9*time.Minute+59*time.Second)); got != 9 {
		t.Fatalf("expected 9, got %d", got)
	}
	if got := ElapsedMinutes(start, start.Add(-time.Minute)); got != 0 {
		t.Fatalf("expected 0 for negative spans, got %d", got)
	}
}

func TestIsMeetingActive(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		occupancy int
		announced time.Duration // how long ago; 0 means never
		want      bool
	}{
		{"crowded channel without announcement", 6, 0, true},
		{"five members without announcement", 5, 0, false},
		{"single member after recent announcement", 1, 10 * time.Minute, true},
		{"single member after stale announcement", 1, 31 * time.Minute, false},
		{"announcement exactly thirty minutes ago", 1, 30 * time.Minute, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if tc.announced > 0 {
				if err := f.policy.Announce(ctx, "host"); err != nil {
					t.Fatalf("announce: %v", err)
				}
				f.clock.Advance(tc.announced)
			}
			got := f.policy.IsMeetingActive(ctx, models.ChannelSnapshot{ChannelID: "voice", MemberCount: tc.occupancy})
			if got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestAnyMessageInAnnouncementChannelStartsMeeting(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	err := f.policy.HandleMessage(ctx, models.MessageEvent{ID: "m1", ChannelID: "announce", Content: "hi all", Author: models.Member{ID: "u1", Username: "host"}})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !f.policy.IsMeetingActive(ctx, models.ChannelSnapshot{MemberCount: 1}) {
		t.Fatalf("expected meeting to be active")
	}
	if f.messenger.count("react") != 1 {
		t.Fatalf("expected the announcement to be acknowledged")
	}
}

func TestAnnouncementIgnoresBotsAndOtherChannels(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_ = f.policy.HandleMessage(ctx, models.MessageEvent{ID: "m1", ChannelID: "announce", Content: "meeting is live", Author: models.Member{ID: "b", Bot: true}})
	_ = f.policy.HandleMessage(ctx, models.MessageEvent{ID: "m2", ChannelID: "general", Content: "meeting is live", Author: models.Member{ID: "u1"}})

	if f.policy.IsMeetingActive(ctx, models.ChannelSnapshot{MemberCount: 1}) {
		t.Fatalf("meeting should not be active")
	}
}

func TestTriggerPhrasesRestrictAnnouncements(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	policy := NewPolicy(f.backend, f.messenger, f.clock, "announce", []string{"Meeting is LIVE", "meeting started"})

	_ = policy.HandleMessage(ctx, models.MessageEvent{ID: "m1", ChannelID: "announce", Content: "good morning", Author: models.Member{ID: "u1"}})
	if policy.IsMeetingActive(ctx, models.ChannelSnapshot{MemberCount: 1}) {
		t.Fatalf("plain chatter should not start a meeting")
	}

	_ = policy.HandleMessage(ctx, models.MessageEvent{ID: "m2", ChannelID: "announce", Content: "The meeting is live!", Author: models.Member{ID: "u1"}})
	if !policy.IsMeetingActive(ctx, models.ChannelSnapshot{MemberCount: 1}) {
		t.Fatalf("trigger phrase should start a meeting")
	}
}

func TestAnnouncementSurvivesReactionFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.messenger.fail = true

	if err := f.policy.HandleMessage(ctx, models.MessageEvent{ID: "m1", ChannelID: "announce", Content: "go", Author: models.Member{ID: "u1"}}); err != nil {
		t.Fatalf("reaction failure must be swallowed: %v", err)
	}
	if !f.policy.IsMeetingActive(ctx, models.ChannelSnapshot{MemberCount: 1}) {
		t.Fatalf("expected meeting to be active")
	}
}
