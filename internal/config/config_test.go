package config

import (
	"errors"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("MEETING_CHANNEL_ID", "")
	t.Setenv("MEETING_VOICE_CHANNEL_IDS", "")
	t.Setenv("ANNOUNCEMENT_CHANNEL_ID", "")
	t.Setenv("MEETING_TRIGGER_PHRASES", "")
	t.Setenv("TECH_WORDS_POST_TIME", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("REDIS_DB", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MEETING_CHANNEL_ID", "100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreBackend != BackendFile {
		t.Fatalf("unexpected backend: %s", cfg.StoreBackend)
	}
	if len(cfg.MeetingVoiceChannelIDs) != 1 || cfg.MeetingVoiceChannelIDs[0] != "100" {
		t.Fatalf("voice channels should default to the meeting channel: %v", cfg.MeetingVoiceChannelIDs)
	}
	if cfg.AnnouncementChannelID != "100" {
		t.Fatalf("announcement channel should default to the meeting channel: %s", cfg.AnnouncementChannelID)
	}
	if cfg.TechWordsHour != 7 || cfg.TechWordsMinute != 0 {
		t.Fatalf("unexpected post time %d:%d", cfg.TechWordsHour, cfg.TechWordsMinute)
	}
	if len(cfg.MeetingTriggerPhrases) != 0 {
		t.Fatalf("trigger phrases should be empty by default")
	}
}

func TestLoadLists(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MEETING_VOICE_CHANNEL_IDS", " 1, 2 ,,3")
	t.Setenv("MEETING_TRIGGER_PHRASES", "meeting is live,meeting started")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.MeetingVoiceChannelIDs) != 3 || cfg.MeetingVoiceChannelIDs[1] != "2" {
		t.Fatalf("unexpected voice channels: %v", cfg.MeetingVoiceChannelIDs)
	}
	if len(cfg.MeetingTriggerPhrases) != 2 {
		t.Fatalf("unexpected phrases: %v", cfg.MeetingTriggerPhrases)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"missing token", "DISCORD_TOKEN", "", "DISCORD_TOKEN"},
		{"postgres without dsn", "STORE_BACKEND", "postgres", "DATABASE_DSN"},
		{"unknown backend", "STORE_BACKEND", "sqlite", "STORE_BACKEND"},
		{"bad post time", "TECH_WORDS_POST_TIME", "7am", "TECH_WORDS_POST_TIME"},
		{"bad redis db", "REDIS_DB", "zero", "REDIS_DB"},
		{"bad timezone", "TIMEZONE", "Mars/Olympus", "TIMEZONE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, cfgErr.Field)
			}
		})
	}
}
