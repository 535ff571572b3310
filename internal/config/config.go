package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration for our application
type Config struct {
	DiscordToken string

	StoreBackend  string
	DataDir       string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	MeetingChannelID       string
	MeetingVoiceChannelIDs []string
	AnnouncementChannelID  string
	MeetingTriggerPhrases  []string
	CodingChannelID        string

	TechWordsChannelID string
	TechWordsFile      string
	TechWordsHour      int
	TechWordsMinute    int
	Location           *time.Location

	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:          os.Getenv("DISCORD_TOKEN"),
		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
		DataDir:               getEnv("DATA_DIR", "data"),
		DatabaseDSN:           os.Getenv("DATABASE_DSN"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:           getEnv("REDIS_PREFIX", "communitybot:"),
		MeetingChannelID:      os.Getenv("MEETING_CHANNEL_ID"),
		MeetingTriggerPhrases: splitList(os.Getenv("MEETING_TRIGGER_PHRASES")),
		CodingChannelID:       os.Getenv("CODING_CHANNEL_ID"),
		TechWordsChannelID:    os.Getenv("TECH_WORDS_CHANNEL_ID"),
		TechWordsFile:         getEnv("TECH_WORDS_FILE", "techWords.json"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               os.Getenv("LOG_FILE"),
	}

	if config.DiscordToken == "" {
		return nil, &ConfigError{Field: "DISCORD_TOKEN", Message: "DISCORD_TOKEN is required"}
	}

	switch config.StoreBackend {
	case BackendFile:
	case BackendPostgres:
		if config.DatabaseDSN == "" {
			return nil, &ConfigError{Field: "DATABASE_DSN", Message: "DATABASE_DSN is required for the postgres backend"}
		}
	case BackendRedis:
	default:
		return nil, &ConfigError{Field: "STORE_BACKEND", Message: "STORE_BACKEND must be one of file, postgres, redis"}
	}

	config.MeetingVoiceChannelIDs = splitList(os.Getenv("MEETING_VOICE_CHANNEL_IDS"))
	if len(config.MeetingVoiceChannelIDs) == 0 && config.MeetingChannelID != "" {
		config.MeetingVoiceChannelIDs = []string{config.MeetingChannelID}
	}
	config.AnnouncementChannelID = getEnv("ANNOUNCEMENT_CHANNEL_ID", config.MeetingChannelID)

	var err error
	if config.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.LogMaxSizeMB, err = getInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if config.LogMaxBackups, err = getInt("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if config.LogMaxAgeDays, err = getInt("LOG_MAX_AGE_DAYS", 7); err != nil {
		return nil, err
	}

	postTime, err := time.Parse("15:04", getEnv("TECH_WORDS_POST_TIME", "07:00"))
	if err != nil {
		return nil, &ConfigError{Field: "TECH_WORDS_POST_TIME", Message: "TECH_WORDS_POST_TIME must be HH:MM"}
	}
	config.TechWordsHour, config.TechWordsMinute = postTime.Hour(), postTime.Minute()

	config.Location, err = time.LoadLocation(getEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, &ConfigError{Field: "TIMEZONE", Message: "TIMEZONE is not a valid IANA zone: " + err.Error()}
	}

	return config, nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ConfigError{Field: key, Message: key + " must be an integer"}
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
