package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"communitybot/internal/attendance"
	"communitybot/internal/coding"
	"communitybot/internal/config"
	"communitybot/internal/database"
	"communitybot/internal/discord"
	"communitybot/internal/ledger"
	"communitybot/internal/logger"
	"communitybot/internal/store"
	"communitybot/internal/techwords"
	"communitybot/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	closer := logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer closer.Close()

	ctx, cancel := context.WithCancel(log.Logger.WithContext(context.Background()))
	defer cancel()

	clock := utils.SystemClock{}

	// Initialize storage
	backend, points, cleanup := openStore(cfg, clock)
	defer cleanup()

	// Initialize Discord session
	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	messenger := discord.NewMessenger(session)

	policy := attendance.NewPolicy(backend, messenger, clock, cfg.AnnouncementChannelID, cfg.MeetingTriggerPhrases)
	checkin := attendance.NewCheckinTracker(backend, points, messenger, clock, cfg.MeetingChannelID)
	voice := attendance.NewVoiceTracker(backend, attendance.NewSessionTracker(), policy, points, messenger, clock, cfg.MeetingVoiceChannelIDs)
	rewarder := coding.NewRewarder(backend, points, messenger, clock, cfg.CodingChannelID)

	if cfg.MeetingChannelID == "" {
		log.Warn().Msg("MEETING_CHANNEL_ID not set, meeting attendance disabled")
	}
	if cfg.CodingChannelID == "" {
		log.Warn().Msg("CODING_CHANNEL_ID not set, coding answers disabled")
	}

	bot := discord.New(session, discord.Deps{
		Config:    cfg,
		Messenger: messenger,
		Ledger:    points,
		Policy:    policy,
		Checkin:   checkin,
		Voice:     voice,
		Rewarder:  rewarder,
	})

	// Start bot
	if err := bot.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}
	defer bot.Stop()

	if cfg.TechWordsChannelID != "" {
		poster := techwords.NewPoster(cfg.TechWordsFile, cfg.TechWordsChannelID, messenger, techwords.NewYouTubeResolver(), nil)
		scheduler := techwords.NewScheduler(clock, cfg.Location, cfg.TechWordsHour, cfg.TechWordsMinute, poster.Post)
		go scheduler.Run(ctx)
	} else {
		log.Warn().Msg("TECH_WORDS_CHANNEL_ID not set, daily tech words disabled")
	}

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Info().Msg("Shutting down bot...")
	cancel()
}

// openStore builds the document backend and the points ledger for the
// configured backend. Postgres keeps points in its own table.
func openStore(cfg *config.Config, clock utils.Clock) (store.Backend, ledger.Ledger, func()) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.New(cfg.DatabaseDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		log.Info().Msg("Using postgres store")
		return store.NewPostgresBackend(db.GetConnection()), database.NewRepository(db), func() { db.Close() }

	case config.BackendRedis:
		backend, err := store.NewRedisBackend(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.RedisPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis store")
		return backend, ledger.NewDocumentLedger(backend, clock), func() { backend.Close() }

	default:
		backend, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize data directory")
		}
		log.Info().Str("dir", cfg.DataDir).Msg("Using file store")
		return backend, ledger.NewDocumentLedger(backend, clock), func() { backend.Close() }
	}
}
