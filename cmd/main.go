package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"roster-bot/allocator"
	"roster-bot/config"
	"roster-bot/discord"
	"roster-bot/health"
	"roster-bot/metrics"
	"roster-bot/queues"
	qpubsub "roster-bot/queues/pubsub"
	"roster-bot/storage/sqlite"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var version = "source"

func setLogger() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// setLogLevel applies ROSTER_LOG_LEVEL unless DEBUG already forced debug output.
func setLogLevel(level string) {
	if os.Getenv("DEBUG") != "" {
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("unknown log level; keeping info")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

func main() {
	setLogger()
	log.Info().Msgf("Starting roster-bot version: %s", version)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)
	log.Info().Interface("config", cfg.Redacted()).Msg("config loaded")

	// Preflight required configuration
	if cfg.DiscordToken == "" {
		log.Fatal().Msg("missing Discord bot token; set DISCORD_TOKEN")
	}
	publicKey, err := cfg.InteractionKey()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid interactions public key; set PUBLIC_KEY")
	}
	if cfg.Subscription != "" && cfg.GoogleProjectID == "" {
		log.Fatal().Msg("missing Google project id; set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_PROJECT_ID or ROSTER_PUBSUB_PROJECT_ID")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.DatabasePath, cfg.DefaultPrefix)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("failed to open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("database close failed")
		}
	}()

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Discord session")
	}
	session.Identify.Intents = discord.Intents

	engine := allocator.NewEngine(allocator.DefaultSchema())
	board := discord.NewBoardPublisher(session, cfg.BuildsChannelID)
	controller := allocator.NewController(engine, allocator.Sink{Name: "board", Publisher: board})

	var publisher *qpubsub.Publisher
	if cfg.PubsubTopic != "" && cfg.GoogleProjectID != "" {
		if cfg.CredentialsFile != "" {
			log.Info().Str("credsFile", cfg.CredentialsFile).Msg("using explicit Google credentials file")
		} else {
			log.Info().Msg("using default Google credentials (ambient)")
		}
		publisher = qpubsub.NewPublisher(cfg.GoogleProjectID, cfg.PubsubTopic, cfg.CredentialsFile)
		controller.AddSink(allocator.Sink{Name: "pubsub", Publisher: publisher})
	}

	gateway := discord.NewGateway(session, controller, store, store)
	session.AddHandler(gateway.OnMessageCreate)

	var ready atomic.Bool
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		ready.Store(true)
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord: gateway ready")
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		ready.Store(false)
		log.Warn().Msg("discord: gateway disconnected")
	})

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open Discord gateway")
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Error().Err(err).Msg("discord session close failed")
		}
	}()

	if cfg.RegisterCommands && cfg.AppID != "" {
		if err := discord.RegisterCommands(session, cfg.AppID, cfg.GuildID, engine.Schema()); err != nil {
			log.Error().Err(err).Msg("failed to register application commands")
		}
	}

	// Interactions, metrics and health on one listener
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	interactions := discord.NewInteractions(session, controller, board, store, store, discord.InteractionsConfig{
		PublicKey:       publicKey,
		MentionRoleID:   cfg.MentionRoleID,
		BuildsChannelID: cfg.BuildsChannelID,
	})
	interactions.Register(router)

	mux := http.NewServeMux()
	mux.Handle("/interactions", router)
	metrics.Register(mux)
	health.Register(mux, ready.Load, func() bool { return store.Ping(ctx) == nil })

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr()).Msg("starting interactions/metrics/health server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	if cfg.Subscription != "" {
		subscriber := qpubsub.NewSubscriber(cfg.GoogleProjectID, cfg.Subscription, cfg.CredentialsFile)
		go func() {
			log.Info().Str("subscription", cfg.Subscription).Msg("starting subscriber loop")
			if err := subscriber.Start(ctx, func(ctx context.Context, req *queues.RosterRequest) error {
				// rejections travel back as roster-changed events; redelivery would not change them
				h := controller.Handle(ctx, req)
				if h.Err != nil {
					log.Debug().Err(h.Err).Str("requestId", req.RequestID).Msg("roster request rejected")
				}
				return nil
			}); err != nil {
				log.Fatal().Err(err).Msg("subscriber exited with fatal error; shutting down")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server graceful shutdown failed")
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("pubsub publisher close failed")
		}
	}
	log.Info().Msg("shutdown complete")
}
