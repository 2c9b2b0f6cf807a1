package cmd

import (
	"context"
	"fmt"

	"lottery/bot"
	"lottery/bot/common"
	"lottery/bot/features/lottery"
	"lottery/config"

	log "github.com/sirupsen/logrus"
)

// Run wires the application, starts the Discord bot and blocks until ctx is done
func Run(ctx context.Context, cfg *config.Config) error {
	log.Info("Starting lottery service...")

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	state, err := app.Engine.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read draw status: %w", err)
	}
	log.WithField("state", state).Info("Draw engine ready")

	var discordBot *bot.Bot
	if cfg.DiscordToken == "" {
		log.Warn("DISCORD_TOKEN is not set, Discord bot disabled")
	} else {
		log.Info("Initializing Discord bot...")
		limiter := common.NewAttemptLimiter(cfg.AuthAttemptsPerMinute, cfg.AuthAttemptBurst)
		feature := lottery.NewFeature(app.Engine, app.Authorizer, app.Exporter, limiter, app.Bus)
		discordBot, err = bot.New(bot.Config{
			Token:   cfg.DiscordToken,
			GuildID: cfg.GuildID,
		}, feature, limiter)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		log.Info("Discord bot initialized successfully")
	}

	// Wait for context cancellation
	log.Infof("Lottery service is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down lottery service...")
	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.Errorf("Error closing Discord bot: %v", err)
		}
	}

	log.Info("Shutdown completed")
	return nil
}
