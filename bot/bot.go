package bot

import (
	"context"
	"fmt"
	"time"

	"lottery/bot/common"
	"lottery/bot/features/lottery"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

// Bot is the Discord presenter for the draw
type Bot struct {
	config  Config
	session *discordgo.Session
	lottery *lottery.Feature
	limiter *common.AttemptLimiter
	cancel  context.CancelFunc
}

// New opens a Discord session and registers the /lottery command
func New(config Config, feature *lottery.Feature, limiter *common.AttemptLimiter) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:  config,
		session: dg,
		lottery: feature,
		limiter: limiter,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	bot.cancel = cancel
	go bot.startLimiterCleanup(ctx)

	log.WithField("guild_id", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

// Close stops background work and closes the session
func (b *Bot) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case commandLottery:
		b.lottery.HandleCommand(s, i)
	}
}

// startLimiterCleanup forgets idle passcode throttle entries
func (b *Bot) startLimiterCleanup(ctx context.Context) {
	if b.limiter == nil {
		return
	}

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := b.limiter.Prune(time.Hour); removed > 0 {
				log.Debugf("Pruned %d idle passcode throttle entries", removed)
			}
		}
	}
}
