package lottery

import (
	"context"

	"lottery/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Subcommand names of /lottery
const (
	SubcommandStatus  = "status"
	SubcommandDraw    = "draw"
	SubcommandWinners = "winners"
	SubcommandReset   = "reset"
)

// HandleCommand routes /lottery subcommands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		common.RespondWithError(s, i, "Unknown lottery command")
		return
	}

	sub := data.Options[0]
	options := optionMap(sub.Options)
	userID := common.UserID(i)

	switch sub.Name {
	case SubcommandStatus:
		r, err := f.status(ctx)
		if err != nil {
			common.HandleError(s, i, err, false)
			return
		}
		if err := common.RespondWithEmbed(s, i, r.embed, r.ephemeral); err != nil {
			log.Errorf("Error responding to lottery status: %v", err)
		}

	case SubcommandDraw:
		f.deferred(s, i, false, func() (*reply, error) {
			return f.draw(ctx, userID, stringOption(options, "passcode"), int(intOption(options, "count")))
		})

	case SubcommandWinners:
		f.deferred(s, i, true, func() (*reply, error) {
			return f.winners(ctx, userID, stringOption(options, "passcode"))
		})

	case SubcommandReset:
		f.deferred(s, i, false, func() (*reply, error) {
			return f.reset(ctx, userID, stringOption(options, "passcode"), stringOption(options, "reset_passcode"))
		})

	default:
		log.Warnf("Unknown lottery subcommand: %s", sub.Name)
		common.RespondWithError(s, i, "Unknown lottery command")
	}
}

// deferred acknowledges the interaction, runs fn and sends its reply as a follow-up
func (f *Feature) deferred(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool, fn func() (*reply, error)) {
	if err := common.DeferResponse(s, i, ephemeral); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	r, err := fn()
	if err != nil {
		common.HandleError(s, i, err, true)
		return
	}

	if _, err := common.FollowUpWithEmbed(s, i, r.embed, r.ephemeral, r.attachments...); err != nil {
		log.Errorf("Error sending lottery follow-up: %v", err)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

func stringOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := options[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func intOption(options map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	if opt, ok := options[name]; ok {
		return opt.IntValue()
	}
	return 0
}
