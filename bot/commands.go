package bot

import (
	"fmt"

	"lottery/bot/features/lottery"

	"github.com/bwmarrin/discordgo"
)

const commandLottery = "lottery"

func passcodeOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

// commands returns the slash command definitions
func commands() []*discordgo.ApplicationCommand {
	minCount := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        commandLottery,
			Description: "Authorized one-time lottery draw",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        lottery.SubcommandStatus,
					Description: "Show the members roster and whether this round has been drawn",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        lottery.SubcommandDraw,
					Description: "Pick winners for this round (one time only)",
					Options: []*discordgo.ApplicationCommandOption{
						passcodeOption("passcode", "Operator passcode"),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "count",
							Description: "Number of winners to select",
							Required:    true,
							MinValue:    &minCount,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        lottery.SubcommandWinners,
					Description: "Show the winners of this round",
					Options: []*discordgo.ApplicationCommandOption{
						passcodeOption("passcode", "Operator passcode"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        lottery.SubcommandReset,
					Description: "Delete the winners record and allow a new draw",
					Options: []*discordgo.ApplicationCommandOption{
						passcodeOption("passcode", "Operator passcode"),
						passcodeOption("reset_passcode", "Reset passcode"),
					},
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
