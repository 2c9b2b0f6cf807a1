package lottery

import (
	"fmt"

	"lottery/bot/common"
	"lottery/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// CreateStatusEmbed shows the roster and whether this round has been drawn
func CreateStatusEmbed(roster entities.Roster, state entities.DrawState) *discordgo.MessageEmbed {
	description := "No draw has been conducted yet. Only authorized staff can pick winners."
	color := common.ColorInfo
	if state.IsLocked() {
		description = "A draw has already been conducted for this round."
		color = common.ColorWarning
	}
	if roster.IsEmpty() {
		description = "The members roster is empty. Ask an administrator to upload it."
		color = common.ColorDanger
	}

	return &discordgo.MessageEmbed{
		Title:       "🎟️ Lottery Status",
		Color:       color,
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Members",
				Value:  common.FormatCount(roster.Size()),
				Inline: true,
			},
			{
				Name:   "Round",
				Value:  stateLabel(state),
				Inline: true,
			},
			{
				Name:   "Roster",
				Value:  common.FormatRankedList(roster.Participants, common.MaxFieldValueChars),
				Inline: false,
			},
		},
	}
}

// CreateDrawResultEmbed announces freshly drawn winners
func CreateDrawResultEmbed(result *entities.DrawResult) *discordgo.MessageEmbed {
	embed := resultEmbed(result)
	embed.Title = "🎉 Winners Selected!"
	embed.Color = common.ColorSuccess
	return embed
}

// CreatePreviousWinnersEmbed shows the result that locked this round
func CreatePreviousWinnersEmbed(result *entities.DrawResult) *discordgo.MessageEmbed {
	embed := resultEmbed(result)
	embed.Title = "🎉 Previous Winners"
	embed.Color = common.ColorInfo
	embed.Description = "A previous draw has already been conducted. Use `/lottery reset` to start a new round."
	return embed
}

// CreateResetEmbed confirms a reset
func CreateResetEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔄 Round Reset",
		Color:       common.ColorSuccess,
		Description: "Winners record deleted. A new draw can now be conducted.",
	}
}

func resultEmbed(result *entities.DrawResult) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Winners",
				Value:  fmt.Sprintf("%d of %s members", len(result.Winners), common.FormatCount(result.RosterSize)),
				Inline: true,
			},
			{
				Name:   "Drawn",
				Value:  common.FormatDiscordTimestamp(result.CreatedAt, "f"),
				Inline: true,
			},
			{
				Name:   "Winners List",
				Value:  common.FormatRankedList(result.Winners, common.MaxFieldValueChars),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Draw %s", result.ID),
		},
	}
}

func stateLabel(state entities.DrawState) string {
	if state.IsLocked() {
		return "🔒 Drawn"
	}
	return "🔓 Open"
}
