package settings_handler

import (
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

const genericErrorMessage = "Something went wrong while saving the setting. Please try again later."

func reply(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	startTimer := time.Now()
	if err := utils.InteractRespHiddenReply(s, i, content); err != nil {
		slog.Warn("settings_handler: can't respond", "content", content, "error", err)
		return
	}
	as.MetricChans.ObserveDiscordSendMessage(startTimer)
}

func editReply(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	startTimer := time.Now()
	if err := utils.InteractRespEdit(s, i, content); err != nil {
		slog.Warn("settings_handler: can't edit deferred response", "content", content, "error", err)
		return
	}
	as.MetricChans.ObserveDiscordSendMessage(startTimer)
}

func settingsChangedEmbed(i *discordgo.InteractionCreate, description string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Settings changed",
		Description: description,
	}
	if i.Member != nil && i.Member.User != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:  "Changed by",
				Value: "<@" + i.Member.User.ID + ">",
			},
		}
	}
	return embed
}
