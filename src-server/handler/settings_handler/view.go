package settings_handler

import (
	"context"
	"fmt"
	"guildbot/src-server/leveling"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

func view(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]utils.InteractionHandler) {
	id := "view"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Show the current settings.",
	})
	cmdHandler[id] = viewHandler(as)
}

func viewHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if !hasContext(i) {
			return nil
		}
		all, err := as.Settings.All(context.Background(), i.GuildID)
		if err != nil {
			reply(as, s, i, "Can't load the settings right now. Please try again later.")
			return fmt.Errorf("viewHandler: %w", err)
		}

		startTimer := time.Now()
		if err := utils.InteractRespHiddenEmbeds(s, i, settingsEmbed(all, utils.GuildName(s, i.GuildID))); err != nil {
			slog.Warn("viewHandler: can't respond", "error", err)
			return nil
		}
		as.MetricChans.ObserveDiscordSendMessage(startTimer)
		return nil
	}
}

func settingsEmbed(all map[string]string, guildName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Settings for " + guildName,
		Color: 0x5865f2,
	}
	for _, group := range channelGroups {
		value := "Not set"
		if channelID := all[group.channelKey]; channelID != "" {
			value = "<#" + channelID + ">"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   utils.Title(group.name) + " channel",
			Value:  value,
			Inline: true,
		})
	}
	for _, group := range channelGroups {
		if group.messageKey == "" {
			continue
		}
		text, ok := all[group.messageKey]
		if !ok {
			text = defaultMessage(group.messageKey) + " (default)"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  utils.Title(group.name) + " message",
			Value: utils.Truncate(text, maxEmbedFieldLength),
		})
	}

	xpPerLevel := strconv.FormatInt(leveling.DefaultXPPerLevel, 10) + " (default)"
	if value, ok := all[settings.LevelingXPPerLevel]; ok {
		xpPerLevel = value
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "XP per level",
		Value:  xpPerLevel,
		Inline: true,
	})
	return embed
}
