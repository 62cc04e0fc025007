package settings_handler

import (
	"context"
	"fmt"
	"guildbot/src-server/listener"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// An embed field value holds at most 1024 characters and /settings view
// shows the template in one.
const (
	maxMessageLength    = 1000
	maxEmbedFieldLength = 1024
)

func messageCmdInfo(group channelGroup) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "message",
		Description: fmt.Sprintf("Change the text of %s. Leave empty to reset it.", group.about),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Placeholders: {user}, {user-mention}, {user-id}, {server}",
				MaxLength:   maxMessageLength,
			},
		},
	}
}

func defaultMessage(messageKey string) string {
	if messageKey == settings.GoodbyeMessage {
		return listener.DefaultGoodbyeMessage
	}
	return listener.DefaultWelcomeMessage
}

// setMessage stores the trimmed template, or drops it when it's empty so
// the default applies again. The reply previews it for the caller.
func setMessage(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, group channelGroup) error {
	_, optionMap := utils.LeafOptions(i.ApplicationCommandData().Options)
	text, _ := utils.StringOption(optionMap, "text")
	text = strings.TrimSpace(text)

	ctx := context.Background()
	var msg string
	if text == "" {
		if err := as.Settings.Unset(ctx, i.GuildID, group.messageKey); err != nil {
			reply(as, s, i, genericErrorMessage)
			return fmt.Errorf("setMessage: can't reset %s: %w", group.messageKey, err)
		}
		text = defaultMessage(group.messageKey)
		msg = fmt.Sprintf("%s message reset to the default.", utils.Title(group.name))
	} else {
		if err := as.Settings.Set(ctx, i.GuildID, group.messageKey, text); err != nil {
			reply(as, s, i, genericErrorMessage)
			return fmt.Errorf("setMessage: can't save %s: %w", group.messageKey, err)
		}
		msg = fmt.Sprintf("%s message updated.", utils.Title(group.name))
	}

	var user *discordgo.User
	if i.Member != nil {
		user = i.Member.User
	}
	preview := listener.RenderMemberTemplate(text, user, utils.GuildName(s, i.GuildID))
	reply(as, s, i, msg+" Preview:\n>>> "+preview)
	listener.LogIntoLogs(ctx, as, s, i.GuildID, settingsChangedEmbed(i, msg))
	return nil
}
