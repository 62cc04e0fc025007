package settings_handler

import (
	"context"
	"fmt"
	"guildbot/src-server/listener"
	"guildbot/src-server/utils"
	"log/slog"
	"slices"

	"github.com/bwmarrin/discordgo"
)

var textChannelTypes = []discordgo.ChannelType{
	discordgo.ChannelTypeGuildText,
	discordgo.ChannelTypeGuildNews,
}

type channelGroup struct {
	name       string
	channelKey string
	messageKey string // only groups that send a templated message have one
	about      string
}

func addChannelGroup(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]utils.InteractionHandler, group channelGroup) {
	subCmdInfo := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "channel",
			Description: fmt.Sprintf("Set the channel for %s.", group.about),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "A text or announcement channel.",
					ChannelTypes: textChannelTypes,
					Required:     true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "clear",
			Description: fmt.Sprintf("Stop sending %s.", group.about),
		},
	}
	subCmdHandler := map[string]utils.InteractionHandler{
		"channel": func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return setChannel(as, s, i, group.name, group.channelKey, utils.SelfID(s))
		},
		"clear": func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return clearChannel(as, s, i, group.name, group.channelKey)
		},
	}
	if group.messageKey != "" {
		subCmdInfo = append(subCmdInfo, messageCmdInfo(group))
		subCmdHandler["message"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return setMessage(as, s, i, group)
		}
	}
	if group.channelKey == levelingGroupKey {
		subCmdInfo = append(subCmdInfo, xpPerLevelCmdInfo())
		subCmdHandler["xp-per-level"] = func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
			return setXPPerLevel(as, s, i)
		}
	}

	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        group.name,
		Description: fmt.Sprintf("Configure %s.", group.about),
		Options:     subCmdInfo,
	})
	cmdHandler[group.name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if !hasContext(i) {
			return nil
		}
		if handler, ok := subCmdHandler[subcommand(i)]; ok {
			return handler(s, i)
		}
		return nil
	}
}

// setChannel stores channelID under key once it's sure the bot can
// post there, then confirms and writes to the logging channel.
func setChannel(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, group, key, selfMemberID string) error {
	_, optionMap := utils.LeafOptions(i.ApplicationCommandData().Options)
	channelID, ok := utils.StringOption(optionMap, "channel")
	if !ok || channelID == "" {
		reply(as, s, i, "Please pick a channel.")
		return nil
	}

	channel := resolveChannel(s, i, channelID)
	if channel == nil || !slices.Contains(textChannelTypes, channel.Type) {
		reply(as, s, i, fmt.Sprintf("<#%s> is not a text or announcement channel.", channelID))
		return nil
	}

	perms, err := utils.MemberChannelPermissions(s, selfMemberID, channelID)
	if err != nil {
		slog.Debug("setChannel: can't compute permissions", "channel", channelID, "error", err)
	}
	if err != nil || !utils.CanSend(perms) {
		reply(as, s, i, fmt.Sprintf(
			"I can't send messages in <#%s>. Give me the View Channel and Send Messages permissions there first.",
			channelID,
		))
		return nil
	}

	ctx := context.Background()
	if err := as.Settings.Set(ctx, i.GuildID, key, channelID); err != nil {
		reply(as, s, i, genericErrorMessage)
		return fmt.Errorf("setChannel: can't save %s: %w", key, err)
	}

	msg := fmt.Sprintf("%s channel set to <#%s>.", utils.Title(group), channelID)
	reply(as, s, i, msg)
	listener.LogIntoLogs(ctx, as, s, i.GuildID, settingsChangedEmbed(i, msg))
	return nil
}

func clearChannel(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, group, key string) error {
	ctx := context.Background()
	if err := as.Settings.Unset(ctx, i.GuildID, key); err != nil {
		reply(as, s, i, genericErrorMessage)
		return fmt.Errorf("clearChannel: can't clear %s: %w", key, err)
	}

	msg := fmt.Sprintf("%s channel cleared.", utils.Title(group))
	reply(as, s, i, msg)
	listener.LogIntoLogs(ctx, as, s, i.GuildID, settingsChangedEmbed(i, msg))
	return nil
}

// resolveChannel prefers the channel Discord resolved for the option and
// falls back to the state cache.
func resolveChannel(s *discordgo.Session, i *discordgo.InteractionCreate, channelID string) *discordgo.Channel {
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if channel, ok := resolved.Channels[channelID]; ok && channel != nil {
			return channel
		}
	}
	if s.State != nil {
		if channel, err := s.State.Channel(channelID); err == nil {
			return channel
		}
	}
	return nil
}
