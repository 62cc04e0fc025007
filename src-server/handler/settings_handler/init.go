// Package settings_handler implements the /settings slash command and the
// reaction-role buttons it creates.
package settings_handler

import (
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

const cmdID = "settings"

// the order here is the order Discord shows the groups in
var channelGroups = []channelGroup{
	{
		name:       "logging",
		channelKey: settings.LoggingChannel,
		about:      "settings changes and members joining or leaving",
	},
	{
		name:       "welcome",
		channelKey: settings.WelcomeChannel,
		messageKey: settings.WelcomeMessage,
		about:      "welcome messages",
	},
	{
		name:       "goodbye",
		channelKey: settings.GoodbyeChannel,
		messageKey: settings.GoodbyeMessage,
		about:      "goodbye messages",
	},
	{
		name:       "leveling",
		channelKey: settings.LevelingChannel,
		about:      "level-up announcements",
	},
}

func Init(as *utils.AppState) {
	// works similar to how we create a new slash command using
	// appCmdInfo and appCmdHandler in AppState.
	localCmdInfo := make([]*discordgo.ApplicationCommandOption, 0)
	localCmdHandler := make(map[string]utils.InteractionHandler)

	for _, group := range channelGroups {
		addChannelGroup(as, &localCmdInfo, localCmdHandler, group)
	}
	reactionRoles(as, &localCmdInfo, localCmdHandler)
	view(as, &localCmdInfo, localCmdHandler)

	manageGuild := int64(discordgo.PermissionManageServer)
	dmPermission := false
	as.AddAppCmdInfo(cmdID, &discordgo.ApplicationCommand{
		Name:                     cmdID,
		Description:              "Configure the bot for this server.",
		DefaultMemberPermissions: &manageGuild,
		DMPermission:             &dmPermission,
		Options:                  localCmdInfo,
	})
	as.AddAppCmdHandler(cmdID, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		data := i.ApplicationCommandData()
		if data.Name != cmdID || !hasContext(i) {
			return nil
		}
		if !HasSettingsPermission(i.Member.Permissions) {
			if err := utils.InteractRespHiddenReply(s, i, "You do not have permissions"); err != nil {
				slog.Warn("settings: can't respond about missing permissions", "error", err)
			}
			return nil
		}
		if handler, ok := localCmdHandler[data.Options[0].Name]; ok {
			return handler(s, i)
		}
		return nil
	})
	as.AddMsgComponentHandler(reactionRolePrefix, reactionRoleButtonHandler(as))
}

// hasContext is the guard every /settings handler runs first: the
// interaction must come from a guild member and carry options.
func hasContext(i *discordgo.InteractionCreate) bool {
	if i == nil || i.Interaction == nil || i.GuildID == "" || i.Member == nil {
		return false
	}
	return len(i.ApplicationCommandData().Options) > 0
}

// HasSettingsPermission reports whether guild permissions allow changing settings.
func HasSettingsPermission(perms int64) bool {
	return perms&discordgo.PermissionManageServer != 0 ||
		perms&discordgo.PermissionAdministrator != 0
}

// subcommand returns the name of the subcommand inside a group, or "".
func subcommand(i *discordgo.InteractionCreate) string {
	path, _ := utils.LeafOptions(i.ApplicationCommandData().Options)
	if len(path) < 2 {
		return ""
	}
	return path[1]
}
