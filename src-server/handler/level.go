package handler

import (
	"context"
	"fmt"
	"guildbot/src-server/leveling"
	"guildbot/src-server/model"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

func Level(as *utils.AppState) {
	id := "level"
	dmPermission := false
	as.AddAppCmdHandler(id, levelHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:         id,
		Description:  "Show your level, or someone else's.",
		DMPermission: &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Whose level to show.",
			},
		},
	})
}

// LevelSummary describes where xp puts userID.
func LevelSummary(userID string, xp, xpPerLevel int64) string {
	level := leveling.LevelForXP(xp, xpPerLevel)
	next := leveling.XPForLevel(level+1, xpPerLevel)
	return fmt.Sprintf(
		"<@%s> is level %d with %d XP. %d more XP to reach level %d.",
		userID, level, xp, next-xp, level+1,
	)
}

func levelHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		respond := func(content string) {
			startTimer := time.Now()
			if err := utils.InteractRespHiddenReply(s, i, content); err != nil {
				slog.Warn("levelHandler: can't respond", "content", content, "error", err)
				return
			}
			as.MetricChans.ObserveDiscordSendMessage(startTimer)
		}

		if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
			respond("Levels only exist inside a server.")
			return nil
		}
		userID := i.Member.User.ID
		_, optionMap := utils.LeafOptions(i.ApplicationCommandData().Options)
		if targetID, ok := utils.StringOption(optionMap, "user"); ok && targetID != "" {
			userID = targetID
		}

		ctx := context.Background()
		startTimer := time.Now()
		xp, err := model.GetXP(ctx, as.BunDB, i.GuildID, userID)
		if err != nil {
			respond("Can't load levels right now. Please try again later.")
			return fmt.Errorf("levelHandler: %w", err)
		}
		as.MetricChans.ObserveDatabaseRead(startTimer)

		xpPerLevel, err := as.Settings.GetInt(ctx, i.GuildID, settings.LevelingXPPerLevel, leveling.DefaultXPPerLevel)
		if err != nil {
			slog.Debug("levelHandler: bad xp per level, using default", "guild", i.GuildID, "error", err)
		}

		respond(LevelSummary(userID, xp, xpPerLevel))
		return nil
	}
}
