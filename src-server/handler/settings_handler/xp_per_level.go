package settings_handler

import (
	"context"
	"fmt"
	"guildbot/src-server/listener"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

const levelingGroupKey = settings.LevelingChannel

func xpPerLevelCmdInfo() *discordgo.ApplicationCommandOption {
	minXP := float64(1)
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        "xp-per-level",
		Description: "Set how much XP each level takes.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "xp",
				Description: "XP needed per level.",
				MinValue:    &minXP,
				Required:    true,
			},
		},
	}
}

func setXPPerLevel(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	_, optionMap := utils.LeafOptions(i.ApplicationCommandData().Options)
	xp, ok := utils.IntOption(optionMap, "xp")
	if !ok || xp < 1 {
		reply(as, s, i, "XP per level must be at least 1.")
		return nil
	}

	ctx := context.Background()
	if err := as.Settings.Set(ctx, i.GuildID, settings.LevelingXPPerLevel, strconv.FormatInt(xp, 10)); err != nil {
		reply(as, s, i, genericErrorMessage)
		return fmt.Errorf("setXPPerLevel: can't save: %w", err)
	}

	msg := fmt.Sprintf("Leveling XP per level set to %d.", xp)
	reply(as, s, i, msg)
	listener.LogIntoLogs(ctx, as, s, i.GuildID, settingsChangedEmbed(i, msg))
	return nil
}
