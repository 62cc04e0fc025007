package listener

import (
	"context"
	"guildbot/src-server/leveling"
	"guildbot/src-server/model"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

func messageCreate(as *utils.AppState) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Message == nil || m.GuildID == "" || m.Author == nil || m.Author.Bot {
			return
		}
		ctx := context.Background()

		level, leveledUp, err := awardXP(ctx, as, m.GuildID, m.Author.ID, m.Content)
		if err != nil {
			slog.Warn("messageCreate: can't award xp", "guild", m.GuildID, "user", m.Author.ID, "error", err)
			return
		}
		if !leveledUp {
			return
		}

		channelID, err := as.Settings.Get(ctx, m.GuildID, settings.LevelingChannel, "")
		if err != nil {
			slog.Warn("messageCreate: can't read leveling channel", "guild", m.GuildID, "error", err)
		}
		if channelID == "" {
			channelID = m.ChannelID
		}

		startTimer := time.Now()
		if _, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content: leveling.LevelUpMessage(m.Author.ID, level),
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Users: []string{m.Author.ID},
			},
		}); err != nil {
			slog.Warn("messageCreate: can't announce level up", "guild", m.GuildID, "channel", channelID, "error", err)
			return
		}
		as.MetricChans.ObserveDiscordSendMessage(startTimer)
	}
}

// awardXP adds the XP earned by one message and reports the resulting
// level and whether the message crossed into it.
func awardXP(ctx context.Context, as *utils.AppState, guildID, userID, content string) (int64, bool, error) {
	amount := leveling.XPForMessage(content, leveling.DefaultExtraXP, leveling.DefaultExtraTrigger)

	startTimer := time.Now()
	xp, err := model.AddXP(ctx, as.BunDB, guildID, userID, amount)
	if err != nil {
		return 0, false, err
	}
	as.MetricChans.ObserveDatabaseWrite(startTimer)

	xpPerLevel, err := as.Settings.GetInt(ctx, guildID, settings.LevelingXPPerLevel, leveling.DefaultXPPerLevel)
	if err != nil {
		slog.Debug("awardXP: bad xp per level, using default", "guild", guildID, "error", err)
	}

	before := leveling.LevelForXP(xp-amount, xpPerLevel)
	after := leveling.LevelForXP(xp, xpPerLevel)
	return after, after > before, nil
}
