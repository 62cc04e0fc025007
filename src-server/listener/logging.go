package listener

import (
	"context"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo  = 0x5865f2
	ColorJoin  = 0x57f287
	ColorLeave = 0xed4245
)

// LogIntoLogs posts embed into the guild's logging channel, if one is set
// and the bot is allowed to write there.
func LogIntoLogs(ctx context.Context, as *utils.AppState, s *discordgo.Session, guildID string, embed *discordgo.MessageEmbed) {
	channelID, err := as.Settings.Get(ctx, guildID, settings.LoggingChannel, "")
	if err != nil {
		slog.Warn("LogIntoLogs: can't read logging channel", "guild", guildID, "error", err)
		return
	}
	if channelID == "" {
		return
	}

	canSend, err := utils.BotCanSend(s, channelID)
	if err != nil || !canSend {
		slog.Warn("LogIntoLogs: can't send to logging channel", "guild", guildID, "channel", channelID, "error", err)
		return
	}

	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	if embed.Color == 0 {
		embed.Color = ColorInfo
	}

	startTimer := time.Now()
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		slog.Warn("LogIntoLogs: can't send embed", "guild", guildID, "channel", channelID, "error", err)
		return
	}
	as.MetricChans.ObserveDiscordSendMessage(startTimer)
}
