package listener

import (
	"context"
	"guildbot/src-server/model"
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// messageDelete forgets reaction role panels whose message is gone.
func messageDelete(as *utils.AppState) func(s *discordgo.Session, m *discordgo.MessageDelete) {
	return func(s *discordgo.Session, m *discordgo.MessageDelete) {
		if m.Message == nil || m.GuildID == "" {
			return
		}

		startTimer := time.Now()
		deleted, err := model.DeleteReactionRolePanelByMessage(context.Background(), as.BunDB, m.ID)
		if err != nil {
			slog.Warn("messageDelete: can't delete reaction role panel", "message", m.ID, "error", err)
			return
		}
		as.MetricChans.ObserveDatabaseWrite(startTimer)
		if deleted {
			slog.Info("reaction role panel deleted with its message", "guild", m.GuildID, "message", m.ID)
		}
	}
}
