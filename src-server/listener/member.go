package listener

import (
	"context"
	"fmt"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

func memberAdd(as *utils.AppState) func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.User == nil {
			return
		}
		ctx := context.Background()
		sendMemberMessage(ctx, as, s, m.GuildID, m.User, settings.WelcomeChannel, settings.WelcomeMessage, DefaultWelcomeMessage)
		LogIntoLogs(ctx, as, s, m.GuildID, memberEmbed("Member joined", ColorJoin, m.User))
	}
}

func memberRemove(as *utils.AppState) func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	return func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		if m.Member == nil || m.User == nil {
			return
		}
		ctx := context.Background()
		sendMemberMessage(ctx, as, s, m.GuildID, m.User, settings.GoodbyeChannel, settings.GoodbyeMessage, DefaultGoodbyeMessage)
		LogIntoLogs(ctx, as, s, m.GuildID, memberEmbed("Member left", ColorLeave, m.User))
	}
}

// sendMemberMessage renders the guild's template for user into the
// configured channel. Nothing happens when the channel is unset.
func sendMemberMessage(
	ctx context.Context,
	as *utils.AppState,
	s *discordgo.Session,
	guildID string,
	user *discordgo.User,
	channelKey, messageKey, defaultMessage string,
) {
	channelID, err := as.Settings.Get(ctx, guildID, channelKey, "")
	if err != nil {
		slog.Warn("sendMemberMessage: can't read channel", "guild", guildID, "key", channelKey, "error", err)
		return
	}
	if channelID == "" {
		return
	}
	tmpl, err := as.Settings.Get(ctx, guildID, messageKey, defaultMessage)
	if err != nil {
		slog.Warn("sendMemberMessage: can't read message, using default", "guild", guildID, "key", messageKey, "error", err)
		tmpl = defaultMessage
	}

	startTimer := time.Now()
	if _, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: RenderMemberTemplate(tmpl, user, utils.GuildName(s, guildID)),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{user.ID},
		},
	}); err != nil {
		slog.Warn("sendMemberMessage: can't send message", "guild", guildID, "channel", channelID, "error", err)
		return
	}
	as.MetricChans.ObserveDiscordSendMessage(startTimer)
}

func memberEmbed(title string, color int, user *discordgo.User) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("<@%s> %s", user.ID, user.Username),
		Color:       color,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "User ID",
				Value:  user.ID,
				Inline: true,
			},
		},
	}
	if createdAt, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Account created",
			Value:  fmt.Sprintf("<t:%d:R>", createdAt.Unix()),
			Inline: true,
		})
	}
	return embed
}
