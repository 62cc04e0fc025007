package utils

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var ErrNoSelfUser = errors.New("session has no user, is it open?")

// SelfID is the bot's own user ID, known once the READY event arrived.
func SelfID(s *discordgo.Session) string {
	if s == nil || s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}

// CanSend reports whether channel permissions allow posting messages there.
func CanSend(perms int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	need := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages)
	return perms&need == need
}

// MemberChannelPermissions computes the permissions of userID in channelID,
// from the state cache when it has everything and from the REST API otherwise.
func MemberChannelPermissions(s *discordgo.Session, userID, channelID string) (int64, error) {
	if userID == "" {
		return 0, ErrNoSelfUser
	}
	if s.State != nil {
		if perms, err := s.State.UserChannelPermissions(userID, channelID); err == nil {
			return perms, nil
		}
	}
	perms, err := s.UserChannelPermissions(userID, channelID)
	if err != nil {
		return 0, fmt.Errorf("MemberChannelPermissions: %w", err)
	}
	return perms, nil
}

// BotCanSend is MemberChannelPermissions + CanSend for the bot itself.
func BotCanSend(s *discordgo.Session, channelID string) (bool, error) {
	perms, err := MemberChannelPermissions(s, SelfID(s), channelID)
	if err != nil {
		return false, err
	}
	return CanSend(perms), nil
}

// GuildName reads the guild name from the state cache.
func GuildName(s *discordgo.Session, guildID string) string {
	if s != nil && s.State != nil {
		if guild, err := s.State.Guild(guildID); err == nil && guild.Name != "" {
			return guild.Name
		}
	}
	return "the server"
}
