package listener

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	DefaultWelcomeMessage = "Welcome to **{server}**, {user-mention}!"
	DefaultGoodbyeMessage = "**{user}** has left the server."
)

// RenderMemberTemplate fills {user}, {user-mention}, {user-id} and {server}.
// Unknown placeholders are left alone.
func RenderMemberTemplate(tmpl string, user *discordgo.User, serverName string) string {
	var username, userID string
	if user != nil {
		username = user.Username
		userID = user.ID
	}
	return strings.NewReplacer(
		"{user-mention}", "<@"+userID+">",
		"{user-id}", userID,
		"{user}", username,
		"{server}", serverName,
	).Replace(tmpl)
}
