package settings_handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"guildbot/src-server/model"
	"guildbot/src-server/utils"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const goneMessage = "This reaction role no longer exists."

// RoleChange is what a button click does to the clicking member.
type RoleChange struct {
	Add     []string
	Remove  []string
	Message string
}

func roleMentions(roleIDs []string) string {
	mentions := make([]string, len(roleIDs))
	for i, roleID := range roleIDs {
		mentions[i] = "<@&" + roleID + ">"
	}
	return strings.Join(mentions, ", ")
}

// PlanRoleChange decides the role changes for a click on clicked, given the
// panel's mode, the member's current roles and every role on the panel.
func PlanRoleChange(mode model.ReactionRoleMode, memberRoles, panelRoles []string, clicked string) RoleChange {
	has := slices.Contains(memberRoles, clicked)
	mention := "<@&" + clicked + ">"
	added := RoleChange{Add: []string{clicked}, Message: "Added " + mention + "."}
	removed := RoleChange{Remove: []string{clicked}, Message: "Removed " + mention + "."}

	switch mode {
	case model.ReactionRoleModeAdd:
		if has {
			return RoleChange{Message: "You already have " + mention + "."}
		}
		return added
	case model.ReactionRoleModeRemove:
		if !has {
			return RoleChange{Message: "You don't have " + mention + "."}
		}
		return removed
	case model.ReactionRoleModeSingle:
		if has {
			return removed
		}
		for _, roleID := range panelRoles {
			if roleID != clicked && slices.Contains(memberRoles, roleID) {
				added.Remove = append(added.Remove, roleID)
			}
		}
		if len(added.Remove) > 0 {
			added.Message = fmt.Sprintf("Added %s and removed %s.", mention, roleMentions(added.Remove))
		}
		return added
	default:
		if has {
			return removed
		}
		return added
	}
}

func reactionRoleButtonHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if i.GuildID == "" || i.Member == nil || i.Member.User == nil || i.Message == nil {
			return nil
		}
		_, roleID, _ := strings.Cut(i.MessageComponentData().CustomID, ":")

		ctx := context.Background()
		startTimer := time.Now()
		panel, err := model.GetReactionRolePanelByMessage(ctx, as.BunDB, i.Message.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			reply(as, s, i, goneMessage)
			return nil
		case err != nil:
			reply(as, s, i, "Can't load this panel right now. Please try again later.")
			return fmt.Errorf("reactionRoleButtonHandler: %w", err)
		}
		as.MetricChans.ObserveDatabaseRead(startTimer)

		panelRoles := panel.RoleIDs()
		if roleID == "" || !slices.Contains(panelRoles, roleID) {
			reply(as, s, i, goneMessage)
			return nil
		}

		change := PlanRoleChange(panel.Mode, i.Member.Roles, panelRoles, roleID)
		userID := i.Member.User.ID
		for _, id := range change.Remove {
			if err := s.GuildMemberRoleRemove(i.GuildID, userID, id); err != nil {
				reply(as, s, i, roleUpdateFailedMessage(id))
				return fmt.Errorf("reactionRoleButtonHandler: can't remove role %s: %w", id, err)
			}
		}
		for _, id := range change.Add {
			if err := s.GuildMemberRoleAdd(i.GuildID, userID, id); err != nil {
				reply(as, s, i, roleUpdateFailedMessage(id))
				return fmt.Errorf("reactionRoleButtonHandler: can't add role %s: %w", id, err)
			}
		}
		reply(as, s, i, change.Message)
		return nil
	}
}

func roleUpdateFailedMessage(roleID string) string {
	return fmt.Sprintf("I couldn't update your roles. I need Manage Roles and my highest role must be above <@&%s>.", roleID)
}
