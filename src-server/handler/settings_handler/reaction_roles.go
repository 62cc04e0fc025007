package settings_handler

import (
	"context"
	"fmt"
	"guildbot/src-server/listener"
	"guildbot/src-server/model"
	"guildbot/src-server/utils"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	reactionRolePrefix = "reactionrole"
	maxPanelRoles      = 9
	buttonsPerRow      = 5
	maxButtonLabel     = 80
)

var reactionRoleModes = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Normal - Allow adding and removing", Value: string(model.ReactionRoleModeNormal)},
	{Name: "Add only", Value: string(model.ReactionRoleModeAdd)},
	{Name: "Remove only", Value: string(model.ReactionRoleModeRemove)},
	{Name: "Only allow a single role", Value: string(model.ReactionRoleModeSingle)},
}

func reactionRoles(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler map[string]utils.InteractionHandler) {
	id := "reactionroles"
	options := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "message",
			Description: "The text shown above the buttons.",
			MaxLength:   2000,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "mode",
			Description: "What clicking a button does.",
			Choices:     reactionRoleModes,
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        "role",
			Description: "A role to hand out.",
			Required:    true,
		},
	}
	for n := 2; n <= maxPanelRoles; n++ {
		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionRole,
			Name:        fmt.Sprintf("role-%d", n),
			Description: "Another role to hand out.",
		})
	}

	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
		Name:        id,
		Description: "Let members pick roles with buttons.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "new",
				Description: "Post a new reaction role panel in this channel.",
				Options:     options,
			},
		},
	})
	cmdHandler[id] = func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		if !hasContext(i) {
			return nil
		}
		switch subcommand(i) {
		case "new":
			return newReactionRolePanel(as, s, i)
		}
		return nil
	}
}

// panelRoleIDs collects role, role-2 ... role-9 in option order, dropping repeats.
func panelRoleIDs(optionMap utils.OptionMap) []string {
	roleIDs := make([]string, 0, maxPanelRoles)
	seen := make(map[string]struct{}, maxPanelRoles)
	for n := 1; n <= maxPanelRoles; n++ {
		name := "role"
		if n > 1 {
			name = fmt.Sprintf("role-%d", n)
		}
		roleID, ok := utils.StringOption(optionMap, name)
		if !ok || roleID == "" {
			continue
		}
		if _, dup := seen[roleID]; dup {
			continue
		}
		seen[roleID] = struct{}{}
		roleIDs = append(roleIDs, roleID)
	}
	return roleIDs
}

// ReactionRoleComponents lays out one button per role, five to a row.
func ReactionRoleComponents(roles []*discordgo.Role) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(roles)+buttonsPerRow-1)/buttonsPerRow)
	for start := 0; start < len(roles); start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(roles))
		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, role := range roles[start:end] {
			label := role.Name
			if label == "" {
				label = "Role " + role.ID
			}
			buttons = append(buttons, discordgo.Button{
				Label:    utils.Truncate(label, maxButtonLabel),
				Style:    discordgo.SecondaryButton,
				CustomID: reactionRolePrefix + ":" + role.ID,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func resolveRole(s *discordgo.Session, i *discordgo.InteractionCreate, roleID string) *discordgo.Role {
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if role, ok := resolved.Roles[roleID]; ok && role != nil {
			return role
		}
	}
	if s.State != nil {
		if role, err := s.State.Role(i.GuildID, roleID); err == nil {
			return role
		}
	}
	return &discordgo.Role{ID: roleID}
}

func newReactionRolePanel(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	_, optionMap := utils.LeafOptions(i.ApplicationCommandData().Options)
	message, _ := utils.StringOption(optionMap, "message")
	message = strings.TrimSpace(message)
	modeValue, _ := utils.StringOption(optionMap, "mode")
	mode := model.ReactionRoleMode(modeValue)
	roleIDs := panelRoleIDs(optionMap)

	switch {
	case message == "":
		reply(as, s, i, "The message can't be empty.")
		return nil
	case !mode.Valid():
		reply(as, s, i, fmt.Sprintf("Unknown mode %q.", modeValue))
		return nil
	case len(roleIDs) == 0:
		reply(as, s, i, "Pick at least one role.")
		return nil
	}

	roles := make([]*discordgo.Role, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		role := resolveRole(s, i, roleID)
		if role.ID == i.GuildID || role.Managed {
			reply(as, s, i, fmt.Sprintf("<@&%s> can't be handed out.", roleID))
			return nil
		}
		roles = append(roles, role)
	}

	// posting the panel and saving it may take a while
	if err := utils.InteractRespHiddenDefer(s, i); err != nil {
		slog.Warn("newReactionRolePanel: can't defer", "error", err)
	}

	startTimer := time.Now()
	panelMsg, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content:         message,
		Components:      ReactionRoleComponents(roles),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		editReply(as, s, i, "I couldn't post the panel here. Check that I can send messages in this channel.")
		return fmt.Errorf("newReactionRolePanel: can't send panel: %w", err)
	}
	as.MetricChans.ObserveDiscordSendMessage(startTimer)

	panel := &model.ReactionRolePanel{
		ID:        uuid.NewString(),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		MessageID: panelMsg.ID,
		Mode:      mode,
		Entries:   make([]*model.ReactionRoleEntry, 0, len(roles)),
	}
	for _, role := range roles {
		panel.Entries = append(panel.Entries, &model.ReactionRoleEntry{RoleID: role.ID})
	}

	ctx := context.Background()
	startTimer = time.Now()
	if err := panel.Insert(ctx, as.BunDB); err != nil {
		// the buttons would have no panel behind them
		if err := s.ChannelMessageDelete(i.ChannelID, panelMsg.ID); err != nil {
			slog.Warn("newReactionRolePanel: can't delete unsaved panel", "message", panelMsg.ID, "error", err)
		}
		editReply(as, s, i, genericErrorMessage)
		return fmt.Errorf("newReactionRolePanel: can't save panel: %w", err)
	}
	as.MetricChans.ObserveDatabaseWrite(startTimer)

	editReply(as, s, i, "Reaction role panel created.")

	mentions := make([]string, 0, len(roles))
	for _, role := range roles {
		mentions = append(mentions, "<@&"+role.ID+">")
	}
	embed := settingsChangedEmbed(i, fmt.Sprintf("Reaction role panel created in <#%s>.", i.ChannelID))
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Mode", Value: string(mode), Inline: true},
		&discordgo.MessageEmbedField{Name: "Roles", Value: strings.Join(mentions, " "), Inline: true},
	)
	listener.LogIntoLogs(ctx, as, s, i.GuildID, embed)
	return nil
}
