package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type ReactionRoleMode string

const (
	ReactionRoleModeNormal ReactionRoleMode = "normal"
	ReactionRoleModeAdd    ReactionRoleMode = "add"
	ReactionRoleModeRemove ReactionRoleMode = "remove"
	ReactionRoleModeSingle ReactionRoleMode = "single"
)

func (m ReactionRoleMode) Valid() bool {
	switch m {
	case ReactionRoleModeNormal, ReactionRoleModeAdd, ReactionRoleModeRemove, ReactionRoleModeSingle:
		return true
	}
	return false
}

// A message posted by the bot that carries one button per role
type ReactionRolePanel struct {
	bun.BaseModel `bun:"table:reaction_role_panels"`

	ID        string           `bun:"id,pk"`                     // required
	GuildID   string           `bun:"guild_id,notnull"`          // required
	ChannelID string           `bun:"channel_id,notnull"`        // required
	MessageID string           `bun:"message_id,notnull,unique"` // required
	Mode      ReactionRoleMode `bun:"mode,notnull"`              // required
	CreatedAt int64            `bun:"created_at,notnull"`

	Entries []*ReactionRoleEntry `bun:"rel:has-many,join:id=panel_id"`
}

// Each panel has many roles, kept in the order they were given
type ReactionRoleEntry struct {
	bun.BaseModel `bun:"table:reaction_role_entries"`

	PanelID  string `bun:"panel_id,pk"` // required
	RoleID   string `bun:"role_id,pk"`  // required
	Position int    `bun:"position,notnull"`
}

// Insert writes the panel and its entries in one transaction.
func (p *ReactionRolePanel) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("(*ReactionRolePanel).Insert: id is blank")
	case p.GuildID == "":
		return fmt.Errorf("(*ReactionRolePanel).Insert: guild id is blank")
	case p.MessageID == "":
		return fmt.Errorf("(*ReactionRolePanel).Insert: message id is blank")
	case !p.Mode.Valid():
		return fmt.Errorf("(*ReactionRolePanel).Insert: invalid mode %q", p.Mode)
	case len(p.Entries) == 0:
		return fmt.Errorf("(*ReactionRolePanel).Insert: no roles")
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().UTC().Unix()
	}
	for i, entry := range p.Entries {
		entry.PanelID = p.ID
		entry.Position = i
	}

	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(p).
			Exec(ctx); err != nil {
			return fmt.Errorf("transaction: can't insert panel: %w", err)
		}
		if _, err := tx.NewInsert().
			Model(&p.Entries).
			Exec(ctx); err != nil {
			return fmt.Errorf("transaction: can't insert entries: %w", err)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("(*ReactionRolePanel).Insert: %w", err)
	}

	return nil
}

// RoleIDs returns the role IDs of the panel in button order.
func (p *ReactionRolePanel) RoleIDs() []string {
	roleIDs := make([]string, len(p.Entries))
	for i, entry := range p.Entries {
		roleIDs[i] = entry.RoleID
	}
	return roleIDs
}

// GetReactionRolePanelByMessage loads a panel and its entries, ordered by position.
func GetReactionRolePanelByMessage(ctx context.Context, db bun.IDB, messageID string) (*ReactionRolePanel, error) {
	panel := new(ReactionRolePanel)
	if err := db.NewSelect().
		Model(panel).
		Relation("Entries", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("message_id = ?", messageID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("GetReactionRolePanelByMessage: %w", err)
	}
	return panel, nil
}

// DeleteReactionRolePanelByMessage removes the panel posted as messageID and
// its entries. It reports whether there was such a panel.
func DeleteReactionRolePanelByMessage(ctx context.Context, db bun.IDB, messageID string) (bool, error) {
	deleted := false
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		panel := new(ReactionRolePanel)
		if err := tx.NewSelect().
			Model(panel).
			Column("id").
			Where("message_id = ?", messageID).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("transaction: can't find panel: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*ReactionRoleEntry)(nil)).
			Where("panel_id = ?", panel.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("transaction: can't delete entries: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*ReactionRolePanel)(nil)).
			Where("id = ?", panel.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("transaction: can't delete panel: %w", err)
		}
		deleted = true
		return nil
	}); err != nil {
		return false, fmt.Errorf("DeleteReactionRolePanelByMessage: %w", err)
	}
	return deleted, nil
}
