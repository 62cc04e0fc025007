package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type MemberXP struct {
	bun.BaseModel `bun:"table:member_xp"`

	GuildID string `bun:"guild_id,pk"` // required
	UserID  string `bun:"user_id,pk"`  // required
	XP      int64  `bun:"xp,notnull"`
}

// AddXP atomically adds amount to the member's XP and returns the new total.
func AddXP(ctx context.Context, db bun.IDB, guildID, userID string, amount int64) (int64, error) {
	switch {
	case guildID == "":
		return 0, fmt.Errorf("AddXP: guild id is blank")
	case userID == "":
		return 0, fmt.Errorf("AddXP: user id is blank")
	}

	memberXP := &MemberXP{
		GuildID: guildID,
		UserID:  userID,
		XP:      amount,
	}
	if err := db.NewInsert().
		Model(memberXP).
		On("CONFLICT (guild_id, user_id) DO UPDATE").
		Set("xp = member_xp.xp + EXCLUDED.xp").
		Returning("xp").
		Scan(ctx); err != nil {
		return 0, fmt.Errorf("AddXP: %w", err)
	}

	return memberXP.XP, nil
}

// GetXP returns 0 for members that never sent a message.
func GetXP(ctx context.Context, db bun.IDB, guildID, userID string) (int64, error) {
	memberXP := new(MemberXP)
	if err := db.NewSelect().
		Model(memberXP).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("GetXP: %w", err)
	}
	return memberXP.XP, nil
}
