package model

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// One row per guild per setting key
type GuildSetting struct {
	bun.BaseModel `bun:"table:guild_settings"`

	GuildID string `bun:"guild_id,pk"`    // required
	Key     string `bun:"setting_key,pk"` // required
	Value   string `bun:"value,notnull"`
}

func (g *GuildSetting) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case g.GuildID == "":
		return fmt.Errorf("(*GuildSetting).Upsert: guild id is blank")
	case g.Key == "":
		return fmt.Errorf("(*GuildSetting).Upsert: key is blank")
	}

	if _, err := db.NewInsert().
		Model(g).
		On("CONFLICT (guild_id, setting_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*GuildSetting).Upsert: %w", err)
	}

	return nil
}
