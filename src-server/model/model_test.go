package model_test

import (
	"context"
	"database/sql"
	"guildbot/src-server/model"
	"testing"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every connection gets its own :memory: database
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })

	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

func TestGuildSettingUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	setting := model.GuildSetting{GuildID: "g1", Key: "loggingChannel", Value: "c1"}
	if err := setting.Upsert(ctx, db); err != nil {
		t.Fatal(err)
	}
	setting.Value = "c2"
	if err := setting.Upsert(ctx, db); err != nil {
		t.Fatal(err)
	}

	var rows []model.GuildSetting
	if err := db.NewSelect().Model(&rows).Where("guild_id = ?", "g1").Scan(ctx); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Value != "c2" {
		t.Errorf("expected value c2, got %s", rows[0].Value)
	}

	// stored under the setting_key column
	var value string
	if err := db.NewRaw(
		"SELECT value FROM guild_settings WHERE guild_id = ? AND setting_key = ?", "g1", "loggingChannel",
	).Scan(ctx, &value); err != nil {
		t.Fatal(err)
	}
	if value != "c2" {
		t.Errorf("expected value c2, got %s", value)
	}

	// case: missing key
	if err := (&model.GuildSetting{GuildID: "g1"}).Upsert(ctx, db); err == nil {
		t.Error("expected error for blank key")
	}
}

func TestReactionRolePanel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	panel := &model.ReactionRolePanel{
		ID:        uuid.NewString(),
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		Mode:      model.ReactionRoleModeSingle,
		Entries: []*model.ReactionRoleEntry{
			{RoleID: "r3"},
			{RoleID: "r1"},
			{RoleID: "r2"},
		},
	}
	if err := panel.Insert(ctx, db); err != nil {
		t.Fatal(err)
	}

	got, err := model.GetReactionRolePanelByMessage(ctx, db, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Mode != model.ReactionRoleModeSingle {
		t.Errorf("expected mode single, got %s", got.Mode)
	}
	roleIDs := got.RoleIDs()
	want := []string{"r3", "r1", "r2"}
	if len(roleIDs) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(roleIDs))
	}
	for i := range want {
		if roleIDs[i] != want[i] {
			t.Errorf("role %d: expected %s, got %s", i, want[i], roleIDs[i])
		}
	}

	// case: unknown message
	if _, err := model.GetReactionRolePanelByMessage(ctx, db, "nope"); err == nil {
		t.Error("expected error for unknown message")
	}

	// case: invalid mode
	bad := &model.ReactionRolePanel{
		ID:        uuid.NewString(),
		GuildID:   "g1",
		MessageID: "m2",
		Mode:      "sometimes",
		Entries:   []*model.ReactionRoleEntry{{RoleID: "r1"}},
	}
	if err := bad.Insert(ctx, db); err == nil {
		t.Error("expected error for invalid mode")
	}

	// case: delete with the message
	deleted, err := model.DeleteReactionRolePanelByMessage(ctx, db, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Error("expected the panel to be deleted")
	}
	if _, err := model.GetReactionRolePanelByMessage(ctx, db, "m1"); err == nil {
		t.Error("expected the panel to be gone")
	}
	entries, err := db.NewSelect().
		Model((*model.ReactionRoleEntry)(nil)).
		Where("panel_id = ?", panel.ID).
		Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if entries != 0 {
		t.Errorf("expected entries to be deleted, %d left", entries)
	}
	if deleted, err = model.DeleteReactionRolePanelByMessage(ctx, db, "m1"); err != nil || deleted {
		t.Errorf("expected nothing to delete, got deleted=%v err=%v", deleted, err)
	}
}

func TestMemberXP(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	xp, err := model.GetXP(ctx, db, "g1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if xp != 0 {
		t.Errorf("expected 0 xp for new member, got %d", xp)
	}

	if xp, err = model.AddXP(ctx, db, "g1", "u1", 3); err != nil {
		t.Fatal(err)
	}
	if xp != 3 {
		t.Errorf("expected 3 xp, got %d", xp)
	}
	if xp, err = model.AddXP(ctx, db, "g1", "u1", 5); err != nil {
		t.Fatal(err)
	}
	if xp != 8 {
		t.Errorf("expected 8 xp, got %d", xp)
	}

	// other guilds are separate
	if xp, err = model.GetXP(ctx, db, "g2", "u1"); err != nil {
		t.Fatal(err)
	}
	if xp != 0 {
		t.Errorf("expected 0 xp in other guild, got %d", xp)
	}
}
