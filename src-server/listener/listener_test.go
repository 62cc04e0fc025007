package listener

import (
	"context"
	"encoding/json"
	"guildbot/src-server/model"
	"guildbot/src-server/settings"
	"guildbot/src-server/testutil"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func sentContents(t *testing.T, recorder *testutil.Recorder, channelID string) []string {
	t.Helper()
	contents := make([]string, 0)
	for _, req := range recorder.Find(http.MethodPost, "/channels/"+channelID+"/messages") {
		var msg struct {
			Content string                    `json:"content"`
			Embeds  []*discordgo.MessageEmbed `json:"embeds"`
		}
		if err := json.Unmarshal(req.Body, &msg); err != nil {
			t.Fatalf("can't decode message %s: %v", req.Body, err)
		}
		if msg.Content == "" && len(msg.Embeds) > 0 {
			contents = append(contents, msg.Embeds[0].Title)
			continue
		}
		contents = append(contents, msg.Content)
	}
	return contents
}

func TestRenderMemberTemplate(t *testing.T) {
	user := &discordgo.User{ID: "111", Username: "alice"}
	testCases := []struct {
		name string
		tmpl string
		want string
	}{
		{"welcome default", DefaultWelcomeMessage, "Welcome to **Guild**, <@111>!"},
		{"goodbye default", DefaultGoodbyeMessage, "**alice** has left the server."},
		{"all placeholders", "{user} {user-mention} {user-id} {server}", "alice <@111> 111 Guild"},
		{"repeated", "{user}{user}", "alicealice"},
		{"unknown placeholder", "hi {nickname}", "hi {nickname}"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderMemberTemplate(tc.tmpl, user, "Guild"); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLogIntoLogs(t *testing.T) {
	as, s, recorder := testutil.NewAppState(t)
	ctx := context.Background()
	testutil.AddChannel(t, s, "logs", discordgo.ChannelTypeGuildText, 0)
	testutil.AddChannel(t, s, "muted", discordgo.ChannelTypeGuildText, discordgo.PermissionSendMessages)

	// case: no logging channel
	LogIntoLogs(ctx, as, s, testutil.GuildID, &discordgo.MessageEmbed{Title: "nothing"})
	if n := len(recorder.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	// case: bot can't write there
	if err := as.Settings.Set(ctx, testutil.GuildID, settings.LoggingChannel, "muted"); err != nil {
		t.Fatal(err)
	}
	LogIntoLogs(ctx, as, s, testutil.GuildID, &discordgo.MessageEmbed{Title: "muted"})
	if n := len(recorder.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	// case: sent
	if err := as.Settings.Set(ctx, testutil.GuildID, settings.LoggingChannel, "logs"); err != nil {
		t.Fatal(err)
	}
	LogIntoLogs(ctx, as, s, testutil.GuildID, &discordgo.MessageEmbed{Title: "hello"})
	got := sentContents(t, recorder, "logs")
	if len(got) != 1 || got[0] != "hello" {
		t.Errorf("expected one embed titled hello, got %v", got)
	}
}

func TestMemberAddAndRemove(t *testing.T) {
	as, s, recorder := testutil.NewAppState(t)
	ctx := context.Background()
	testutil.AddChannel(t, s, "welcome", discordgo.ChannelTypeGuildText, 0)
	testutil.AddChannel(t, s, "logs", discordgo.ChannelTypeGuildText, 0)
	user := &discordgo.User{ID: "111", Username: "alice"}

	// case: nothing configured, nothing sent
	memberAdd(as)(s, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: testutil.GuildID, User: user}})
	if n := len(recorder.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	for key, value := range map[string]string{
		settings.WelcomeChannel: "welcome",
		settings.GoodbyeChannel: "welcome",
		settings.LoggingChannel: "logs",
		settings.GoodbyeMessage: "bye {user} from {server}",
	} {
		if err := as.Settings.Set(ctx, testutil.GuildID, key, value); err != nil {
			t.Fatal(err)
		}
	}

	memberAdd(as)(s, &discordgo.GuildMemberAdd{Member: &discordgo.Member{GuildID: testutil.GuildID, User: user}})
	memberRemove(as)(s, &discordgo.GuildMemberRemove{Member: &discordgo.Member{GuildID: testutil.GuildID, User: user}})

	welcome := sentContents(t, recorder, "welcome")
	want := []string{"Welcome to **Test Guild**, <@111>!", "bye alice from Test Guild"}
	if len(welcome) != len(want) {
		t.Fatalf("expected %v, got %v", want, welcome)
	}
	for i := range want {
		if welcome[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], welcome[i])
		}
	}

	logs := sentContents(t, recorder, "logs")
	if len(logs) != 2 || logs[0] != "Member joined" || logs[1] != "Member left" {
		t.Errorf("unexpected log embeds: %v", logs)
	}
}

func TestAwardXP(t *testing.T) {
	as, _, _ := testutil.NewAppState(t)
	ctx := context.Background()
	if err := as.Settings.Set(ctx, testutil.GuildID, settings.LevelingXPPerLevel, "5"); err != nil {
		t.Fatal(err)
	}

	level, leveledUp, err := awardXP(ctx, as, testutil.GuildID, "111", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if level != 0 || leveledUp {
		t.Errorf("first message: expected level 0 without level up, got %d %v", level, leveledUp)
	}

	level, leveledUp, err = awardXP(ctx, as, testutil.GuildID, "111", "hello again")
	if err != nil {
		t.Fatal(err)
	}
	if level != 1 || !leveledUp {
		t.Errorf("second message: expected level up to 1, got %d %v", level, leveledUp)
	}

	level, leveledUp, err = awardXP(ctx, as, testutil.GuildID, "111", "third")
	if err != nil {
		t.Fatal(err)
	}
	if level != 1 || leveledUp {
		t.Errorf("third message: expected level 1 without level up, got %d %v", level, leveledUp)
	}
}

func TestMessageCreateAnnouncesLevelUp(t *testing.T) {
	as, s, recorder := testutil.NewAppState(t)
	ctx := context.Background()
	if err := as.Settings.Set(ctx, testutil.GuildID, settings.LevelingXPPerLevel, "3"); err != nil {
		t.Fatal(err)
	}
	newMessage := func(author *discordgo.User) *discordgo.MessageCreate {
		return &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "1",
			GuildID:   testutil.GuildID,
			ChannelID: "chat",
			Author:    author,
			Content:   "hi",
		}}
	}

	// case: bots don't earn XP
	messageCreate(as)(s, newMessage(&discordgo.User{ID: "222", Bot: true}))
	if n := len(recorder.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}

	// case: no leveling channel, announce where the message was sent
	messageCreate(as)(s, newMessage(&discordgo.User{ID: "111"}))
	got := sentContents(t, recorder, "chat")
	if len(got) != 1 || got[0] != "<@111> has reached level 1!" {
		t.Errorf("unexpected announcement: %v", got)
	}

	// case: leveling channel set
	if err := as.Settings.Set(ctx, testutil.GuildID, settings.LevelingChannel, "levels"); err != nil {
		t.Fatal(err)
	}
	messageCreate(as)(s, newMessage(&discordgo.User{ID: "111"}))
	got = sentContents(t, recorder, "levels")
	if len(got) != 1 || got[0] != "<@111> has reached level 2!" {
		t.Errorf("unexpected announcement: %v", got)
	}
}

func TestMessageDeleteForgetsPanel(t *testing.T) {
	as, s, _ := testutil.NewAppState(t)
	ctx := context.Background()
	panel := &model.ReactionRolePanel{
		ID:        "p1",
		GuildID:   testutil.GuildID,
		ChannelID: "c1",
		MessageID: "m1",
		Mode:      model.ReactionRoleModeNormal,
		Entries:   []*model.ReactionRoleEntry{{RoleID: "r1"}},
	}
	if err := panel.Insert(ctx, as.BunDB); err != nil {
		t.Fatal(err)
	}

	// case: some other message
	messageDelete(as)(s, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m2", GuildID: testutil.GuildID}})
	if _, err := model.GetReactionRolePanelByMessage(ctx, as.BunDB, "m1"); err != nil {
		t.Fatalf("expected the panel to survive, got %v", err)
	}

	messageDelete(as)(s, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "m1", GuildID: testutil.GuildID}})
	if _, err := model.GetReactionRolePanelByMessage(ctx, as.BunDB, "m1"); err == nil {
		t.Error("expected the panel to be deleted")
	}
}
