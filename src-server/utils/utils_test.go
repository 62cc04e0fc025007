package utils_test

import (
	"guildbot/src-server/utils"
	"reflect"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestLeafOptions(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Type: discordgo.ApplicationCommandOptionSubCommandGroup,
			Name: "logging",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Name: "channel",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Value: "123"},
					},
				},
			},
		},
	}

	path, optionMap := utils.LeafOptions(options)
	if !reflect.DeepEqual(path, []string{"logging", "channel"}) {
		t.Errorf("unexpected path: %v", path)
	}
	channelID, ok := utils.StringOption(optionMap, "channel")
	if !ok || channelID != "123" {
		t.Errorf("expected channel 123, got %q (ok=%v)", channelID, ok)
	}
	if _, ok := utils.StringOption(optionMap, "missing"); ok {
		t.Error("expected missing option to be absent")
	}
}

func TestLeafOptionsTopLevelSubcommand(t *testing.T) {
	path, optionMap := utils.LeafOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "view"},
	})
	if !reflect.DeepEqual(path, []string{"view"}) {
		t.Errorf("unexpected path: %v", path)
	}
	if len(optionMap) != 0 {
		t.Errorf("expected no options, got %v", optionMap)
	}
}

func TestIntOption(t *testing.T) {
	optionMap := utils.OptionMap{
		"xp": {Type: discordgo.ApplicationCommandOptionInteger, Name: "xp", Value: float64(250)},
	}
	xp, ok := utils.IntOption(optionMap, "xp")
	if !ok || xp != 250 {
		t.Errorf("expected 250, got %d (ok=%v)", xp, ok)
	}
}

func TestTitle(t *testing.T) {
	if got := utils.Title(" logging "); got != "Logging" {
		t.Errorf("expected Logging, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	testCases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 80, "short"},
		{"exactly", 7, "exactly"},
		{"toolong", 4, "too…"},
		{"héllo wörld", 5, "héll…"},
		{"anything", 0, ""},
	}
	for _, tc := range testCases {
		if got := utils.Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestMetricNeverBlocks(t *testing.T) {
	m := utils.NewMetric()
	done := make(chan struct{})
	go func() {
		// nobody reads the channels, so most samples are dropped
		for range 100 {
			m.ObserveDatabaseRead(time.Now())
			m.ObserveDatabaseWrite(time.Now())
			m.ObserveDiscordSendMessage(time.Now())
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("metric observation blocked")
	}

	var nilMetric *utils.Metric
	nilMetric.ObserveDatabaseRead(time.Now())
}

func TestCanSend(t *testing.T) {
	testCases := []struct {
		name  string
		perms int64
		want  bool
	}{
		{"nothing", 0, false},
		{"view only", discordgo.PermissionViewChannel, false},
		{"send only", discordgo.PermissionSendMessages, false},
		{"view and send", discordgo.PermissionViewChannel | discordgo.PermissionSendMessages, true},
		{"administrator", discordgo.PermissionAdministrator, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := utils.CanSend(tc.perms); got != tc.want {
				t.Errorf("CanSend(%d) = %v, want %v", tc.perms, got, tc.want)
			}
		})
	}
}

func TestSelfID(t *testing.T) {
	if id := utils.SelfID(nil); id != "" {
		t.Errorf("expected empty id for nil session, got %q", id)
	}
	s, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatal(err)
	}
	if id := utils.SelfID(s); id != "" {
		t.Errorf("expected empty id before READY, got %q", id)
	}
	s.State.User = &discordgo.User{ID: "bot"}
	if id := utils.SelfID(s); id != "bot" {
		t.Errorf("expected bot, got %q", id)
	}
}
