// Package testutil builds offline discordgo sessions and app states for tests.
//
// Every REST call made through the session is recorded instead of sent;
// message creation answers with a fixed message ID so callers can persist it.
package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"guildbot/src-server/model"
	"guildbot/src-server/settings"
	"guildbot/src-server/utils"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	BotID     = "bot"
	GuildID   = "g1"
	MessageID = "m1"
)

type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Recorder is an http.RoundTripper that answers every request with 200.
type Recorder struct {
	mu       sync.Mutex
	requests []Request
}

func (r *Recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	r.mu.Lock()
	r.requests = append(r.requests, Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Body:   body,
	})
	r.mu.Unlock()

	respBody := "{}"
	if req.Method == http.MethodPost && strings.HasSuffix(req.URL.Path, "/messages") {
		respBody = `{"id":"` + MessageID + `"}`
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(respBody)),
		Request:    req,
	}, nil
}

func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Find returns the requests whose path contains fragment.
func (r *Recorder) Find(method, fragment string) []Request {
	found := make([]Request, 0)
	for _, req := range r.Requests() {
		if req.Method == method && strings.Contains(req.Path, fragment) {
			found = append(found, req)
		}
	}
	return found
}

// Replies decodes every interaction callback sent so far.
func (r *Recorder) Replies(t *testing.T) []discordgo.InteractionResponse {
	t.Helper()
	replies := make([]discordgo.InteractionResponse, 0)
	for _, req := range r.Find(http.MethodPost, "/callback") {
		var resp discordgo.InteractionResponse
		if err := json.Unmarshal(req.Body, &resp); err != nil {
			t.Fatalf("can't decode interaction response %s: %v", req.Body, err)
		}
		replies = append(replies, resp)
	}
	return replies
}

// LastReply is the content of the latest interaction callback or follow-up edit.
func (r *Recorder) LastReply(t *testing.T) string {
	t.Helper()
	content := ""
	for _, req := range r.Requests() {
		switch {
		case req.Method == http.MethodPost && strings.HasSuffix(req.Path, "/callback"):
			var resp discordgo.InteractionResponse
			if err := json.Unmarshal(req.Body, &resp); err != nil {
				t.Fatalf("can't decode interaction response %s: %v", req.Body, err)
			}
			if resp.Data != nil {
				content = resp.Data.Content
			}
		case req.Method == http.MethodPatch && strings.HasSuffix(req.Path, "/messages/@original"):
			var edit struct {
				Content string `json:"content"`
			}
			if err := json.Unmarshal(req.Body, &edit); err != nil {
				t.Fatalf("can't decode webhook edit %s: %v", req.Body, err)
			}
			content = edit.Content
		}
	}
	return content
}

// NewSession returns a session that never touches the network. Its state
// knows one guild where @everyone may view and send in every channel.
func NewSession(t *testing.T) (*discordgo.Session, *Recorder) {
	t.Helper()
	s, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatal(err)
	}
	recorder := new(Recorder)
	s.Client = &http.Client{Transport: recorder}
	s.State.User = &discordgo.User{ID: BotID, Username: "guildbot", Bot: true}

	if err := s.State.GuildAdd(&discordgo.Guild{
		ID:      GuildID,
		Name:    "Test Guild",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{
				ID:          GuildID,
				Name:        "@everyone",
				Permissions: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages,
			},
		},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.State.MemberAdd(&discordgo.Member{
		GuildID: GuildID,
		User:    s.State.User,
	}); err != nil {
		t.Fatal(err)
	}
	return s, recorder
}

// AddChannel puts a text channel into the session state. Denied permissions
// are applied to @everyone through an overwrite.
func AddChannel(t *testing.T, s *discordgo.Session, channelID string, channelType discordgo.ChannelType, deny int64) *discordgo.Channel {
	t.Helper()
	channel := &discordgo.Channel{
		ID:      channelID,
		GuildID: GuildID,
		Name:    channelID,
		Type:    channelType,
	}
	if deny != 0 {
		channel.PermissionOverwrites = []*discordgo.PermissionOverwrite{
			{
				ID:   GuildID,
				Type: discordgo.PermissionOverwriteTypeRole,
				Deny: deny,
			},
		}
	}
	if err := s.State.ChannelAdd(channel); err != nil {
		t.Fatal(err)
	}
	return channel
}

// NewDB opens a private in-memory database with the schema in place.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })

	if err := model.CreateSchema(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

// NewAppState wires an AppState around NewDB and NewSession.
func NewAppState(t *testing.T) (*utils.AppState, *discordgo.Session, *Recorder) {
	t.Helper()
	bundb := NewDB(t)
	store, err := settings.NewStore(bundb, 64, nil)
	if err != nil {
		t.Fatal(err)
	}
	as := utils.NewBareAppState(bundb, store)
	s, recorder := NewSession(t)
	as.DgSession = s
	return as, s, recorder
}
