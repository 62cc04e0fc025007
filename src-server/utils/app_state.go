package utils

import (
	"context"
	"database/sql"
	"guildbot/src-server/model"
	"guildbot/src-server/settings"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate) error

type AppState struct {
	Config      *Config
	RawDB       *sql.DB
	BunDB       *bun.DB
	DgSession   *discordgo.Session
	Settings    *settings.Store
	MetricChans *Metric

	startTime time.Time

	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]InteractionHandler
	// same as above but for msg components (buttons, dropdowns, etc),
	// keyed by the custom ID prefix before the first ":"
	msgComponentHandler map[string]InteractionHandler

	mu sync.RWMutex

	AppCloseSignalChan     chan os.Signal
	gracefulShutdownChans  []*chan struct{}
	gracefulShutdownChanMu sync.Mutex
}

// NewBareAppState wraps already opened dependencies. Config and DgSession
// are left nil; nothing is read from env.
func NewBareAppState(bunDB *bun.DB, store *settings.Store) *AppState {
	as := &AppState{
		BunDB:               bunDB,
		Settings:            store,
		startTime:           time.Now(),
		appCmdInfo:          make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:       make(map[string]InteractionHandler),
		msgComponentHandler: make(map[string]InteractionHandler),
		MetricChans:         NewMetric(),
		AppCloseSignalChan:  make(chan os.Signal, 1),
	}
	if bunDB != nil {
		as.RawDB = bunDB.DB
	}
	return as
}

func NewAppState() *AppState {
	as := NewBareAppState(nil, nil)

	// env
	as.Config = NewConfig()

	// database
	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, "file:"+as.Config.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	as.RawDB.SetMaxIdleConns(8)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if err := model.CreateSchema(context.Background(), as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	as.Settings, err = settings.NewStore(as.BunDB, as.Config.GetSettingsCacheSize(), as.MetricChans)
	if err != nil {
		slog.Error("can't create settings store", "error", err)
		os.Exit(1)
	}

	// discord
	as.DgSession, err = discordgo.New("Bot " + as.Config.GetDiscordAppToken())
	if err != nil {
		slog.Error("can't create discord session", "error", err)
		os.Exit(1)
	}
	as.DgSession.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return as
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime).Round(time.Second)
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo[id] = info
}

func (as *AppState) AddAppCmdHandler(id string, handler InteractionHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (InteractionHandler, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

func (as *AppState) AddMsgComponentHandler(prefix string, handler InteractionHandler) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.msgComponentHandler[prefix] = handler
}

// GetMsgComponentHandler looks up the handler by the part of the
// custom ID before the first ":".
func (as *AppState) GetMsgComponentHandler(customID string) (InteractionHandler, bool) {
	prefix, _, _ := strings.Cut(customID, ":")
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.msgComponentHandler[prefix]
	return handler, ok
}

func (as *AppState) IterateAppCmdInfo(fn func(k string, v *discordgo.ApplicationCommand)) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	for k, v := range as.appCmdInfo {
		fn(k, v)
	}
}

// NukeAppCmdInfo drops the command schemas once they're sent to Discord.
func (as *AppState) NukeAppCmdInfo() {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}

func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownChanMu.Lock()
	defer as.gracefulShutdownChanMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, &ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownChanMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(*ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownChanMu.Unlock()

	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if as.BunDB != nil {
		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	}
}
