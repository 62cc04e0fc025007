package main

import (
	"guildbot/src-server/handler"
	"guildbot/src-server/handler/settings_handler"
	"guildbot/src-server/listener"
	"guildbot/src-server/metric"
	"guildbot/src-server/route"
	"guildbot/src-server/utils"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	// There are 3 important things (and others) inside the AppState:
	// - appCmdInfo: a map of all slash commands
	// - appCmdHandler: a map of all slash command handlers
	// - msgComponentHandler: button handlers, keyed by custom ID prefix
	as := utils.NewAppState()

	// injecting interaction handlers into AppState
	settings_handler.Init(as)
	handler.Level(as)
	handler.Ping(as)

	// gateway events that aren't interactions
	listener.Init(as)

	// tell discordgo how to handle interactions from Discord
	as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		execute := func(kind, id string, fn utils.InteractionHandler, ok bool) {
			if ok {
				err := fn(s, i)
				metric.ObserveInteraction(kind, id, err)
				if err != nil {
					slog.Error("handler error", "kind", kind, "id", id, "error", err.Error())
				}
				return
			}
			if i == nil || i.Interaction == nil {
				return
			}
			if err := utils.InteractRespHiddenReply(s, i, "Expired interaction"); err != nil {
				slog.Warn("can't respond", "error", err.Error())
			}
			username := func(i *discordgo.InteractionCreate) string {
				switch {
				case i.Member != nil && i.Member.User != nil:
					return i.Member.User.Username
				case i.User != nil:
					return i.User.Username
				}
				return "unknown"
			}(i)
			slog.Debug("someone used an expired interaction", "username", username, "kind", kind, "id", id)
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand: // slash commands
			cmdData := i.ApplicationCommandData()
			fn, ok := as.GetAppCmdHandler(cmdData.Name)
			execute("command", cmdData.Name, fn, ok)
		case discordgo.InteractionMessageComponent: // buttons, dropdowns, etc
			componentData := i.MessageComponentData()
			fn, ok := as.GetMsgComponentHandler(componentData.CustomID)
			execute("component", componentData.CustomID, fn, ok)
		default:
			slog.Debug("unhandled interaction type", "type", i.Type.String())
		}
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open discord session", "error", err)
		os.Exit(1)
	}

	// tell Discord what commands we have (w/ appCmdInfo)
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientId(),
		as.Config.GetDiscordGuildID(),
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err.Error())
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	metric.Init(as)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Health(muxer, as)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), route.LogMiddleware(muxer)); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	slog.Info("Gracefully shutting down...")
	as.GracefulShutdown()
}
