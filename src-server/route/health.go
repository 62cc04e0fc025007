package route

import (
	"encoding/json"
	"guildbot/src-server/utils"
	"log/slog"
	"net/http"
	"time"
)

func Health(muxer *http.ServeMux, as *utils.AppState) {
	type HealthRespBody struct {
		Status                   string `json:"status"`
		Uptime                   string `json:"uptime"`
		DatabaseLatencyMicrosec  int64  `json:"databaseLatencyMicrosec"`
		HeartbeatLatencyMillisec int64  `json:"heartbeatLatencyMillisec"`
		Error                    string `json:"error,omitempty"`
	}

	muxer.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		body := HealthRespBody{
			Status: "ok",
			Uptime: as.GetUptime().String(),
		}
		status := http.StatusOK

		startTimer := time.Now()
		if err := as.BunDB.PingContext(r.Context()); err != nil {
			body.Status = "unhealthy"
			body.Error = err.Error()
			status = http.StatusServiceUnavailable
			slog.Error("database is unreachable", "error", err)
		}
		body.DatabaseLatencyMicrosec = time.Since(startTimer).Microseconds()
		if as.DgSession != nil {
			body.HeartbeatLatencyMillisec = as.DgSession.HeartbeatLatency().Milliseconds()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Warn("Health: can't write response", "error", err)
		}
	})
}
