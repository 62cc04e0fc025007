// Package metric exposes the bot's latencies as Prometheus gauges.
//
// Handlers report samples through utils.Metric; the rest is polled.
package metric

import (
	"guildbot/src-server/utils"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guildbot"

func Init(as *utils.AppState) {
	InitWith(as, prometheus.DefaultRegisterer, as.Config.GetMetricCollectionInterval())
}

// InitWith registers every gauge on reg. Pushed gauges drop back to 0
// after two intervals without a sample.
func InitWith(as *utils.AppState, reg prometheus.Registerer, tickerInterval time.Duration) {
	clearTickerInterval := tickerInterval * 2

	fromTicker(as, reg, newGauge(reg, "database_empty_read_microsec", "The latency of an empty database read in microseconds"),
		tickerInterval, func() (float64, error) {
			latency, err := database(as)
			return float64(latency.Microseconds()), err
		})
	fromTicker(as, reg, newGauge(reg, "settings_cache_entries", "The number of guild settings held in the read cache"),
		tickerInterval, func() (float64, error) {
			return float64(as.Settings.CacheLen()), nil
		})
	if as.DgSession != nil {
		fromTicker(as, reg, newGauge(reg, "discord_heartbeat_latency_microsec", "The latency of a discord heartbeat in microseconds"),
			tickerInterval, func() (float64, error) {
				return float64(as.DgSession.HeartbeatLatency().Microseconds()), nil
			})
	}

	fromChan(as, reg, newGauge(reg, "database_read_microsec", "The latency of a database read in microseconds"),
		as.MetricChans.DatabaseRead, clearTickerInterval)
	fromChan(as, reg, newGauge(reg, "database_write_microsec", "The latency of a database write in microseconds"),
		as.MetricChans.DatabaseWrite, clearTickerInterval)
	fromChan(as, reg, newGauge(reg, "discord_send_message_microsec", "The latency of a discord message send in microseconds"),
		as.MetricChans.DiscordSendMessage, clearTickerInterval)
}

func newGauge(reg prometheus.Registerer, name, help string) prometheus.Gauge {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
	fqName := prometheus.BuildFQName(namespace, "", name)
	if err := reg.Register(gauge); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register metric", "name", fqName, "error", err)
			return gauge
		}
	}
	slog.Debug("metric registered", "name", fqName)
	gauge.Set(0)
	return gauge
}

func unregister(reg prometheus.Registerer, gauge prometheus.Gauge) {
	name := gauge.Desc().String()
	switch reg.Unregister(gauge) {
	case true:
		slog.Debug("metric unregistered", "desc", name)
	case false:
		slog.Warn("metric not registered", "desc", name)
	}
}

// fromTicker sets gauge to whatever probe returns, every interval.
func fromTicker(as *utils.AppState, reg prometheus.Registerer, gauge prometheus.Gauge, interval time.Duration, probe func() (float64, error)) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(reg, gauge)
				return
			case <-ticker.C:
				value, err := probe()
				if err != nil {
					slog.Error("can't probe metric", "desc", gauge.Desc().String(), "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

// fromChan keeps gauge at the latest sample received on ch.
func fromChan(as *utils.AppState, reg prometheus.Registerer, gauge prometheus.Gauge, ch <-chan float64, clearInterval time.Duration) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(reg, gauge)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}
