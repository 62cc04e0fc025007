package utils

import "time"

type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
	}
}

// Observe* drops the sample when the channel is full.

func (m *Metric) ObserveDatabaseRead(startTimer time.Time) {
	m.observe(m.DatabaseRead, startTimer)
}

func (m *Metric) ObserveDatabaseWrite(startTimer time.Time) {
	m.observe(m.DatabaseWrite, startTimer)
}

func (m *Metric) ObserveDiscordSendMessage(startTimer time.Time) {
	m.observe(m.DiscordSendMessage, startTimer)
}

func (m *Metric) observe(ch chan float64, startTimer time.Time) {
	if m == nil {
		return
	}
	select {
	case ch <- float64(time.Since(startTimer).Microseconds()):
	default:
	}
}
