package main

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/9seconds/geovisits/enrichlib"
)

type logger struct {
	appLog      zerolog.Logger
	lookupLog   zerolog.Logger
	runLog      zerolog.Logger
	progressLog zerolog.Logger
}

func (l *logger) LookupError(ip string, name string, err error) {
	l.lookupLog.Error().Str("provider", name).Str("ip", ip).Err(err).Msg("")
}

func (l *logger) RunInfo(summary enrichlib.Summary) {
	l.runLog.Info().
		Int("records", summary.Records).
		Int("unique_ips", summary.UniqueIPs).
		Int("invalid_ips", summary.InvalidIPs).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("enriched", summary.Enriched).
		Msg(summary.String())
}

// ProgressObserver traces a progress of the run at debug level.
func (l *logger) ProgressObserver() enrichlib.Observer {
	return enrichlib.ObserverFuncs{
		OnProgress: func(event enrichlib.Progress) {
			l.progressLog.Debug().
				Str("ip", event.IP).
				Int("completed", event.Completed).
				Int("total", event.Total).
				Msg("")
		},
	}
}

func newLogger(w io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	newLog := func(eventName string) zerolog.Logger {
		return zerolog.New(w).Level(level).With().Timestamp().Str("event_name", eventName).Logger()
	}

	return &logger{
		appLog:      newLog("app"),
		lookupLog:   newLog("lookup"),
		runLog:      newLog("run"),
		progressLog: newLog("progress"),
	}
}
