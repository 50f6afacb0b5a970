package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/9seconds/csvgeo/geolib"
)

type logger struct {
	appLog      zerolog.Logger
	lookupLog   zerolog.Logger
	progressLog zerolog.Logger
	requestLog  zerolog.Logger
}

func (l *logger) LookupError(ip string, row int, err error) {
	l.lookupLog.Error().Str("ip", ip).Int("row", row).Err(err).Msg("Cannot resolve IP address")
}

func (l *logger) RateLimited(ip string, row int) {
	l.lookupLog.Warn().Str("ip", ip).Int("row", row).Msg("Rate limit hit")
}

func (l *logger) Progress(processed uint64) {
	l.progressLog.Info().Uint64("processed", processed).Msg("Rows processed")
}

func (l *logger) Complete(counters geolib.RunCounters) {
	l.progressLog.Info().
		Uint64("total", counters.Processed).
		Uint64("success", counters.Success).
		Uint64("failed", counters.Failed).
		Msg("Complete")
}

func newLogger(writer io.Writer, debug bool) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	makeLog := func(eventName string) zerolog.Logger {
		return zerolog.New(writer).
			Level(level).
			With().
			Timestamp().
			Str("event_name", eventName).
			Logger()
	}

	return &logger{
		appLog:      makeLog("app"),
		lookupLog:   makeLog("lookup"),
		progressLog: makeLog("progress"),
		requestLog:  makeLog("request"),
	}
}

func newStderrLogger(debug bool) *logger {
	return newLogger(os.Stderr, debug)
}
