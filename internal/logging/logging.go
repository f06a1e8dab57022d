// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the zerolog logger with the specified debug mode and output format.
func InitLogger(debug, human bool) {
	InitLoggerTo(os.Stdout, debug, human)
}

// InitLoggerTo is InitLogger writing to w.
func InitLoggerTo(w io.Writer, debug, human bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano          // always initialize base logger with timestamp.
	base := zerolog.New(w).With().Timestamp().Logger() // initialize base logger.
	if human {
		log.Logger = base.Output(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339Nano,
		}) // select output format.
	} else {
		log.Logger = base // use JSON logger.
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel) // set debug level.
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel) // set info level.
	}
}

// LogRequest logs a received pool command with structured fields.
func LogRequest(
	clientIP string,
	command string,
	payload string,
	activeConns int,
) {
	log.Info().
		Str("event", "request_received").
		Str("client_ip", clientIP).
		Str("command", command).
		Str("payload", payload).
		Int("active_connections", activeConns).
		Msg("received command")
}

// LogResponse logs a sent response with structured fields.
func LogResponse(
	clientIP string,
	command string,
	responseCommand string,
	status string,
	duration time.Duration,
) {
	log.Info().
		Str("event", "response_sent").
		Str("client_ip", clientIP).
		Str("command", command).
		Str("response_command", responseCommand).
		Str("status", status).
		Dur("duration", duration).
		Msg("sent response")
}
