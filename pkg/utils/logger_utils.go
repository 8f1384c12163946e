package utils

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader is echoed on every response and attached to the access log line.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// InitLogger configures the global zerolog logger.
// format "json" writes plain JSON lines, anything else uses the console writer.
func InitLogger(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		parsedLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsedLevel)

	var logger zerolog.Logger
	if strings.EqualFold(format, "json") {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	log.Logger = logger.With().Timestamp().Str("service", "dream_build_backend").Logger()

	log.Info().Str("level", parsedLevel.String()).Msg("Logger initialized")
}

// GinLogger assigns a request id (reusing the caller's X-Request-ID when present)
// and writes one access log line per request.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if len(c.Errors) > 0 {
			event = event.Str("gin_errors", c.Errors.String())
		}
		event.Str(requestIDKey, requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status_code", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request processed")
	}
}

// RequestID returns the id GinLogger assigned to the request, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func withFields(event *zerolog.Event, fields []map[string]interface{}) *zerolog.Event {
	for _, f := range fields {
		event = event.Fields(f)
	}
	return event
}

// LogError logs err with message. A nil err is ignored.
func LogError(err error, message string, fields ...map[string]interface{}) {
	if err == nil {
		return
	}
	withFields(log.Error().Err(err), fields).Msg(message)
}

func LogWarn(message string, fields ...map[string]interface{}) {
	withFields(log.Warn(), fields).Msg(message)
}

func LogInfo(message string, fields ...map[string]interface{}) {
	withFields(log.Info(), fields).Msg(message)
}

func LogDebug(message string, fields ...map[string]interface{}) {
	withFields(log.Debug(), fields).Msg(message)
}
