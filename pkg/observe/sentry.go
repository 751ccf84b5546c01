package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	sentryMaxErrorDepth  = 9
	sentryFlushTimeout   = 5 * time.Second
	sentryRequestTimeout = 5 * time.Second
)

// SentryHook is an io.Writer that can be attached to the zap logger; it
// forwards error-level entries to Sentry and passes everything else through.
type SentryHook struct {
	appZone string
	appName string
}

func NewSentryHook(appZone, appName, dsn string, isDebug bool) *SentryHook {
	if dsn == "" {
		log.Println("sentry hook: no DSN, events will be dropped")
	}

	transport := sentry.NewHTTPTransport()
	transport.Timeout = sentryRequestTimeout

	if err := sentry.Init(sentry.ClientOptions{
		AttachStacktrace: true,
		Debug:            isDebug,
		Dsn:              dsn,
		Environment:      appZone,
		MaxErrorDepth:    sentryMaxErrorDepth,
		ServerName:       appName,
		Transport:        transport,
	}); err != nil {
		log.Println("sentry hook init error:", err.Error())
	}

	return &SentryHook{
		appZone: appZone,
		appName: appName,
	}
}

func (h *SentryHook) Write(p []byte) (int, error) {
	var entry struct {
		Level      string `json:"level"`
		Message    string `json:"msg"`
		Error      string `json:"error"`
		CallerFile string `json:"caller_file"`
		CallerLine int    `json:"caller_line"`
		CallerFunc string `json:"caller_func"`
		Stack      string `json:"stack"`
	}
	if err := json.Unmarshal(p, &entry); err != nil {
		log.Println(errors.Wrap(err, "sentry hook: unmarshal log entry").Error())
		return len(p), nil
	}

	level, err := zapcore.ParseLevel(entry.Level)
	if err != nil || entry.Message == "" {
		return len(p), nil
	}

	switch level {
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		event := sentry.NewEvent()
		event.Environment = h.appZone
		event.Level = mapLevel(level)
		event.Message = entry.Message
		event.Extra["AppName"] = h.appName
		event.Extra["Error"] = entry.Error
		event.Extra["CallerFile"] = entry.CallerFile
		event.Extra["CallerLine"] = entry.CallerLine
		event.Extra["CallerFunc"] = entry.CallerFunc
		event.Extra["Stack"] = entry.Stack
		event.Exception = append(event.Exception, sentry.Exception{
			Type:       entry.Message,
			Value:      entry.Error,
			Stacktrace: sentry.NewStacktrace(),
		})
		sentry.CaptureEvent(event)
	}

	return len(p), nil
}

// Flush blocks until buffered events are sent, up to the flush timeout.
func (h *SentryHook) Flush() {
	sentry.Flush(sentryFlushTimeout)
}

func mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel:
		return sentry.LevelFatal
	}
	return sentry.LevelDebug
}
