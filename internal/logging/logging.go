package logging

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Setup configures the standard logrus logger. format is "json" or "text";
// unknown levels fall back to info.
func Setup(level, format string, out io.Writer) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	if strings.EqualFold(strings.TrimSpace(format), "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, PadLevelText: true})
	}
	if out != nil {
		logrus.SetOutput(out)
	}
}

// WithRequestID stores a fresh request id in ctx.
func WithRequestID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, requestIDKey, id), id
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// FromContext returns the standard logger, tagged with the request id when
// one is present.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logrus.StandardLogger())
	if id := RequestID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}

// Component is FromContext tagged with a component name.
func Component(ctx context.Context, name string) *logrus.Entry {
	return FromContext(ctx).WithField("component", name)
}
