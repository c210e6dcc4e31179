package logging

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

type requestIDKey struct{}

// Init configures the process-wide logger. JSON output everywhere so the
// collector can index fields; level comes from config.
func Init(level, environment string) {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if environment != "" {
		log.AddHook(&fieldHook{key: "env", value: environment})
	}
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}

// WithRequestID stores a request ID for retrieval by FromContext.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request ID from a context, or "".
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// FromContext returns an entry carrying the request ID when one is present.
func FromContext(ctx context.Context) *logrus.Entry {
	if rid := RequestID(ctx); rid != "" {
		return log.WithField("request_id", rid)
	}
	return logrus.NewEntry(log)
}

type fieldHook struct {
	key   string
	value string
}

func (h *fieldHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fieldHook) Fire(e *logrus.Entry) error {
	e.Data[h.key] = h.value
	return nil
}
