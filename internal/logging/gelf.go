package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Graylog2/go-gelf/gelf"
)

// GelfHandler forwards slog records to a Graylog GELF endpoint.
type GelfHandler struct {
	writer *gelf.Writer
	host   string
	level  slog.Level
	attrs  []slog.Attr
}

// NewGelfHandler connects a GELF UDP writer to the given address.
func NewGelfHandler(address string, level slog.Level) (*GelfHandler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("connecting GELF writer: %w", err)
	}
	host, err := os.Hostname()
	if err != nil {
		host = "acarshub"
	}
	return &GelfHandler{writer: w, host: host, level: level}, nil
}

// Enabled reports whether the record level passes the handler's floor.
func (h *GelfHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle converts the record to a GELF message and sends it.
func (h *GelfHandler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		extra["_"+a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		extra["_"+a.Key] = a.Value.String()
		return true
	})

	return h.writer.WriteMessage(&gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(r.Time.UnixNano()) / 1e9,
		Level:    gelfLevel(r.Level),
		Extra:    extra,
	})
}

// WithAttrs returns a handler carrying the extra attributes.
func (h *GelfHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &GelfHandler{writer: h.writer, host: h.host, level: h.level, attrs: merged}
}

// WithGroup is a no-op; GELF extras are flat.
func (h *GelfHandler) WithGroup(string) slog.Handler {
	return h
}

// gelfLevel maps slog levels onto syslog severities.
func gelfLevel(level slog.Level) int32 {
	switch {
	case level >= slog.LevelError:
		return 3
	case level >= slog.LevelWarn:
		return 4
	case level >= slog.LevelInfo:
		return 6
	default:
		return 7
	}
}
