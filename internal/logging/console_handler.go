package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"
)

// consoleHandler renders one record per line:
//
//	15:04:05 INFO  [musicbrainz] artist matched entity_id=12 similarity=0.94
//
// The component/provider attribute is promoted into the bracket prefix.
type consoleHandler struct {
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]slog.Attr, 0, record.NumAttrs()+len(h.attrs))
	kvs = append(kvs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		kvs = append(kvs, attr)
		return true
	})

	var subject string
	filtered := kvs[:0]
	for _, attr := range kvs {
		key := h.qualify(attr.Key)
		if (key == FieldComponent || key == FieldProvider) && subject == "" {
			subject = attr.Value.String()
			continue
		}
		filtered = append(filtered, attr)
	}

	var buf bytes.Buffer
	buf.Grow(128 + len(filtered)*24)
	buf.WriteString(timestamp.Format("15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	if subject != "" {
		buf.WriteByte('[')
		buf.WriteString(subject)
		buf.WriteString("] ")
	}
	buf.WriteString(strings.TrimSpace(record.Message))
	for _, attr := range filtered {
		buf.WriteByte(' ')
		buf.WriteString(h.qualify(attr.Key))
		buf.WriteByte('=')
		buf.WriteString(attr.Value.String())
	}
	buf.WriteByte('\n')

	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if strings.TrimSpace(name) == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *consoleHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}
