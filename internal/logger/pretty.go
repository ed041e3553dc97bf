package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// PrettyHandler renders records as single colored lines for interactive use:
//
//	15:04:05 INF simulating elements=1024 scale=0.0039
//
// Attributes bound via WithAttrs are formatted once at bind time, so group
// prefixes apply only to attributes added after the WithGroup call. JSON() is
// the right choice for anything piped or collected.
type PrettyHandler struct {
	mu     *sync.Mutex // shared across WithAttrs/WithGroup copies
	w      io.Writer
	level  slog.Leveler
	prefix string // dot-joined open group path
	bound  []byte // preformatted attrs from WithAttrs
}

// NewPrettyHandler creates a PrettyHandler writing to w. Only opts.Level is
// honored; source locations are never printed.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{
		mu: &sync.Mutex{},
		w:  w,
	}
	if opts != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled reports whether records at the given level are written.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.level != nil {
		minLevel = h.level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes one record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if !r.Time.IsZero() {
		buf = append(buf, ansiDim...)
		buf = r.Time.AppendFormat(buf, time.TimeOnly)
		buf = append(buf, ansiReset...)
		buf = append(buf, ' ')
	}

	buf = append(buf, levelTag(r.Level)...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	buf = append(buf, h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, a, h.prefix)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// WithAttrs returns a handler whose records carry the given attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := h.clone()
	for _, a := range attrs {
		nh.bound = appendAttr(nh.bound, a, h.prefix)
	}
	return nh
}

// WithGroup returns a handler that prefixes subsequent attribute keys.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := h.clone()
	nh.prefix = joinKey(h.prefix, name)
	return nh
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		mu:     h.mu,
		w:      h.w,
		level:  h.level,
		prefix: h.prefix,
		bound:  append([]byte(nil), h.bound...),
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return ansiRed + ansiBold + "ERR" + ansiReset
	case l >= slog.LevelWarn:
		return ansiYellow + "WRN" + ansiReset
	case l >= slog.LevelInfo:
		return ansiGreen + "INF" + ansiReset
	default:
		return ansiDim + "DBG" + ansiReset
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// appendAttr appends " key=value" to buf. Groups are flattened into
// dot-separated keys rather than printed with braces.
func appendAttr(buf []byte, a slog.Attr, prefix string) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		childPrefix := prefix
		if a.Key != "" {
			childPrefix = joinKey(prefix, a.Key)
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, ga, childPrefix)
		}
		return buf
	}

	buf = append(buf, ' ')
	buf = append(buf, joinKey(prefix, a.Key)...)
	buf = append(buf, '=')

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if needsQuoting(s) {
			buf = strconv.AppendQuote(buf, s)
		} else {
			buf = append(buf, s...)
		}
	case slog.KindTime:
		buf = a.Value.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindDuration:
		buf = append(buf, a.Value.Duration().String()...)
	default:
		buf = append(buf, fmt.Sprint(a.Value.Any())...)
	}
	return buf
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || !strconv.IsPrint(r) {
			return true
		}
	}
	return false
}
