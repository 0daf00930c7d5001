package logger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var badges = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgCyan),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

// keyColors highlights the fields the commands log most often.
var keyColors = map[string]*color.Color{
	"error":     color.New(color.FgRed),
	"status":    color.New(color.FgRed),
	"project":   color.New(color.FgCyan),
	"iid":       color.New(color.FgCyan),
	"operation": color.New(color.FgCyan),
	"count":     color.New(color.FgGreen),
	"pages":     color.New(color.FgGreen),
}

var plainKey = color.New(color.FgHiBlack)

// lineHandler writes one line per record to the diagnostic stream:
//
//	[WARN] failed to close issue project=group/app iid=4 error=...
//
// Attributes bound with With come before the record's own.
type lineHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Leveler
	source bool
	bound  []slog.Attr
}

func newLineHandler(w io.Writer, level slog.Leveler, source bool) *lineHandler {
	return &lineHandler{w: w, mu: &sync.Mutex{}, level: level, source: source}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder
	line.WriteString(badge(r.Level))
	line.WriteByte(' ')
	line.WriteString(r.Message)

	for _, a := range h.bound {
		writeAttr(&line, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&line, a)
		return true
	})

	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			line.WriteByte(' ')
			line.WriteString(plainKey.Sprintf("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	next.bound = append(append([]slog.Attr{}, h.bound...), attrs...)
	return &next
}

// WithGroup is a no-op: the CLI never nests attributes, so keys stay flat.
func (h *lineHandler) WithGroup(string) slog.Handler {
	return h
}

func badge(level slog.Level) string {
	text := "[" + level.String() + "]"
	if c, ok := badges[level]; ok {
		return c.Sprint(text)
	}
	return text
}

func writeAttr(line *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	c, ok := keyColors[a.Key]
	if !ok {
		c = plainKey
	}
	line.WriteByte(' ')
	line.WriteString(c.Sprintf("%s=%s", a.Key, a.Value.Resolve().String()))
}
