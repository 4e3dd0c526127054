package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
	ansiBlue      = "\033[34m"
	ansiCyan      = "\033[36m"
	ansiGray      = "\033[90m"
	ansiUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var levelColors = map[slog.Level]string{
	slog.LevelDebug: ansiCyan,
	slog.LevelInfo:  ansiGreen,
	slog.LevelWarn:  ansiYellow,
	slog.LevelError: ansiRed,
}

// ConsoleHandler writes one colored line per record for reading in a terminal:
//
//	15:04:05.000 INFO  web.handler  page rendered | page=dashboard.html trace.id=01j8...
//
// The logger attribute is shown as the component name instead of as a field.
type ConsoleHandler struct {
	out       io.Writer
	level     slog.Leveler
	addSource bool
	mu        *sync.Mutex

	name   string
	prefix string // open groups, each followed by a dot
	fields string // attributes added through WithAttrs, already rendered
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a ConsoleHandler writing records at or above level to out.
func NewConsoleHandler(out io.Writer, level slog.Leveler, addSource bool) *ConsoleHandler {
	return &ConsoleHandler{
		out:       out,
		level:     level,
		addSource: addSource,
		mu:        &sync.Mutex{},
	}
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.Handle.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	line.WriteString(ansiGray + r.Time.Format("15:04:05.000") + ansiReset + " ")
	line.WriteString(levelColors[r.Level] + fmt.Sprintf("%-5s", r.Level.String()) + ansiReset)

	if h.name != "" {
		line.WriteString(" " + ansiBlue + h.name + ansiReset)
	}

	line.WriteString("  " + r.Message)

	fields := h.fields

	r.Attrs(func(a slog.Attr) bool {
		fields += renderAttr(h.prefix, a)

		return true
	})

	if fields != "" {
		line.WriteString(" " + ansiGray + "|" + ansiReset + fields)
	}

	if h.addSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		line.WriteString("\n   -> " + ansiGray + path.Base(frame.Function) + "()")
		line.WriteString(" " + ansiUnderline + frame.File + ":" + strconv.Itoa(frame.Line) + ansiReset)
	}

	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.out, line.String()); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}

	return nil
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h

	for _, a := range attrs {
		if a.Key == loggerKey && h.prefix == "" {
			clone.name = a.Value.String()

			continue
		}

		clone.fields += renderAttr(h.prefix, a)
	}

	return &clone
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix += name + "."

	return &clone
}

// renderAttr flattens a into " prefix.key=value" pairs. Groups without a
// key are inlined.
func renderAttr(prefix string, a slog.Attr) string {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) { //nolint:exhaustruct
		return ""
	}

	if a.Value.Kind() != slog.KindGroup {
		return " " + prefix + a.Key + "=" + ansiGray + a.Value.String() + ansiReset
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	var out string
	for _, member := range a.Value.Group() {
		out += renderAttr(prefix, member)
	}

	return out
}
