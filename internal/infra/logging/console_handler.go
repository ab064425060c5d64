package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	ansiReset     = "\033[0m"
	ansiRed       = "\033[31m"
	ansiGreen     = "\033[32m"
	ansiYellow    = "\033[33m"
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

// ConsoleHandler implements slog.Handler with colored, human-readable output
// suitable for development environments.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps dotted logger names (and their prefixes) to minimum log levels
	PkgLevels map[string]slog.Level

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// NewConsoleHandler creates a ConsoleHandler writing to output. pkgLevels
// override level for the named loggers and their children.
func NewConsoleHandler(output io.Writer, level slog.Leveler, pkgLevels map[string]slog.Level) *ConsoleHandler {
	return &ConsoleHandler{
		Output:    output,
		Level:     level,
		PkgLevels: pkgLevels,
		attrs:     nil,
		groups:    nil,
	}
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	threshold := h.Level.Level()
	if level, ok := h.pkgLevel(loggerName(attrs)); ok {
		threshold = level
	}

	if r.Level < threshold {
		return nil
	}

	var b strings.Builder

	b.WriteString(ansiGray + r.Time.Format("15:04:05.000000") + ansiReset)
	b.WriteString(" " + levelColors[r.Level] + "[" + r.Level.String() + "]" + ansiReset)
	b.WriteString(" " + r.Message)

	if len(attrs) > 0 {
		var prefix string
		if len(h.groups) > 0 {
			prefix = strings.Join(h.groups, ".") + "."
		}

		b.WriteString(" " + ansiGray + "|" + ansiReset)
		writeAttrs(&b, prefix, attrs)
	}

	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	fn := strings.Split(frame.Function, string(os.PathSeparator))

	b.WriteString("\n-> " + ansiGray + fn[len(fn)-1] + "()")
	b.WriteString(" in " + ansiUnderline + frame.File + ":" + strconv.Itoa(frame.Line) + ansiReset)

	fmt.Fprintln(h.Output, b.String())

	return nil
}

// pkgLevel finds the most specific configured level for a dotted logger name,
// falling back to the "" entry.
func (h *ConsoleHandler) pkgLevel(name string) (slog.Level, bool) {
	for name != "" {
		if level, ok := h.PkgLevels[name]; ok {
			return level, true
		}

		idx := strings.LastIndex(name, ".")
		if idx < 0 {
			break
		}

		name = name[:idx]
	}

	level, ok := h.PkgLevels[""]

	return level, ok
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}

func writeAttrs(b *strings.Builder, prefix string, attrs []slog.Attr) {
	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			writeAttrs(b, prefix+attr.Key+".", attr.Value.Group())

			continue
		}

		b.WriteString(" " + prefix + attr.Key + "=" + ansiGray + attr.Value.String() + ansiReset)
	}
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     append(append([]slog.Attr(nil), h.attrs...), attrs...),
		groups:    h.groups,
	}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		attrs:     h.attrs,
		groups:    append(append([]string(nil), h.groups...), name),
	}
}

// Enabled implements slog.Handler.Enabled. The logger name is not known
// here, so any package override that is lower than Level lets the record
// through to Handle.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	lowest := h.Level.Level()

	for _, pkgLevel := range h.PkgLevels {
		lowest = min(lowest, pkgLevel)
	}

	return lowest <= level
}
