package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

type CustomHandler struct {
	mu    sync.Mutex
	w     io.Writer
	level *slog.LevelVar
	attrs []slog.Attr
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

func (h *CustomHandler) Handle(ctx context.Context, r slog.Record) error {
	level := r.Level.String()
	timeStr := r.Time.Format("15:04:05.000")

	var levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = colorBlue
	case slog.LevelInfo:
		levelColor = colorGreen
	case slog.LevelWarn:
		levelColor = colorYellow
	case slog.LevelError:
		levelColor = colorRed
	default:
		levelColor = colorReset
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	output := fmt.Sprintf("%s %s%s%s %s", timeStr, levelColor, level, colorReset, r.Message)

	for _, a := range h.attrs {
		output += fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())
	}
	r.Attrs(func(a slog.Attr) bool {
		output += fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())
		return true
	})

	_, err := fmt.Fprintln(h.w, output)
	return err
}

func (h *CustomHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := h.clone()
	h2.attrs = append(h2.attrs, attrs...)
	return h2
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	return h.clone()
}

func (h *CustomHandler) clone() *CustomHandler {
	return &CustomHandler{
		w:     h.w,
		level: h.level,
		attrs: append([]slog.Attr{}, h.attrs...),
	}
}

func NewCustomHandler(w io.Writer, level slog.Level) *CustomHandler {
	lv := new(slog.LevelVar)
	lv.Set(level)
	return &CustomHandler{w: w, level: lv}
}

var Slog *slog.Logger

func init() {
	Slog = slog.New(NewCustomHandler(os.Stderr, slog.LevelWarn))
	slog.SetDefault(Slog)
}

// SetLevel changes the minimum level of the default handler at runtime.
func SetLevel(level slog.Level) {
	handler, ok := Slog.Handler().(*CustomHandler)
	if !ok {
		return
	}
	handler.level.Set(level)
}

// SetLogLevel parses a level name ("debug", "info", "warn", "error") and
// applies it. Unknown names keep the current level.
func SetLogLevel(val string) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(val)); err != nil {
		Slog.Info("could not parse loglevel, keeping as is", "value", val)
		return
	}
	SetLevel(level)
}
