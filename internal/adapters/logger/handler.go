package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"go.trai.ch/gscript/internal/ui/output"
	"go.trai.ch/gscript/internal/ui/style"
)

// PrettyHandler writes one colored line per record. Warnings and errors are marked with
// an icon. Attributes are dropped: gscript logs plain messages and carries structure in
// zerr metadata, which Logger.Error renders itself.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
}

// NewPrettyHandler creates a PrettyHandler writing records at or above level to w.
func NewPrettyHandler(w io.Writer, level slog.Leveler) *PrettyHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &PrettyHandler{out: output.New(w), level: level}
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	icon, color := marker(r.Level)
	msg := r.Message
	if icon != "" {
		msg = icon + " " + msg
	}
	line := h.out.String(msg).Foreground(termenv.RGBColor(color))
	_, err := h.out.WriteString(line.String() + "\n")
	return err
}

// WithAttrs implements slog.Handler.
func (h *PrettyHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *PrettyHandler) WithGroup(string) slog.Handler { return h }

func marker(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, string(style.Red)
	case level >= slog.LevelWarn:
		return style.Warning, string(style.Yellow)
	default:
		return "", string(style.Iris)
	}
}
