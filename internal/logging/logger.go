package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs JSON logging to stdout behind a MultiHandler so request
// scope reaches every record. Extra sinks can be added with SetupWith.
func Setup() {
	SetupWith()
}

func SetupWith(extra ...slog.Handler) {
	handlers := append([]slog.Handler{NewJSONHandler(os.Stdout)}, extra...)
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}

func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
