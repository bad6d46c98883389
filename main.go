package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"immich-slideshow/internal/app"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      app.LogLevelFromEnv(),
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	if err := app.Run(); err != nil {
		slog.Error("app failed", "error", err)
		os.Exit(1)
	}
}
