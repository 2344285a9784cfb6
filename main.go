package main

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gotp/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		slog.Error("application failed to start", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application exited", "error", err)
		os.Exit(1)
	}
}
