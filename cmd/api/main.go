package main

import (
	"log/slog"
	"os"

	"github.com/cineseat/cineseat/internal/app"
)

func main() {
	err := app.Run()
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
