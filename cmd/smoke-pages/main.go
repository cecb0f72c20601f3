// Package main - smoke-обход страниц ReplayBrowser в браузере.
// Запускает приложение, посещает страницы и завершает его на любом пути.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kargones/rb-ci/internal/app"
	"github.com/Kargones/rb-ci/internal/command/handlers"
	"github.com/Kargones/rb-ci/internal/constants"
)

func main() {
	os.Exit(run())
}

func run() int {
	handlers.RegisterAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, constants.ActSmokePages)
}
