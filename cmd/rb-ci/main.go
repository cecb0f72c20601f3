// Package main - точка входа rb-ci: проверки ReplayBrowser в CI.
// Команда берётся из первого аргумента или BR_COMMAND.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Kargones/rb-ci/internal/app"
	"github.com/Kargones/rb-ci/internal/command/handlers"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run вынесен из main, чтобы defer отработали до os.Exit.
func run(args []string) int {
	handlers.RegisterAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, commandFromArgs(args))
}

// commandFromArgs: пусто - команда из BR_COMMAND или help.
func commandFromArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
