//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext ends the serve context on interrupt. Windows has no SIGTERM.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// notifyReload returns a channel that never fires: Windows has no SIGHUP.
// The file watcher still reloads the config.
func notifyReload() (<-chan os.Signal, func()) {
	return nil, func() {}
}
