package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()

	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the root command and releases the log file, also when the
// command fails.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Debug("Command failed", "error", err)
	}
	if cerr := closeLogger(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
