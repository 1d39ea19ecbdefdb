// Command reconcile links the configured registry exports once and writes the
// two master lists as CSV files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("reconcile: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
