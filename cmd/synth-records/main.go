// Command synth-records loads a running service with generated multi-state
// license records, reconciles them and checks nothing was lost.
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
		os.Stderr.WriteString("synth-records: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
