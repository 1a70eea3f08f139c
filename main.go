package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gpubuild/internal/gpubuild"
)

// Entry point
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigs:
			fmt.Printf("\nReceived %v, cancelling the current command\n", sig)
			cancel()
			// Give the child a moment to die and flush its buffers, then
			// force exit on a second interrupt.
			select {
			case <-sigs:
				fmt.Println("\nSecond interrupt received, exiting immediately")
				os.Exit(130)
			case <-time.After(500 * time.Millisecond):
			}
		case <-ctx.Done():
		}
	}()

	os.Exit(gpubuild.Run(ctx, os.Args[1:]))
}
