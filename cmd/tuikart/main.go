// tuikart - Terminal Kart Racing
// Race procedurally generated tracks against AI drivers in your terminal.
//
// Controls:
//
//	Left/Right, A/D  - Steer
//	Up, W            - Accelerate
//	Down, S, Space   - Brake
//	P                - Pause
//	R                - Back on track
//	C                - Cycle camera
//	Enter            - Continue after the race
//	Esc, Q           - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
