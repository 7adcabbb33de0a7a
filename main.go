// chalc answers the arithmetic challenge of a line-oriented TCP
// challenge server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chalc/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "chalc: %v\n", err)
		os.Exit(1)
	}
}
