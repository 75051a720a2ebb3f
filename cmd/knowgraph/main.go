// knowgraph: a persistent knowledge graph served over MCP.
//
// Usage:
//
//	knowgraph serve              # MCP server on stdio, optional sync endpoint
//	knowgraph sync               # sync endpoint only
//	knowgraph watch --url URL    # follow a sync endpoint and log changes
//	knowgraph version
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

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
