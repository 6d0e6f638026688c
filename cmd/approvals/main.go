package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/garyjia/approvals-console/internal/cli"
	"github.com/garyjia/approvals-console/internal/domain/apperr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		msg := err.Error()
		if _, ok := apperr.KindOf(err); ok {
			msg = apperr.UserMessage(err)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		os.Exit(1)
	}
}
