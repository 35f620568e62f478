package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
