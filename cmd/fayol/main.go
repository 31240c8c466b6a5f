package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/deividlukks/Fayol-sub007/pkg/cli"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v := version
	if commit != "" {
		v += " (commit " + commit + ")"
	}
	if date != "" {
		v += " built " + date
	}

	if err := cli.NewRootCmd(v).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s\n", cli.DescribeError(err))
		stop()
		os.Exit(1)
	}
}
