package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Apurer/adoptionos/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRoot(cli.Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "adoptionctl:", err)
		os.Exit(1)
	}
}
