package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	appportal "github.com/Apurer/adoptionos/internal/app/portal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := appportal.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := appportal.Run(ctx, cfg); err != nil {
		log.Fatalf("portal exited: %v", err)
	}
}
