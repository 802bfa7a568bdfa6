package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	application "listing-qa/cmd/scraper"
	"listing-qa/config"
)

func main() {
	log.SetFlags(log.LstdFlags)

	url := flag.String("url", "", "listing page to check (overrides QA_URL)")
	dev := flag.Bool("dev", false, "use the faster development timings with a visible browser")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *dev {
		cfg.ApplyDev()
	}
	if *url != "" {
		cfg.URL = *url
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.NewApp(cfg).Run(ctx); err != nil {
		log.Printf("listing-qa: %v", err)
		stop()
		os.Exit(1)
	}
}
