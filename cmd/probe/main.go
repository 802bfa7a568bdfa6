// Command probe opens a listing page and prints every element that looks
// like part of the currency selector, to help tune the locators.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"listing-qa/config"
	"listing-qa/internal/currency"
	"listing-qa/scraper"
	"listing-qa/scraper/listing"
	"listing-qa/utils"
)

func main() {
	url := flag.String("url", "", "listing page to probe (defaults to QA_URL)")
	timeout := flag.Duration("timeout", 90*time.Second, "overall probe timeout")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *url != "" {
		cfg.URL = *url
	}
	if cfg.URL == "" {
		log.Fatal("no url: pass -url or set QA_URL")
	}

	allocCtx, cancel := scraper.NewAllocator(context.Background(), &cfg.Browser)
	defer cancel()

	tab, cancel := scraper.NewTab(allocCtx, cfg.Browser.Debug)
	defer cancel()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	page := listing.NewChromedpPage(tab, cfg)
	if err := page.Navigate(ctx, cfg.URL); err != nil {
		log.Fatalf("navigate: %v", err)
	}

	var title, availability string
	if err := chromedp.Run(tab,
		chromedp.Title(&title),
		utils.SafeText("#"+cfg.Selectors.AvailabilityID, &availability),
	); err != nil {
		log.Printf("Error reading page header: %v", err)
	}
	fmt.Printf("Page: %s\nAvailability price: %q\n\n", title, utils.NormalizeText(availability))

	entries, err := page.Probe(ctx)
	if err != nil {
		log.Fatalf("probe: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No currency-related elements found.")
	} else {
		fmt.Printf("Found %d currency-related elements:\n\n", len(entries))
		for i, e := range entries {
			fmt.Printf("[%d] <%s> id=%q class=%q\n    Text: %s\n\n",
				i+1, e.Tag, e.ID, e.Class, utils.Truncate(utils.NormalizeText(e.Text), 80))
		}
	}

	sel := currency.SelectorsFromConfig(cfg.Selectors)
	for _, s := range sel.Strategies {
		els, err := page.Query(ctx, s.Locator)
		if err != nil {
			fmt.Printf("strategy %-20s error: %v\n", s.Name, err)
			continue
		}
		fmt.Printf("strategy %-20s %d match(es)\n", s.Name, len(els))
	}
}
