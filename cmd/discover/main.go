package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ebadkh/funding-pulse/internal/config"
	"github.com/ebadkh/funding-pulse/internal/discovery"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dc := cfg.Discovery
	criteria := make([]discovery.Criterion, len(dc.Criteria))
	for i, desc := range dc.Criteria {
		criteria[i] = discovery.Criterion{Description: desc}
	}
	enrichments := make([]discovery.Enrichment, len(dc.Enrichments))
	for i, e := range dc.Enrichments {
		enrichments[i] = discovery.Enrichment{Description: e.Description, Format: e.Format}
	}

	tracker := discovery.NewTracker(
		discovery.NewClient(dc.APIKey),
		discovery.SearchParams{
			Query:        dc.Query,
			Criteria:     criteria,
			Count:        dc.ResultCount,
			EntityType:   dc.EntityType,
			LookbackDays: dc.LookbackDays,
			Enrichments:  enrichments,
		},
		dc.Timeout(),
		cfg.OutputDir,
		dc.FilePrefix,
	)

	path, err := tracker.Run(context.Background())
	if err != nil {
		log.Fatalf("Discovery failed: %v", err)
	}
	if path == "" {
		log.Fatal("Webset did not complete in time, no results saved")
	}

	fmt.Println(path)
}
