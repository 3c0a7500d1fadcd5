package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/ebadkh/funding-pulse/internal/config"
	"github.com/ebadkh/funding-pulse/internal/discovery"
	"github.com/ebadkh/funding-pulse/internal/mailer"
	"github.com/ebadkh/funding-pulse/internal/memo"
	"github.com/ebadkh/funding-pulse/internal/runner"
	"github.com/ebadkh/funding-pulse/internal/speech"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	r := buildRunner(cfg)

	// Single-run mode: run the pipeline once and exit
	if *once {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		log.Println("Running newsletter pipeline (once mode)...")
		if err := r.Run(ctx); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
		log.Println("Done")
		return
	}

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run immediately on startup if configured
	if cfg.RunOnStart {
		log.Println("Running initial newsletter pipeline...")
		if err := r.Run(ctx); err != nil {
			log.Printf("Initial run failed: %v", err)
		}
	}

	// Set up cron scheduler
	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		log.Println("Cron triggered, running newsletter pipeline...")
		if err := r.Run(ctx); err != nil {
			log.Printf("Scheduled run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to set up cron schedule %q: %v", cfg.Schedule, err)
	}
	c.Start()
	log.Printf("Scheduled newsletter with cron expression: %s", cfg.Schedule)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received signal %v, shutting down...", sig)

	cancel()
	c.Stop()
	log.Println("Shutdown complete")
}

func buildRunner(cfg *config.Config) *runner.Runner {
	tracker := discovery.NewTracker(
		discovery.NewClient(cfg.Discovery.APIKey),
		searchParams(cfg.Discovery),
		cfg.Discovery.Timeout(),
		cfg.OutputDir,
		cfg.Discovery.FilePrefix,
	)

	gen := memo.NewGenerator(cfg.Discovery.APIKey, cfg.Memo.PromptTemplate)

	tts := speech.NewClient(cfg.Speech.APIKey, cfg.Speech.VoiceID, cfg.Speech.ModelID, speech.VoiceSettings{
		Stability:       cfg.Speech.Stability,
		SimilarityBoost: cfg.Speech.SimilarityBoost,
		Style:           cfg.Speech.Style,
		UseSpeakerBoost: *cfg.Speech.UseSpeakerBoost,
	})

	sender := mailer.NewSender(cfg.Mail.From, cfg.Mail.AccessToken)

	return runner.New(cfg.OutputDir, cfg.Mail.To, cfg.Mail.Subject, tracker, gen, tts, sender)
}

func searchParams(dc config.DiscoveryConfig) discovery.SearchParams {
	criteria := make([]discovery.Criterion, len(dc.Criteria))
	for i, desc := range dc.Criteria {
		criteria[i] = discovery.Criterion{Description: desc}
	}
	enrichments := make([]discovery.Enrichment, len(dc.Enrichments))
	for i, e := range dc.Enrichments {
		enrichments[i] = discovery.Enrichment{Description: e.Description, Format: e.Format}
	}
	return discovery.SearchParams{
		Query:        dc.Query,
		Criteria:     criteria,
		Count:        dc.ResultCount,
		EntityType:   dc.EntityType,
		LookbackDays: dc.LookbackDays,
		Enrichments:  enrichments,
	}
}
