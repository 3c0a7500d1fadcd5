package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ebadkh/funding-pulse/internal/config"
	"github.com/ebadkh/funding-pulse/internal/speech"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] <memo.txt> <audio.mp3>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tts := speech.NewClient(cfg.Speech.APIKey, cfg.Speech.VoiceID, cfg.Speech.ModelID, speech.VoiceSettings{
		Stability:       cfg.Speech.Stability,
		SimilarityBoost: cfg.Speech.SimilarityBoost,
		Style:           cfg.Speech.Style,
		UseSpeakerBoost: *cfg.Speech.UseSpeakerBoost,
	})

	if err := tts.Narrate(context.Background(), flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("Narration failed: %v", err)
	}

	log.Printf("Audio written to %s", flag.Arg(1))
}
