package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ebadkh/funding-pulse/internal/config"
	"github.com/ebadkh/funding-pulse/internal/memo"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	prompt := flag.String("prompt", "", "custom prompt template with an {items} placeholder")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] [-prompt template] <items.json> <memo.txt>\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	template := cfg.Memo.PromptTemplate
	if *prompt != "" {
		template = *prompt
	}

	gen := memo.NewGenerator(cfg.Discovery.APIKey, template)
	if _, err := gen.Generate(context.Background(), flag.Arg(0), flag.Arg(1)); err != nil {
		log.Fatalf("Memo generation failed: %v", err)
	}

	log.Printf("Memo written to %s", flag.Arg(1))
}
