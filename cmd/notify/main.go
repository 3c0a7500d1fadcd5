package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ebadkh/funding-pulse/internal/config"
	"github.com/ebadkh/funding-pulse/internal/mailer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] <memo.txt> [attachment]\n", os.Args[0])
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	memoText, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read memo: %v", err)
	}

	attachment := ""
	if flag.NArg() == 2 {
		attachment = flag.Arg(1)
	}

	sender := mailer.NewSender(cfg.Mail.From, cfg.Mail.AccessToken)
	subject := fmt.Sprintf("%s - %s", cfg.Mail.Subject, time.Now().Format("2006-01-02"))
	html := mailer.FormatHTMLBody(string(memoText))

	if err := sender.Send(context.Background(), cfg.Mail.To, subject, html, attachment); err != nil {
		log.Fatalf("Failed to send email: %v", err)
	}

	log.Printf("Email sent to %v", cfg.Mail.To)
}
