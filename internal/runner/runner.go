package runner

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ebadkh/funding-pulse/internal/mailer"
)

// Discoverer runs the webset workflow and returns the path of the saved
// items file, or "" when polling timed out without a result.
type Discoverer interface {
	Run(ctx context.Context) (string, error)
}

// MemoGenerator turns a saved items file into a memo file and returns the
// memo text.
type MemoGenerator interface {
	Generate(ctx context.Context, inputFile, outputFile string) (string, error)
}

// Narrator synthesizes the script file into an audio file.
type Narrator interface {
	Narrate(ctx context.Context, scriptPath, outPath string) error
}

// Mailer dispatches the HTML message with an optional attachment.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody, attachmentPath string) error
}

// Runner orchestrates the discover -> memo -> narrate -> notify pipeline.
// Each stage's output file path is the next stage's input.
type Runner struct {
	outputDir string
	to        []string
	subject   string

	discoverer Discoverer
	memo       MemoGenerator
	narrator   Narrator
	mailer     Mailer

	now func() time.Time
}

func New(outputDir string, to []string, subject string, d Discoverer, m MemoGenerator, n Narrator, s Mailer) *Runner {
	return &Runner{
		outputDir:  outputDir,
		to:         to,
		subject:    subject,
		discoverer: d,
		memo:       m,
		narrator:   n,
		mailer:     s,
		now:        time.Now,
	}
}

// Run executes the full pipeline once. A discovery timeout is a hard
// stop: the run ends without invoking the downstream stages.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	date := r.now().Format("2006-01-02")
	log.Printf("[run %s] Starting pipeline", runID)

	log.Printf("[run %s] Discovering companies...", runID)
	itemsPath, err := r.discoverer.Run(ctx)
	if err != nil {
		return fmt.Errorf("runner: discovery failed: %w", err)
	}
	if itemsPath == "" {
		log.Printf("[run %s] Discovery did not complete in time, skipping downstream stages", runID)
		return nil
	}
	log.Printf("[run %s] Company data saved to %s", runID, itemsPath)

	log.Printf("[run %s] Generating memo...", runID)
	memoPath := filepath.Join(r.outputDir, fmt.Sprintf("company_memo_%s.txt", date))
	memoText, err := r.memo.Generate(ctx, itemsPath, memoPath)
	if err != nil {
		return fmt.Errorf("runner: memo generation failed: %w", err)
	}
	log.Printf("[run %s] Memo saved to %s", runID, memoPath)

	log.Printf("[run %s] Narrating memo...", runID)
	audioPath := filepath.Join(r.outputDir, fmt.Sprintf("funding_audio_%s.mp3", r.now().Format("20060102_150405")))
	if err := r.narrator.Narrate(ctx, memoPath, audioPath); err != nil {
		return fmt.Errorf("runner: narration failed: %w", err)
	}
	log.Printf("[run %s] Audio saved to %s", runID, audioPath)

	log.Printf("[run %s] Sending newsletter to %v...", runID, r.to)
	subject := fmt.Sprintf("%s - %s", r.subject, date)
	html := mailer.FormatHTMLBody(memoText)
	if err := r.mailer.Send(ctx, r.to, subject, html, audioPath); err != nil {
		return fmt.Errorf("runner: notification failed: %w", err)
	}

	log.Printf("[run %s] Pipeline completed", runID)
	return nil
}
