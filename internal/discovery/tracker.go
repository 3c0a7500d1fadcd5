package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Tracker runs the full discovery workflow: submit the webset, wait for
// the terminal status, then fetch and persist every item.
type Tracker struct {
	client     *Client
	params     SearchParams
	timeout    time.Duration
	outputDir  string
	filePrefix string

	websetID string
}

func NewTracker(client *Client, params SearchParams, timeout time.Duration, outputDir, filePrefix string) *Tracker {
	return &Tracker{
		client:     client,
		params:     params,
		timeout:    timeout,
		outputDir:  outputDir,
		filePrefix: filePrefix,
	}
}

// SaveResults fetches all items of the completed webset and writes them
// to a dated JSON file. The path is deterministic from the prefix and the
// current date, so a re-run on the same day overwrites the prior file.
func (t *Tracker) SaveResults(ctx context.Context) (string, error) {
	if t.websetID == "" {
		return "", fmt.Errorf("discovery: no webset created yet")
	}

	items, err := t.client.ListItems(ctx, t.websetID)
	if err != nil {
		return "", err
	}
	log.Printf("Retrieved %d items from webset %s", len(items), t.websetID)

	if err := os.MkdirAll(t.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("discovery: failed to create output dir: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("discovery: failed to marshal items: %w", err)
	}

	path := filepath.Join(t.outputDir, fmt.Sprintf("%s_%s.json", t.filePrefix, time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("discovery: failed to write %s: %w", path, err)
	}

	log.Printf("Saved %d companies to %s", len(items), path)
	return path, nil
}

// Run executes submit -> poll -> fetch -> persist. It returns the path of
// the saved items file, or "" without an error when polling timed out:
// items are never requested before the terminal status was observed.
func (t *Tracker) Run(ctx context.Context) (string, error) {
	ws, err := t.client.CreateWebset(ctx, t.params)
	if err != nil {
		return "", err
	}
	t.websetID = ws.ID
	log.Printf("Webset created with ID: %s", ws.ID)

	completed, err := t.client.WaitForIdle(ctx, ws.ID, t.timeout)
	if err != nil {
		return "", err
	}
	if completed == nil {
		return "", nil
	}

	return t.SaveResults(ctx)
}
