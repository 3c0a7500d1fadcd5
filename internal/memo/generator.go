package memo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ebadkh/funding-pulse/internal/discovery"
)

// DefaultPromptTemplate is used when the caller supplies no template. The
// {items} placeholder receives the formatted line-item block.
const DefaultPromptTemplate = "Create a concise memo summarizing each company below, including name, description, and funding size raised:\n\n{items}"

// fallbackMemo replaces an empty answer from the API.
const fallbackMemo = "No memo could be generated. Please check your API key and try again."

// Generator turns a saved item collection into a narrated-ready memo via
// the Exa Answer API.
type Generator struct {
	apiKey         string
	baseURL        string
	promptTemplate string
	client         *http.Client
}

func NewGenerator(apiKey, promptTemplate string) *Generator {
	if promptTemplate == "" {
		promptTemplate = DefaultPromptTemplate
	}
	return &Generator{
		apiKey:         apiKey,
		baseURL:        "https://api.exa.ai",
		promptTemplate: promptTemplate,
		client:         &http.Client{Timeout: 120 * time.Second},
	}
}

type answerRequest struct {
	Query                 string `json:"query"`
	IncludeGeneratedQuery bool   `json:"includeGeneratedQuery"`
	MaxResults            int    `json:"max_results"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

// Generate reads the discovered items from inputFile, asks the answer
// endpoint for a memo, sanitizes it, and writes it to outputFile. The
// sanitized memo is returned.
func (g *Generator) Generate(ctx context.Context, inputFile, outputFile string) (string, error) {
	items, err := loadItems(inputFile)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", fmt.Errorf("memo: no items found in %s", inputFile)
	}
	log.Printf("Processing %d companies from %s", len(items), inputFile)

	prompt := strings.ReplaceAll(g.promptTemplate, "{items}", buildItemsBlock(items))

	answer, err := g.callAPI(ctx, prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		log.Printf("WARNING: empty answer from API, using fallback memo")
		answer = fallbackMemo
	}

	text := StripLinks(answer)

	if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("memo: failed to write %s: %w", outputFile, err)
	}

	return text, nil
}

// loadItems accepts either a JSON array of items or a single item object.
func loadItems(path string) ([]discovery.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("memo: failed to read %s: %w", path, err)
	}

	var items []discovery.Item
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var single discovery.Item
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("memo: failed to parse %s: %w", path, err)
	}
	return []discovery.Item{single}, nil
}

// buildItemsBlock renders one markdown bullet per item with a display
// name, flattened description, and the best-effort funding figure.
func buildItemsBlock(items []discovery.Item) string {
	lines := make([]string, 0, len(items))
	for _, itm := range items {
		desc := strings.ReplaceAll(strings.TrimSpace(itm.Properties.Description), "\n", " ")
		lines = append(lines, fmt.Sprintf("- **%s**: %s  \n  Funding: %s",
			displayName(itm), desc, extractFunding(desc)))
	}
	return strings.Join(lines, "\n")
}

// displayName prefers the nested company name and falls back to the host
// portion of the item URL.
func displayName(itm discovery.Item) string {
	if c := itm.Properties.Company; c != nil && c.Name != "" {
		return c.Name
	}
	if u := itm.Properties.URL; u != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
		if i := strings.Index(host, "/"); i >= 0 {
			host = host[:i]
		}
		return host
	}
	return "<Unknown>"
}

// extractFunding takes the first whitespace-delimited token after the
// first "$". It is best-effort: no "$" yields an empty figure, a "$" with
// nothing after it degrades to "Unknown".
func extractFunding(desc string) string {
	_, after, found := strings.Cut(desc, "$")
	if !found {
		return ""
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return "Unknown"
	}
	return "$" + fields[0]
}

func (g *Generator) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := answerRequest{
		Query:                 prompt,
		IncludeGeneratedQuery: false,
		MaxResults:            0,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("memo: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/answer", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("memo: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("memo: answer request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("memo: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("memo: answer returned status %d: %s", resp.StatusCode, body)
	}

	var apiResp answerResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("memo: failed to parse response: %w", err)
	}

	return apiResp.Answer, nil
}
