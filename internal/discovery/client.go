package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ebadkh/funding-pulse/internal/poll"
)

// Client talks to the Exa Websets API.
type Client struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:       apiKey,
		baseURL:      "https://api.exa.ai/websets",
		client:       &http.Client{Timeout: 60 * time.Second},
		pollInterval: 30 * time.Second,
	}
}

type createWebsetRequest struct {
	Search      searchRequest `json:"search"`
	Enrichments []Enrichment  `json:"enrichments,omitempty"`
}

type searchRequest struct {
	Query    string      `json:"query"`
	Criteria []Criterion `json:"criteria"`
	Count    int         `json:"count"`
	Entity   entity      `json:"entity"`
}

type entity struct {
	Type string `json:"type"`
}

type itemsPage struct {
	Data          []Item `json:"data"`
	NextPageToken string `json:"next_page_token"`
}

// CreateWebset submits a new asynchronous search job. When the lookback
// window is non-zero a date-range criterion covering the window up to
// today is appended; the caller's criteria slice is left untouched.
func (c *Client) CreateWebset(ctx context.Context, params SearchParams) (*Webset, error) {
	criteria := make([]Criterion, len(params.Criteria))
	copy(criteria, params.Criteria)

	if params.LookbackDays > 0 {
		today := time.Now()
		past := today.AddDate(0, 0, -params.LookbackDays)
		criteria = append(criteria, Criterion{
			Description: fmt.Sprintf("completed a series a fundraising round between %s and %s",
				past.Format("2006-01-02"), today.Format("2006-01-02")),
		})
	}

	reqBody := createWebsetRequest{
		Search: searchRequest{
			Query:    params.Query,
			Criteria: criteria,
			Count:    params.Count,
			Entity:   entity{Type: params.EntityType},
		},
		Enrichments: params.Enrichments,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to marshal webset request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v0/websets", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: create webset request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("discovery: create webset returned status %d: %s", resp.StatusCode, body)
	}

	var ws Webset
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, fmt.Errorf("discovery: failed to parse webset: %w", err)
	}
	if ws.ID == "" {
		return nil, fmt.Errorf("discovery: create webset response missing id: %s", body)
	}

	return &ws, nil
}

// GetWebset fetches the current state of a webset.
func (c *Client) GetWebset(ctx context.Context, websetID string) (*Webset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v0/websets/%s", c.baseURL, websetID), nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: get webset request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery: get webset returned status %d: %s", resp.StatusCode, body)
	}

	var ws Webset
	if err := json.Unmarshal(body, &ws); err != nil {
		return nil, fmt.Errorf("discovery: failed to parse webset: %w", err)
	}

	return &ws, nil
}

// WaitForIdle polls the webset until it reaches the terminal "idle"
// status. An elapsed timeout returns (nil, nil): incomplete, not failed.
func (c *Client) WaitForIdle(ctx context.Context, websetID string, timeout time.Duration) (*Webset, error) {
	var last *Webset

	cfg := poll.Config{Interval: c.pollInterval, Timeout: timeout}
	done, err := poll.Until(ctx, cfg, func(ctx context.Context) (bool, error) {
		ws, err := c.GetWebset(ctx, websetID)
		if err != nil {
			return false, err
		}
		last = ws

		if ws.Status == StatusIdle {
			return true, nil
		}

		if p := firstProgress(ws); p != nil {
			log.Printf("Webset %s status: %s (%.0f%%, found %d, analyzed %d)",
				websetID, ws.Status, p.Completion, p.Found, p.Analyzed)
		} else {
			log.Printf("Webset %s status: %s", websetID, ws.Status)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if !done {
		log.Printf("Webset %s did not complete within %s", websetID, timeout)
		return nil, nil
	}

	return last, nil
}

func firstProgress(ws *Webset) *Progress {
	if len(ws.Searches) == 0 {
		return nil
	}
	return ws.Searches[0].Progress
}

// ListItems retrieves every result page of a completed webset and returns
// the items in arrival order. Pagination follows the continuation token
// until a page omits it; no page-count bound is enforced.
func (c *Client) ListItems(ctx context.Context, websetID string) ([]Item, error) {
	var all []Item
	pageToken := ""

	for {
		reqURL := fmt.Sprintf("%s/v0/websets/%s/items", c.baseURL, websetID)
		if pageToken != "" {
			q := url.Values{}
			q.Set("pageToken", pageToken)
			reqURL += "?" + q.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("discovery: failed to create request: %w", err)
		}
		c.setHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("discovery: list items request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("discovery: failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("discovery: list items returned status %d: %s", resp.StatusCode, body)
		}

		var page itemsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("discovery: failed to parse items page: %w", err)
		}

		all = append(all, page.Data...)

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return all, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
}
