package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		apiKey:       "test_key",
		baseURL:      ts.URL,
		client:       ts.Client(),
		pollInterval: 5 * time.Millisecond,
	}
}

func TestCreateWebsetPayload(t *testing.T) {
	var gotBody createWebsetRequest
	var gotAPIKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v0/websets" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAPIKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "ws_123", "status": "running"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	criteria := []Criterion{
		{Description: "company is headquartered in san francisco, ca"},
		{Description: "completed a series a fundraising round"},
	}
	ws, err := c.CreateWebset(context.Background(), SearchParams{
		Query:        "companies that raised a series A",
		Criteria:     criteria,
		Count:        5,
		EntityType:   "company",
		LookbackDays: 7,
		Enrichments:  []Enrichment{{Description: "Series A Amount", Format: "number"}},
	})
	if err != nil {
		t.Fatalf("CreateWebset returned error: %v", err)
	}

	if ws.ID != "ws_123" {
		t.Errorf("Expected webset id 'ws_123', got %q", ws.ID)
	}
	if gotAPIKey != "test_key" {
		t.Errorf("Expected x-api-key header, got %q", gotAPIKey)
	}
	if gotBody.Search.Query != "companies that raised a series A" {
		t.Errorf("Unexpected query: %q", gotBody.Search.Query)
	}
	if gotBody.Search.Count != 5 {
		t.Errorf("Expected count 5, got %d", gotBody.Search.Count)
	}
	if gotBody.Search.Entity.Type != "company" {
		t.Errorf("Expected entity type 'company', got %q", gotBody.Search.Entity.Type)
	}
	if len(gotBody.Enrichments) != 1 || gotBody.Enrichments[0].Format != "number" {
		t.Errorf("Unexpected enrichments: %+v", gotBody.Enrichments)
	}

	// The lookback window adds a date-range criterion after the caller's.
	if len(gotBody.Search.Criteria) != 3 {
		t.Fatalf("Expected 3 criteria (2 + date range), got %d", len(gotBody.Search.Criteria))
	}
	dateCriterion := gotBody.Search.Criteria[2].Description
	if !strings.Contains(dateCriterion, "between") {
		t.Errorf("Expected a date-range criterion, got %q", dateCriterion)
	}
	today := time.Now().Format("2006-01-02")
	past := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if !strings.Contains(dateCriterion, today) || !strings.Contains(dateCriterion, past) {
		t.Errorf("Expected dates %s and %s in criterion %q", past, today, dateCriterion)
	}

	// The caller's criteria slice must not be mutated.
	if len(criteria) != 2 {
		t.Errorf("Caller criteria slice was mutated: %+v", criteria)
	}
}

func TestCreateWebsetNoLookbackOmitsDateCriterion(t *testing.T) {
	var gotBody createWebsetRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"id": "ws_1", "status": "running"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	_, err := c.CreateWebset(context.Background(), SearchParams{
		Query:    "q",
		Criteria: []Criterion{{Description: "a"}},
		Count:    1,
	})
	if err != nil {
		t.Fatalf("CreateWebset returned error: %v", err)
	}
	if len(gotBody.Search.Criteria) != 1 {
		t.Errorf("Expected 1 criterion with zero lookback, got %d", len(gotBody.Search.Criteria))
	}
}

func TestCreateWebsetErrorIncludesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": "invalid entity type"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	_, err := c.CreateWebset(context.Background(), SearchParams{Query: "q"})
	if err == nil {
		t.Fatal("Expected error for 400 status")
	}
	if !strings.Contains(err.Error(), "status 400") || !strings.Contains(err.Error(), "invalid entity type") {
		t.Errorf("Expected status and response body in error, got: %v", err)
	}
}

func TestWaitForIdleCompletes(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/websets/ws_1" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if calls.Add(1) < 3 {
			fmt.Fprint(w, `{"id": "ws_1", "status": "running", "searches": [{"progress": {"found": 2, "analyzed": 1, "completion": 50}}]}`)
			return
		}
		fmt.Fprint(w, `{"id": "ws_1", "status": "idle"}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	ws, err := c.WaitForIdle(context.Background(), "ws_1", time.Second)
	if err != nil {
		t.Fatalf("WaitForIdle returned error: %v", err)
	}
	if ws == nil {
		t.Fatal("Expected completed webset, got nil")
	}
	if ws.Status != StatusIdle {
		t.Errorf("Expected status idle, got %q", ws.Status)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 status checks, got %d", calls.Load())
	}
}

func TestWaitForIdleTimeoutReturnsNoResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never reaches the terminal status; progress is absent, which
		// must not abort the loop either.
		fmt.Fprint(w, `{"id": "ws_1", "status": "running", "searches": [{}]}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	ws, err := c.WaitForIdle(context.Background(), "ws_1", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Timeout must not be an error, got: %v", err)
	}
	if ws != nil {
		t.Fatalf("Expected nil webset on timeout, got %+v", ws)
	}
}

func TestListItemsPagination(t *testing.T) {
	var tokens []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/websets/ws_1/items" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		if token == "" {
			fmt.Fprint(w, `{"data": [{"id": "A"}, {"id": "B"}], "next_page_token": "tok"}`)
			return
		}
		fmt.Fprint(w, `{"data": [{"id": "C"}], "next_page_token": null}`)
	}))
	defer ts.Close()

	c := testClient(ts)
	items, err := c.ListItems(context.Background(), "ws_1")
	if err != nil {
		t.Fatalf("ListItems returned error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("Expected 3 items across pages, got %d", len(items))
	}
	for i, want := range []string{"A", "B", "C"} {
		if items[i].ID != want {
			t.Errorf("Expected item %d id %q, got %q", i, want, items[i].ID)
		}
	}
	if len(tokens) != 2 || tokens[0] != "" || tokens[1] != "tok" {
		t.Errorf("Unexpected page token sequence: %v", tokens)
	}
}

func TestListItemsBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "upstream exploded")
	}))
	defer ts.Close()

	c := testClient(ts)
	_, err := c.ListItems(context.Background(), "ws_1")
	if err == nil {
		t.Fatal("Expected error for 500 status")
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("Expected response body in error, got: %v", err)
	}
}
