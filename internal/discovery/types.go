package discovery

import "encoding/json"

// Webset statuses reported by the API. The webset is created in a running
// state and reaches "idle" once every search and enrichment has finished.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusIdle    = "idle"
)

// Webset is the server-side asynchronous search job. It is only ever
// mutated remotely; the client polls it until the terminal status.
type Webset struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Searches []Search `json:"searches"`
}

// Search is one sub-search of a webset with its own progress.
type Search struct {
	ID       string    `json:"id"`
	Query    string    `json:"query"`
	Progress *Progress `json:"progress,omitempty"`
}

// Progress reports how far along a search is. All fields are optional on
// the wire; missing progress never aborts polling.
type Progress struct {
	Found      int     `json:"found"`
	Analyzed   int     `json:"analyzed"`
	Completion float64 `json:"completion"`
}

// Item is one discovered company. Items are immutable once received and
// keep their arrival order across pages; the client does not deduplicate.
type Item struct {
	ID          string          `json:"id"`
	Properties  ItemProperties  `json:"properties"`
	Enrichments json.RawMessage `json:"enrichments,omitempty"`
}

// ItemProperties holds the entity fields the pipeline reads.
type ItemProperties struct {
	Type        string   `json:"type,omitempty"`
	URL         string   `json:"url,omitempty"`
	Description string   `json:"description,omitempty"`
	Company     *Company `json:"company,omitempty"`
}

// Company is the nested entity block present on company-type items.
type Company struct {
	Name string `json:"name"`
}

// Criterion is a natural-language boolean filter constraining results.
type Criterion struct {
	Description string `json:"description"`
}

// Enrichment asks the server to compute a supplementary field per item.
type Enrichment struct {
	Description string `json:"description"`
	Format      string `json:"format"`
}

// SearchParams describes the webset to create.
type SearchParams struct {
	Query        string
	Criteria     []Criterion
	Count        int
	EntityType   string
	LookbackDays int
	Enrichments  []Enrichment
}
