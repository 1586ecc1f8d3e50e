package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultBrand    ResultType = "brand"
	ResultTemplate ResultType = "template"
	ResultMockup   ResultType = "mockup"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	BrandID  string     `json:"brandId,omitempty"`
	ClientID string     `json:"clientId,omitempty"`
	Status   string     `json:"status,omitempty"`
}

// Query describes a search request. OrgID is always required; ClientID
// restricts brand and mockup hits to one client (client-role sessions).
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	OrgID      string
	ClientID   string
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index.
type Indexer interface {
	IndexBrand(b BrandRecord) error
	IndexTemplate(t TemplateRecord) error
	IndexMockup(m MockupRecord) error
	DeleteBrand(id string) error
	DeleteTemplate(id string) error
	DeleteMockup(id string) error
}

// BrandRecord is the data we index for a brand.
type BrandRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	OrgID       string `json:"orgId"`
	ClientID    string `json:"clientId"`
}

// TemplateRecord is the data we index for a template.
type TemplateRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	OrgID       string `json:"orgId"`
}

// MockupRecord is the data we index for a mockup.
type MockupRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	BrandID  string `json:"brandId"`
	OrgID    string `json:"orgId"`
	ClientID string `json:"clientId"`
}
