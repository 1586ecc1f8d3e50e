package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxBrands    = "emblem_brands"
	idxTemplates = "emblem_templates"
	idxMockups   = "emblem_mockups"
)

// Meili implements Searcher and Indexer via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes.
// Returns a client even if the initial connection fails; the health loop
// reconfigures once Meilisearch comes back.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	// Initial health check
	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		primaryKey string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxBrands,
			primaryKey: "id",
			filterable: []string{"orgId", "clientId"},
			searchable: []string{"name", "domain", "description"},
		},
		{
			uid:        idxTemplates,
			primaryKey: "id",
			filterable: []string{"orgId", "category"},
			searchable: []string{"name", "description"},
		},
		{
			uid:        idxMockups,
			primaryKey: "id",
			filterable: []string{"orgId", "clientId", "status", "brandId"},
			searchable: []string{"name"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: idx.primaryKey,
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries all three indexes (or a filtered subset) and merges results.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxBrands, ResultBrand},
		{idxTemplates, ResultTemplate},
		{idxMockups, ResultMockup},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		sr := &meili.SearchRequest{
			IndexUID:              ti.uid,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			ShowRankingScore:      true,
		}

		filters := []string{fmt.Sprintf("orgId = %q", q.OrgID)}
		if q.ClientID != "" && ti.rtyp != ResultTemplate {
			filters = append(filters, fmt.Sprintf("clientId = %q", q.ClientID))
		}
		sr.Filter = filters
		queries = append(queries, sr)
	}

	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}

	return results, total, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxBrands:
		return ResultBrand
	case idxTemplates:
		return ResultTemplate
	case idxMockups:
		return ResultMockup
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")
	r.BrandID = decodeString(hit, "brandId")
	r.ClientID = decodeString(hit, "clientId")
	r.Status = decodeString(hit, "status")
	r.Title = firstNonBlank(decodeFormattedString(hit, "name"), decodeString(hit, "name"))

	switch rtyp {
	case ResultBrand:
		r.BrandID = r.ID
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "description"), decodeString(hit, "description"), decodeString(hit, "domain"))
	case ResultTemplate:
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "description"), decodeString(hit, "description"))
	case ResultMockup:
		r.Snippet = decodeString(hit, "status")
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexBrand adds or updates a brand in the search index.
func (m *Meili) IndexBrand(b BrandRecord) error {
	_, err := m.client.Index(idxBrands).AddDocuments([]BrandRecord{b}, nil)
	return err
}

// IndexTemplate adds or updates a template in the search index.
func (m *Meili) IndexTemplate(t TemplateRecord) error {
	_, err := m.client.Index(idxTemplates).AddDocuments([]TemplateRecord{t}, nil)
	return err
}

// IndexMockup adds or updates a mockup in the search index.
func (m *Meili) IndexMockup(mk MockupRecord) error {
	_, err := m.client.Index(idxMockups).AddDocuments([]MockupRecord{mk}, nil)
	return err
}

// DeleteBrand removes a brand from the search index.
func (m *Meili) DeleteBrand(id string) error {
	_, err := m.client.Index(idxBrands).DeleteDocument(id, nil)
	return err
}

// DeleteTemplate removes a template from the search index.
func (m *Meili) DeleteTemplate(id string) error {
	_, err := m.client.Index(idxTemplates).DeleteDocument(id, nil)
	return err
}

// DeleteMockup removes a mockup from the search index.
func (m *Meili) DeleteMockup(id string) error {
	_, err := m.client.Index(idxMockups).DeleteDocument(id, nil)
	return err
}

// IndexBrands bulk-indexes brands.
func (m *Meili) IndexBrands(brands []BrandRecord) error {
	if len(brands) == 0 {
		return nil
	}
	_, err := m.client.Index(idxBrands).AddDocuments(brands, nil)
	return err
}

// IndexTemplates bulk-indexes templates.
func (m *Meili) IndexTemplates(templates []TemplateRecord) error {
	if len(templates) == 0 {
		return nil
	}
	_, err := m.client.Index(idxTemplates).AddDocuments(templates, nil)
	return err
}

// IndexMockups bulk-indexes mockups.
func (m *Meili) IndexMockups(mockups []MockupRecord) error {
	if len(mockups) == 0 {
		return nil
	}
	_, err := m.client.Index(idxMockups).AddDocuments(mockups, nil)
	return err
}
