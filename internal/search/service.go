package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexBrand indexes a brand (fire-and-forget to Meilisearch).
func (s *Service) IndexBrand(b BrandRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexBrand(b); err != nil {
			log.Printf("search: index brand %s: %v", b.ID, err)
		}
	}()
}

// IndexTemplate indexes a template (fire-and-forget to Meilisearch).
func (s *Service) IndexTemplate(t TemplateRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTemplate(t); err != nil {
			log.Printf("search: index template %s: %v", t.ID, err)
		}
	}()
}

// IndexMockup indexes a mockup (fire-and-forget to Meilisearch).
func (s *Service) IndexMockup(m MockupRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexMockup(m); err != nil {
			log.Printf("search: index mockup %s: %v", m.ID, err)
		}
	}()
}

// DeleteBrand removes a brand from the search index (fire-and-forget).
func (s *Service) DeleteBrand(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteBrand(id); err != nil {
			log.Printf("search: delete brand %s: %v", id, err)
		}
	}()
}

// DeleteTemplate removes a template from the search index (fire-and-forget).
func (s *Service) DeleteTemplate(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteTemplate(id); err != nil {
			log.Printf("search: delete template %s: %v", id, err)
		}
	}()
}

// DeleteMockup removes a mockup from the search index (fire-and-forget).
func (s *Service) DeleteMockup(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteMockup(id); err != nil {
			log.Printf("search: delete mockup %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes the given records to Meilisearch in bulk.
func (s *Service) ReindexAll(brands []BrandRecord, templates []TemplateRecord, mockups []MockupRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if len(brands) > 0 {
		if err := s.meili.IndexBrands(brands); err != nil {
			log.Printf("search: reindex brands: %v", err)
		}
	}
	if len(templates) > 0 {
		if err := s.meili.IndexTemplates(templates); err != nil {
			log.Printf("search: reindex templates: %v", err)
		}
	}
	if len(mockups) > 0 {
		if err := s.meili.IndexMockups(mockups); err != nil {
			log.Printf("search: reindex mockups: %v", err)
		}
	}
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into Meilisearch.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	brands, templates, mockups, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	s.ReindexAll(brands, templates, mockups)
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
