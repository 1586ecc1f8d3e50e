package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true — if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across brands, templates, and mockups
// using plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text, q.OrgID}
	argN := 3

	clientArg := 0
	if q.ClientID != "" {
		clientArg = argN
		args = append(args, q.ClientID)
		argN++
	}

	var subQueries []string

	// Brands sub-query
	if q.FilterType == "" || q.FilterType == ResultBrand {
		where := "b.fts @@ " + tsQuery + " AND b.org_id = $2"
		if clientArg > 0 {
			where += fmt.Sprintf(" AND b.client_id = $%d", clientArg)
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'brand'::text AS type, b.id, b.name AS title,
				ts_headline('english', coalesce(b.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				b.id AS brand_id, coalesce(b.client_id, '') AS client_id,
				''::text AS status,
				ts_rank(b.fts, %s) AS rank
			FROM brands b
			WHERE %s`, tsQuery, tsQuery, where))
	}

	// Templates sub-query (org-wide, never client scoped)
	if q.FilterType == "" || q.FilterType == ResultTemplate {
		where := "t.fts @@ " + tsQuery + " AND t.org_id = $2"
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'template'::text AS type, t.id, t.name AS title,
				ts_headline('english', coalesce(t.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				''::text AS brand_id, ''::text AS client_id,
				''::text AS status,
				ts_rank(t.fts, %s) AS rank
			FROM templates t
			WHERE %s`, tsQuery, tsQuery, where))
	}

	// Mockups sub-query
	if q.FilterType == "" || q.FilterType == ResultMockup {
		where := "mk.fts @@ " + tsQuery + " AND mk.org_id = $2"
		if clientArg > 0 {
			where += fmt.Sprintf(" AND b.client_id = $%d", clientArg)
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'mockup'::text AS type, mk.id, mk.name AS title,
				''::text AS snippet,
				mk.brand_id, coalesce(b.client_id, '') AS client_id,
				mk.status,
				ts_rank(mk.fts, %s) AS rank
			FROM mockups mk
			JOIN brands b ON b.id = mk.brand_id
			WHERE %s`, tsQuery, where))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, brand_id, client_id, status
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.BrandID, &r.ClientID, &r.Status); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]BrandRecord, []TemplateRecord, []MockupRecord, error) {
	brandRows, err := p.db.QueryContext(ctx, `
		SELECT id, name, domain, description, org_id, coalesce(client_id, '')
		FROM brands
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load brands: %w", err)
	}
	defer brandRows.Close()

	brands := make([]BrandRecord, 0)
	for brandRows.Next() {
		var b BrandRecord
		if err := brandRows.Scan(&b.ID, &b.Name, &b.Domain, &b.Description, &b.OrgID, &b.ClientID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := brandRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate brands: %w", err)
	}

	templateRows, err := p.db.QueryContext(ctx, `
		SELECT id, name, description, category, org_id
		FROM templates
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load templates: %w", err)
	}
	defer templateRows.Close()

	templates := make([]TemplateRecord, 0)
	for templateRows.Next() {
		var t TemplateRecord
		if err := templateRows.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.OrgID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := templateRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate templates: %w", err)
	}

	mockupRows, err := p.db.QueryContext(ctx, `
		SELECT mk.id, mk.name, mk.status, mk.brand_id, mk.org_id, coalesce(b.client_id, '')
		FROM mockups mk
		JOIN brands b ON b.id = mk.brand_id
	`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load mockups: %w", err)
	}
	defer mockupRows.Close()

	mockups := make([]MockupRecord, 0)
	for mockupRows.Next() {
		var mk MockupRecord
		if err := mockupRows.Scan(&mk.ID, &mk.Name, &mk.Status, &mk.BrandID, &mk.OrgID, &mk.ClientID); err != nil {
			return nil, nil, nil, fmt.Errorf("scan mockup: %w", err)
		}
		mockups = append(mockups, mk)
	}
	if err := mockupRows.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("iterate mockups: %w", err)
	}

	return brands, templates, mockups, nil
}
