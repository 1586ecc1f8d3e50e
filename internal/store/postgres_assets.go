package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListTemplates(ctx context.Context, orgID, category string) ([]Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, category, description, object_key, width, height, logo_x, logo_y, logo_scale, created_at, updated_at
		FROM templates
		WHERE org_id=$1 AND ($2='' OR category=$2)
		ORDER BY updated_at DESC
	`, orgID, category)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	items := make([]Template, 0)
	for rows.Next() {
		var item Template
		if err := rows.Scan(&item.ID, &item.OrgID, &item.Name, &item.Category, &item.Description, &item.ObjectKey, &item.Width, &item.Height, &item.LogoX, &item.LogoY, &item.LogoScale, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, orgID, templateID string) (Template, error) {
	var item Template
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, category, description, object_key, width, height, logo_x, logo_y, logo_scale, created_at, updated_at
		FROM templates
		WHERE org_id=$1 AND id=$2
	`, orgID, templateID).Scan(&item.ID, &item.OrgID, &item.Name, &item.Category, &item.Description, &item.ObjectKey, &item.Width, &item.Height, &item.LogoX, &item.LogoY, &item.LogoScale, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Template{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertTemplate(ctx context.Context, item Template) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, org_id, name, category, description, object_key, width, height, logo_x, logo_y, logo_scale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, item.ID, item.OrgID, item.Name, item.Category, item.Description, item.ObjectKey, item.Width, item.Height, item.LogoX, item.LogoY, item.LogoScale)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateTemplate(ctx context.Context, item Template) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE templates
		SET name=$3, category=$4, description=$5, logo_x=$6, logo_y=$7, logo_scale=$8, updated_at=NOW()
		WHERE org_id=$1 AND id=$2
	`, item.OrgID, item.ID, item.Name, item.Category, item.Description, item.LogoX, item.LogoY, item.LogoScale)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (s *PostgresStore) TemplateMockupCount(ctx context.Context, templateID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mockups WHERE template_id=$1`, templateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count template mockups: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteTemplate(ctx context.Context, orgID, templateID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE org_id=$1 AND id=$2`, orgID, templateID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// MockupFilter narrows mockup listings. ClientID restricts to mockups whose
// brand belongs to the client (client-role visibility).
type MockupFilter struct {
	ProjectID string
	BrandID   string
	Status    string
	ClientID  string
}

const mockupColumns = `
	mk.id, mk.org_id, mk.brand_id, mk.template_id, mk.logo_id, mk.project_id,
	mk.name, mk.object_key, mk.status, mk.stage_position, mk.round,
	mk.created_by, mk.created_at, mk.updated_at
`

func scanMockup(row interface{ Scan(...any) error }) (Mockup, error) {
	var item Mockup
	err := row.Scan(
		&item.ID,
		&item.OrgID,
		&item.BrandID,
		&item.TemplateID,
		&item.LogoID,
		&item.ProjectID,
		&item.Name,
		&item.ObjectKey,
		&item.Status,
		&item.StagePosition,
		&item.Round,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) ListMockups(ctx context.Context, orgID string, filter MockupFilter) ([]Mockup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+mockupColumns+`
		FROM mockups mk
		JOIN brands b ON b.id = mk.brand_id
		WHERE mk.org_id=$1
		  AND ($2='' OR mk.project_id=$2)
		  AND ($3='' OR mk.brand_id=$3)
		  AND ($4='' OR mk.status=$4)
		  AND ($5='' OR b.client_id=$5)
		ORDER BY mk.updated_at DESC
	`, orgID, filter.ProjectID, filter.BrandID, filter.Status, filter.ClientID)
	if err != nil {
		return nil, fmt.Errorf("list mockups: %w", err)
	}
	defer rows.Close()

	items := make([]Mockup, 0)
	for rows.Next() {
		item, err := scanMockup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mockup: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mockups: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetMockup(ctx context.Context, orgID, mockupID string) (Mockup, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+mockupColumns+`
		FROM mockups mk
		WHERE mk.org_id=$1 AND mk.id=$2
	`, orgID, mockupID)
	return scanMockup(row)
}

func (s *PostgresStore) InsertMockup(ctx context.Context, item Mockup) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mockups (id, org_id, brand_id, template_id, logo_id, project_id, name, object_key, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, item.ID, item.OrgID, item.BrandID, item.TemplateID, item.LogoID, item.ProjectID, item.Name, item.ObjectKey, item.Status, item.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert mockup: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateMockup(ctx context.Context, orgID, mockupID, name string, projectID *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE mockups SET name=$3, project_id=$4, updated_at=NOW()
		WHERE org_id=$1 AND id=$2
	`, orgID, mockupID, name, projectID)
	if err != nil {
		return fmt.Errorf("update mockup: %w", err)
	}
	return nil
}

// SetMockupReviewState writes the workflow transition result in one statement.
func (s *PostgresStore) SetMockupReviewState(ctx context.Context, mockupID, status string, stagePosition, round int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE mockups SET status=$2, stage_position=$3, round=$4, updated_at=NOW()
		WHERE id=$1
	`, mockupID, status, stagePosition, round)
	if err != nil {
		return fmt.Errorf("set mockup review state: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteMockup(ctx context.Context, orgID, mockupID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM mockups WHERE org_id=$1 AND id=$2`, orgID, mockupID)
	if err != nil {
		return fmt.Errorf("delete mockup: %w", err)
	}
	return nil
}
