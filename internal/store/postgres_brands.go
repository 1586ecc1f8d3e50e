package store

import (
	"context"
	"fmt"
)

func (s *PostgresStore) ListClients(ctx context.Context, orgID string) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, contact_name, contact_email, website, created_at, updated_at
		FROM clients
		WHERE org_id=$1
		ORDER BY name ASC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		var item Client
		if err := rows.Scan(&item.ID, &item.OrgID, &item.Name, &item.ContactName, &item.ContactEmail, &item.Website, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetClient(ctx context.Context, orgID, clientID string) (Client, error) {
	var item Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, contact_name, contact_email, website, created_at, updated_at
		FROM clients
		WHERE org_id=$1 AND id=$2
	`, orgID, clientID).Scan(&item.ID, &item.OrgID, &item.Name, &item.ContactName, &item.ContactEmail, &item.Website, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Client{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertClient(ctx context.Context, client Client) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, org_id, name, contact_name, contact_email, website)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, client.ID, client.OrgID, client.Name, client.ContactName, client.ContactEmail, client.Website)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateClient(ctx context.Context, client Client) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE clients
		SET name=$3, contact_name=$4, contact_email=$5, website=$6, updated_at=NOW()
		WHERE org_id=$1 AND id=$2
	`, client.OrgID, client.ID, client.Name, client.ContactName, client.ContactEmail, client.Website)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClientBrandCount(ctx context.Context, clientID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brands WHERE client_id=$1`, clientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count client brands: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteClient(ctx context.Context, orgID, clientID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE org_id=$1 AND id=$2`, orgID, clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBrands(ctx context.Context, orgID string, clientID *string) ([]Brand, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, client_id, name, domain, description, created_at, updated_at
		FROM brands
		WHERE org_id=$1 AND ($2::text IS NULL OR client_id=$2)
		ORDER BY updated_at DESC
	`, orgID, clientID)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	items := make([]Brand, 0)
	for rows.Next() {
		var item Brand
		if err := rows.Scan(&item.ID, &item.OrgID, &item.ClientID, &item.Name, &item.Domain, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brands: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetBrand(ctx context.Context, orgID, brandID string) (Brand, error) {
	var item Brand
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, client_id, name, domain, description, created_at, updated_at
		FROM brands
		WHERE org_id=$1 AND id=$2
	`, orgID, brandID).Scan(&item.ID, &item.OrgID, &item.ClientID, &item.Name, &item.Domain, &item.Description, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Brand{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertBrand(ctx context.Context, brand Brand) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brands (id, org_id, client_id, name, domain, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, brand.ID, brand.OrgID, brand.ClientID, brand.Name, brand.Domain, brand.Description)
	if err != nil {
		return fmt.Errorf("insert brand: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateBrand(ctx context.Context, brand Brand) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE brands
		SET client_id=$3, name=$4, domain=$5, description=$6, updated_at=NOW()
		WHERE org_id=$1 AND id=$2
	`, brand.OrgID, brand.ID, brand.ClientID, brand.Name, brand.Domain, brand.Description)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	return nil
}

func (s *PostgresStore) BrandMockupCount(ctx context.Context, brandID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mockups WHERE brand_id=$1`, brandID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count brand mockups: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteBrand(ctx context.Context, orgID, brandID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE org_id=$1 AND id=$2`, orgID, brandID)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	return nil
}

// Logo variants

func (s *PostgresStore) ListBrandLogos(ctx context.Context, brandID string) ([]BrandLogo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand_id, kind, theme, format, object_key, source_url, created_at
		FROM brand_logos
		WHERE brand_id=$1
		ORDER BY kind ASC, theme ASC
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand logos: %w", err)
	}
	defer rows.Close()

	items := make([]BrandLogo, 0)
	for rows.Next() {
		var item BrandLogo
		if err := rows.Scan(&item.ID, &item.BrandID, &item.Kind, &item.Theme, &item.Format, &item.ObjectKey, &item.SourceURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand logo: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand logos: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetBrandLogo(ctx context.Context, brandID, logoID string) (BrandLogo, error) {
	var item BrandLogo
	err := s.db.QueryRowContext(ctx, `
		SELECT id, brand_id, kind, theme, format, object_key, source_url, created_at
		FROM brand_logos
		WHERE brand_id=$1 AND id=$2
	`, brandID, logoID).Scan(&item.ID, &item.BrandID, &item.Kind, &item.Theme, &item.Format, &item.ObjectKey, &item.SourceURL, &item.CreatedAt)
	if err != nil {
		return BrandLogo{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertBrandLogo(ctx context.Context, logo BrandLogo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brand_logos (id, brand_id, kind, theme, format, object_key, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, logo.ID, logo.BrandID, logo.Kind, logo.Theme, logo.Format, logo.ObjectKey, logo.SourceURL)
	if err != nil {
		return fmt.Errorf("insert brand logo: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBrandLogo(ctx context.Context, brandID, logoID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM brand_logos WHERE brand_id=$1 AND id=$2`, brandID, logoID)
	if err != nil {
		return fmt.Errorf("delete brand logo: %w", err)
	}
	return nil
}

// Colors

func (s *PostgresStore) ListBrandColors(ctx context.Context, brandID string) ([]BrandColor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand_id, hex, kind, name, created_at
		FROM brand_colors
		WHERE brand_id=$1
		ORDER BY kind ASC, created_at ASC
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand colors: %w", err)
	}
	defer rows.Close()

	items := make([]BrandColor, 0)
	for rows.Next() {
		var item BrandColor
		if err := rows.Scan(&item.ID, &item.BrandID, &item.Hex, &item.Kind, &item.Name, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand color: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand colors: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertBrandColor(ctx context.Context, color BrandColor) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brand_colors (id, brand_id, hex, kind, name)
		VALUES ($1, $2, $3, $4, $5)
	`, color.ID, color.BrandID, color.Hex, color.Kind, color.Name)
	if err != nil {
		return fmt.Errorf("insert brand color: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBrandColor(ctx context.Context, brandID, colorID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM brand_colors WHERE brand_id=$1 AND id=$2`, brandID, colorID)
	if err != nil {
		return fmt.Errorf("delete brand color: %w", err)
	}
	return nil
}

// Fonts

func (s *PostgresStore) ListBrandFonts(ctx context.Context, brandID string) ([]BrandFont, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, brand_id, family, usage, source, created_at
		FROM brand_fonts
		WHERE brand_id=$1
		ORDER BY usage ASC, family ASC
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("list brand fonts: %w", err)
	}
	defer rows.Close()

	items := make([]BrandFont, 0)
	for rows.Next() {
		var item BrandFont
		if err := rows.Scan(&item.ID, &item.BrandID, &item.Family, &item.Usage, &item.Source, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan brand font: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand fonts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertBrandFont(ctx context.Context, font BrandFont) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brand_fonts (id, brand_id, family, usage, source)
		VALUES ($1, $2, $3, $4, $5)
	`, font.ID, font.BrandID, font.Family, font.Usage, font.Source)
	if err != nil {
		return fmt.Errorf("insert brand font: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBrandFont(ctx context.Context, brandID, fontID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM brand_fonts WHERE brand_id=$1 AND id=$2`, brandID, fontID)
	if err != nil {
		return fmt.Errorf("delete brand font: %w", err)
	}
	return nil
}
