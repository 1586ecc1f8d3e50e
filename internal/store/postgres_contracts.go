package store

import (
	"context"
	"fmt"
	"time"
)

const contractColumns = `
	id, org_id, client_id, title, object_key, status, envelope_id,
	signer_name, signer_email, created_by, sent_at, completed_at, created_at, updated_at
`

func scanContract(row interface{ Scan(...any) error }) (Contract, error) {
	var item Contract
	err := row.Scan(
		&item.ID,
		&item.OrgID,
		&item.ClientID,
		&item.Title,
		&item.ObjectKey,
		&item.Status,
		&item.EnvelopeID,
		&item.SignerName,
		&item.SignerEmail,
		&item.CreatedBy,
		&item.SentAt,
		&item.CompletedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (s *PostgresStore) ListContracts(ctx context.Context, orgID, clientID string) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE org_id=$1 AND ($2='' OR client_id=$2)
		ORDER BY updated_at DESC
	`, orgID, clientID)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	items := make([]Contract, 0)
	for rows.Next() {
		item, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetContract(ctx context.Context, orgID, contractID string) (Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE org_id=$1 AND id=$2
	`, orgID, contractID)
	return scanContract(row)
}

func (s *PostgresStore) InsertContract(ctx context.Context, item Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, org_id, client_id, title, object_key, status, signer_name, signer_email, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.OrgID, item.ClientID, item.Title, item.ObjectKey, item.Status, item.SignerName, item.SignerEmail, item.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert contract: %w", err)
	}
	return nil
}

// UpdateContractSent moves a draft to sent and pins the provider envelope.
func (s *PostgresStore) UpdateContractSent(ctx context.Context, contractID, envelopeID string, sentAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contracts SET status='sent', envelope_id=$2, sent_at=$3, updated_at=NOW()
		WHERE id=$1
	`, contractID, envelopeID, sentAt)
	if err != nil {
		return fmt.Errorf("mark contract sent: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetContractByEnvelope(ctx context.Context, envelopeID string) (Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE envelope_id=$1
	`, envelopeID)
	return scanContract(row)
}

func (s *PostgresStore) UpdateContractStatus(ctx context.Context, contractID, status string, completedAt *time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE contracts SET status=$2, completed_at=COALESCE($3, completed_at), updated_at=NOW()
		WHERE id=$1
	`, contractID, status, completedAt)
	if err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteContract(ctx context.Context, orgID, contractID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE org_id=$1 AND id=$2 AND status='draft'`, orgID, contractID)
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	return nil
}
