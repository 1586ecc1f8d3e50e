package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `
	u.id, u.org_id, u.display_name, u.email, u.password_hash, u.external_id,
	u.is_email_verified, u.verification_token, u.deactivated_at,
	COALESCE(m.role, 'client'), m.client_id, u.created_at, u.updated_at
`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.OrgID,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.ExternalID,
		&user.IsEmailVerified,
		&user.VerificationToken,
		&user.DeactivatedAt,
		&user.Role,
		&user.ClientID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN org_memberships m ON m.user_id = u.id
		WHERE u.id=$1 AND u.deactivated_at IS NULL
	`, userID)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN org_memberships m ON m.user_id = u.id
		WHERE LOWER(u.email)=LOWER($1) AND u.deactivated_at IS NULL
	`, email)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByExternalID(ctx context.Context, orgID, externalID string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN org_memberships m ON m.user_id = u.id
		WHERE u.org_id=$1 AND u.external_id=$2
	`, orgID, externalID)
	return scanUser(row)
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, org_id, display_name, email, password_hash, external_id, is_email_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.OrgID, user.DisplayName, user.Email, user.PasswordHash, user.ExternalID, user.IsEmailVerified, user.VerificationToken)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	role := user.Role
	if role == "" {
		role = "member"
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO org_memberships (user_id, org_id, role, client_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET role=EXCLUDED.role, client_id=EXCLUDED.client_id
	`, user.ID, user.OrgID, role, user.ClientID); err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, userID, displayName, email string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name=$2, email=$3, updated_at=NOW()
		WHERE id=$1
	`, userID, displayName, email)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateMembership(ctx context.Context, userID, role string, clientID *string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE org_memberships SET role=$2, client_id=$3 WHERE user_id=$1
	`, userID, role, clientID)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update membership rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) DeactivateUser(ctx context.Context, orgID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET deactivated_at=NOW(), updated_at=NOW()
		WHERE id=$1 AND org_id=$2 AND deactivated_at IS NULL
	`, userID, orgID)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate user rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, orgID string) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users u
		LEFT JOIN org_memberships m ON m.user_id = u.id
		WHERE u.org_id=$1 AND u.deactivated_at IS NULL
		ORDER BY u.created_at ASC
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	items := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		items = append(items, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) CreateOrganization(ctx context.Context, org Organization) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, slug)
		VALUES ($1, $2, $3)
	`, org.ID, org.Name, org.Slug)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOrganization(ctx context.Context, orgID string) (Organization, error) {
	var org Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at, updated_at FROM organizations WHERE id=$1
	`, orgID).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return Organization{}, err
	}
	return org, nil
}

func (s *PostgresStore) GetOrganizationBySlug(ctx context.Context, slug string) (Organization, error) {
	var org Organization
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, created_at, updated_at FROM organizations WHERE slug=$1
	`, slug).Scan(&org.ID, &org.Name, &org.Slug, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return Organization{}, err
	}
	return org, nil
}

// Refresh sessions (Postgres fallback when Redis is not configured)

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash string, user User, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, user.ID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		LEFT JOIN org_memberships m ON m.user_id = u.id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
			AND u.deactivated_at IS NULL
	`, tokenHash)
	return scanUser(row)
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// Email verification and password resets (authpw.UserStore)

func (s *PostgresStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token=$2, verification_expires_at=$3, updated_at=NOW()
		WHERE id=$1
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyUserEmail(ctx context.Context, token string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified=TRUE, verification_token='', verification_expires_at=NULL, updated_at=NOW()
		WHERE verification_token=$1 AND verification_token <> '' AND (verification_expires_at IS NULL OR verification_expires_at > NOW())
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1
	`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token=$1 AND used_at IS NULL AND expires_at > NOW()
	`, token).Scan(&userID)
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	return nil
}

// Notifications

func (s *PostgresStore) InsertNotification(ctx context.Context, n Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (org_id, user_id, kind, subject, body, mockup_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.OrgID, n.UserID, n.Kind, n.Subject, n.Body, n.MockupID)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, user_id, kind, subject, body, mockup_id, read_at, created_at
		FROM notifications
		WHERE user_id=$1 AND (NOT $2::boolean OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var item Notification
		if err := rows.Scan(&item.ID, &item.OrgID, &item.UserID, &item.Kind, &item.Subject, &item.Body, &item.MockupID, &item.ReadAt, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) MarkNotificationsRead(ctx context.Context, userID string, ids []int64) error {
	if len(ids) == 0 {
		_, err := s.db.ExecContext(ctx, `UPDATE notifications SET read_at=NOW() WHERE user_id=$1 AND read_at IS NULL`, userID)
		if err != nil {
			return fmt.Errorf("mark notifications read: %w", err)
		}
		return nil
	}
	for _, id := range ids {
		if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET read_at=NOW() WHERE user_id=$1 AND id=$2`, userID, id); err != nil {
			return fmt.Errorf("mark notification %d read: %w", id, err)
		}
	}
	return nil
}

// Summary backs the dashboard header counts.
func (s *PostgresStore) SummaryCounts(ctx context.Context, orgID string) (Summary, error) {
	var out Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM brands WHERE org_id=$1),
			(SELECT COUNT(*) FROM templates WHERE org_id=$1),
			(SELECT COUNT(*) FROM mockups WHERE org_id=$1 AND status='in_review'),
			(SELECT COUNT(*) FROM mockups WHERE org_id=$1 AND status='approved'),
			(SELECT COUNT(*) FROM contracts WHERE org_id=$1 AND status='sent')
	`, orgID).Scan(&out.Brands, &out.Templates, &out.MockupsInReview, &out.MockupsApproved, &out.ContractsAwaiting)
	if err != nil {
		return Summary{}, fmt.Errorf("summary counts: %w", err)
	}
	return out, nil
}

// WebhookEventSeen reports whether a provider event ID was already
// processed to completion.
func (s *PostgresStore) WebhookEventSeen(ctx context.Context, provider, eventID string) (bool, error) {
	var seen bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM webhook_events WHERE provider=$1 AND event_id=$2)
	`, provider, eventID).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("check webhook event: %w", err)
	}
	return seen, nil
}

// MarkWebhookEvent records a provider event ID once its effects are
// applied. Marking only after processing keeps transient failures
// retryable: the provider's redelivery is not mistaken for a replay.
func (s *PostgresStore) MarkWebhookEvent(ctx context.Context, provider, eventID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO webhook_events (provider, event_id)
		VALUES ($1, $2)
		ON CONFLICT (provider, event_id) DO NOTHING
	`, provider, eventID)
	if err != nil {
		return fmt.Errorf("mark webhook event: %w", err)
	}
	return nil
}
