package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *PostgresStore) ListProjects(ctx context.Context, orgID string, clientID *string) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, client_id, name, description, created_by, created_at, updated_at
		FROM projects
		WHERE org_id=$1 AND ($2::text IS NULL OR client_id=$2)
		ORDER BY updated_at DESC
	`, orgID, clientID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		var item Project
		if err := rows.Scan(&item.ID, &item.OrgID, &item.ClientID, &item.Name, &item.Description, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, orgID, projectID string) (Project, error) {
	var item Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, client_id, name, description, created_by, created_at, updated_at
		FROM projects
		WHERE org_id=$1 AND id=$2
	`, orgID, projectID).Scan(&item.ID, &item.OrgID, &item.ClientID, &item.Name, &item.Description, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return item, nil
}

func (s *PostgresStore) InsertProject(ctx context.Context, item Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, org_id, client_id, name, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, item.OrgID, item.ClientID, item.Name, item.Description, item.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProject(ctx context.Context, item Project) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name=$3, description=$4, client_id=$5, updated_at=NOW()
		WHERE org_id=$1 AND id=$2
	`, item.OrgID, item.ID, item.Name, item.Description, item.ClientID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteProject(ctx context.Context, orgID, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE org_id=$1 AND id=$2`, orgID, projectID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListStages(ctx context.Context, projectID string) ([]WorkflowStage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, position, name, min_approvals
		FROM workflow_stages
		WHERE project_id=$1
		ORDER BY position
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	items := make([]WorkflowStage, 0)
	for rows.Next() {
		var item WorkflowStage
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Position, &item.Name, &item.MinApprovals); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetStageByPosition(ctx context.Context, projectID string, position int) (WorkflowStage, error) {
	var item WorkflowStage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, position, name, min_approvals
		FROM workflow_stages
		WHERE project_id=$1 AND position=$2
	`, projectID, position).Scan(&item.ID, &item.ProjectID, &item.Position, &item.Name, &item.MinApprovals)
	if err != nil {
		return WorkflowStage{}, err
	}
	return item, nil
}

func (s *PostgresStore) StageCount(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflow_stages WHERE project_id=$1`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stages: %w", err)
	}
	return count, nil
}

// ReplaceWorkflow swaps a project's stages and reviewers in one transaction.
// Approval rows of earlier rounds cascade away with the old stages.
func (s *PostgresStore) ReplaceWorkflow(ctx context.Context, projectID string, stages []WorkflowStage, reviewers []StageReviewer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin workflow tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_stages WHERE project_id=$1`, projectID); err != nil {
		return fmt.Errorf("clear stages: %w", err)
	}
	for _, st := range stages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO workflow_stages (id, project_id, position, name, min_approvals)
			VALUES ($1, $2, $3, $4, $5)
		`, st.ID, projectID, st.Position, st.Name, st.MinApprovals)
		if err != nil {
			return fmt.Errorf("insert stage: %w", err)
		}
	}
	for _, rv := range reviewers {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stage_reviewers (id, stage_id, user_id, email, share_token)
			VALUES ($1, $2, $3, $4, $5)
		`, rv.ID, rv.StageID, rv.UserID, rv.Email, rv.ShareToken)
		if err != nil {
			return fmt.Errorf("insert reviewer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit workflow tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListStageReviewers(ctx context.Context, stageID string) ([]StageReviewer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stage_id, user_id, email, share_token, created_at
		FROM stage_reviewers
		WHERE stage_id=$1
		ORDER BY created_at
	`, stageID)
	if err != nil {
		return nil, fmt.Errorf("list stage reviewers: %w", err)
	}
	defer rows.Close()

	items := make([]StageReviewer, 0)
	for rows.Next() {
		var item StageReviewer
		if err := rows.Scan(&item.ID, &item.StageID, &item.UserID, &item.Email, &item.ShareToken, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stage reviewer: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage reviewers: %w", err)
	}
	return items, nil
}

// FindStageReviewerForUser resolves an org user's reviewer row for a stage,
// sql.ErrNoRows when the user is not assigned to it.
func (s *PostgresStore) FindStageReviewerForUser(ctx context.Context, stageID, userID string) (StageReviewer, error) {
	var item StageReviewer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, stage_id, user_id, email, share_token, created_at
		FROM stage_reviewers
		WHERE stage_id=$1 AND user_id=$2
	`, stageID, userID).Scan(&item.ID, &item.StageID, &item.UserID, &item.Email, &item.ShareToken, &item.CreatedAt)
	if err != nil {
		return StageReviewer{}, err
	}
	return item, nil
}

// ShareContext is everything a public share link resolves to.
type ShareContext struct {
	Reviewer StageReviewer
	Stage    WorkflowStage
	Project  Project
}

func (s *PostgresStore) GetReviewerByToken(ctx context.Context, token string) (ShareContext, error) {
	var sc ShareContext
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.stage_id, r.user_id, r.email, r.share_token, r.created_at,
		       st.id, st.project_id, st.position, st.name, st.min_approvals,
		       p.id, p.org_id, p.client_id, p.name, p.description, p.created_by, p.created_at, p.updated_at
		FROM stage_reviewers r
		JOIN workflow_stages st ON st.id = r.stage_id
		JOIN projects p ON p.id = st.project_id
		WHERE r.share_token=$1
	`, token).Scan(
		&sc.Reviewer.ID, &sc.Reviewer.StageID, &sc.Reviewer.UserID, &sc.Reviewer.Email, &sc.Reviewer.ShareToken, &sc.Reviewer.CreatedAt,
		&sc.Stage.ID, &sc.Stage.ProjectID, &sc.Stage.Position, &sc.Stage.Name, &sc.Stage.MinApprovals,
		&sc.Project.ID, &sc.Project.OrgID, &sc.Project.ClientID, &sc.Project.Name, &sc.Project.Description, &sc.Project.CreatedBy, &sc.Project.CreatedAt, &sc.Project.UpdatedAt,
	)
	if err != nil {
		return ShareContext{}, err
	}
	return sc, nil
}

// UpsertStageApproval records a decision; a repeat decision by the same
// reviewer in the same round overwrites the earlier one.
func (s *PostgresStore) UpsertStageApproval(ctx context.Context, item StageApproval) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stage_approvals (id, mockup_id, stage_id, reviewer_id, round, decision, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (mockup_id, stage_id, reviewer_id, round)
		DO UPDATE SET decision=EXCLUDED.decision, comment=EXCLUDED.comment, decided_at=NOW()
	`, item.ID, item.MockupID, item.StageID, item.ReviewerID, item.Round, item.Decision, item.Comment)
	if err != nil {
		return fmt.Errorf("upsert stage approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) StageApprovalCount(ctx context.Context, mockupID, stageID string, round int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT stage_approval_count($1, $2, $3)`, mockupID, stageID, round).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("stage approval count: %w", err)
	}
	return count, nil
}

// ListApprovalBoard returns the full per-stage reviewer grid for a mockup,
// with decisions from the mockup's current round where they exist.
func (s *PostgresStore) ListApprovalBoard(ctx context.Context, mockupID string) ([]ApprovalBoardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT st.id, st.position, st.name, st.min_approvals,
		       r.id, COALESCE(u.display_name, ''), COALESCE(u.email, r.email),
		       r.user_id IS NULL,
		       COALESCE(a.decision, ''), COALESCE(a.comment, ''), a.decided_at
		FROM mockups mk
		JOIN workflow_stages st ON st.project_id = mk.project_id
		JOIN stage_reviewers r ON r.stage_id = st.id
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN stage_approvals a
		       ON a.stage_id = st.id AND a.reviewer_id = r.id
		      AND a.mockup_id = mk.id AND a.round = mk.round
		WHERE mk.id=$1
		ORDER BY st.position, r.created_at
	`, mockupID)
	if err != nil {
		return nil, fmt.Errorf("list approval board: %w", err)
	}
	defer rows.Close()

	items := make([]ApprovalBoardRow, 0)
	for rows.Next() {
		var item ApprovalBoardRow
		var decidedAt sql.NullTime
		if err := rows.Scan(&item.StageID, &item.StagePosition, &item.StageName, &item.MinApprovals,
			&item.ReviewerID, &item.ReviewerName, &item.ReviewerEmail, &item.External,
			&item.Decision, &item.Comment, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan approval board row: %w", err)
		}
		if decidedAt.Valid {
			t := decidedAt.Time
			item.DecidedAt = &t
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approval board: %w", err)
	}
	return items, nil
}

// InReviewCountByProject guards workflow edits while reviews are running.
func (s *PostgresStore) InReviewCountByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM mockups WHERE project_id=$1 AND status='in_review'
	`, projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count in-review mockups: %w", err)
	}
	return count, nil
}
