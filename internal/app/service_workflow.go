package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"emblem/api/internal/rbac"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

func (s *Service) ListProjects(ctx context.Context, session Session) ([]map[string]any, error) {
	projects, err := s.store.ListProjects(ctx, session.OrgID, clientScope(session))
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(projects))
	for _, project := range projects {
		items = append(items, projectPayload(project))
	}
	return items, nil
}

func projectPayload(project store.Project) map[string]any {
	item := map[string]any{
		"id":          project.ID,
		"name":        project.Name,
		"description": project.Description,
		"createdBy":   project.CreatedBy,
		"createdAt":   project.CreatedAt,
	}
	if project.ClientID != nil {
		item["clientId"] = *project.ClientID
	}
	return item
}

type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ClientID    string `json:"clientId"`
}

func (s *Service) GetProjectDetail(ctx context.Context, session Session, projectID string) (map[string]any, error) {
	project, err := s.store.GetProject(ctx, session.OrgID, projectID)
	if err != nil {
		return nil, err
	}
	if scope := clientScope(session); scope != nil {
		if project.ClientID == nil || *project.ClientID != *scope {
			return nil, forbiddenError()
		}
	}
	return projectPayload(project), nil
}

func (s *Service) CreateProject(ctx context.Context, session Session, input ProjectInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}

	var clientID *string
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		clientID = &value
	}

	project := store.Project{
		ID:          util.NewID("prj"),
		OrgID:       session.OrgID,
		ClientID:    clientID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   session.UserID,
	}
	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, err
	}
	return projectPayload(project), nil
}

func (s *Service) UpdateProject(ctx context.Context, session Session, projectID string, input ProjectInput) (map[string]any, error) {
	project, err := s.store.GetProject(ctx, session.OrgID, projectID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		project.Name = name
	}
	if input.Description != "" {
		project.Description = strings.TrimSpace(input.Description)
	}
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		project.ClientID = &value
	}
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	return projectPayload(project), nil
}

func (s *Service) DeleteProject(ctx context.Context, session Session, projectID string) error {
	if _, err := s.store.GetProject(ctx, session.OrgID, projectID); err != nil {
		return err
	}
	inReview, err := s.store.InReviewCountByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if inReview > 0 {
		return conflictError("WORKFLOW_IN_USE", "Project has mockups in review")
	}
	return s.store.DeleteProject(ctx, session.OrgID, projectID)
}

func (s *Service) GetWorkflow(ctx context.Context, session Session, projectID string) (map[string]any, error) {
	if _, err := s.store.GetProject(ctx, session.OrgID, projectID); err != nil {
		return nil, err
	}
	stages, err := s.store.ListStages(ctx, projectID)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(stages))
	for _, stage := range stages {
		reviewers, err := s.store.ListStageReviewers(ctx, stage.ID)
		if err != nil {
			return nil, err
		}
		reviewerItems := make([]map[string]any, 0, len(reviewers))
		for _, reviewer := range reviewers {
			item := map[string]any{"id": reviewer.ID}
			if reviewer.UserID != nil {
				item["userId"] = *reviewer.UserID
			} else {
				item["email"] = reviewer.Email
				item["external"] = true
			}
			reviewerItems = append(reviewerItems, item)
		}
		items = append(items, map[string]any{
			"id":           stage.ID,
			"position":     stage.Position,
			"name":         stage.Name,
			"minApprovals": stage.MinApprovals,
			"reviewers":    reviewerItems,
		})
	}
	return map[string]any{"projectId": projectID, "stages": items}, nil
}

type WorkflowStageInput struct {
	Name         string                  `json:"name"`
	MinApprovals int                     `json:"minApprovals"`
	Reviewers    []WorkflowReviewerInput `json:"reviewers"`
}

type WorkflowReviewerInput struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// ReplaceWorkflow swaps a project's stage list wholesale. Refused while
// any mockup is mid-review so open rounds never point at dead stages.
func (s *Service) ReplaceWorkflow(ctx context.Context, session Session, projectID string, inputs []WorkflowStageInput) (map[string]any, error) {
	if _, err := s.store.GetProject(ctx, session.OrgID, projectID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, validationError("at least one stage is required")
	}

	inReview, err := s.store.InReviewCountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if inReview > 0 {
		return nil, conflictError("WORKFLOW_IN_USE", "Project has mockups in review")
	}

	stages := make([]store.WorkflowStage, 0, len(inputs))
	reviewers := make([]store.StageReviewer, 0)
	for i, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, validationError("every stage needs a name")
		}
		if len(input.Reviewers) == 0 {
			return nil, validationError("every stage needs at least one reviewer")
		}
		minApprovals := input.MinApprovals
		if minApprovals <= 0 {
			minApprovals = 1
		}
		if minApprovals > len(input.Reviewers) {
			return nil, validationError("minApprovals cannot exceed the reviewer count")
		}

		stage := store.WorkflowStage{
			ID:           util.NewID("stg"),
			ProjectID:    projectID,
			Position:     i + 1,
			Name:         name,
			MinApprovals: minApprovals,
		}
		stages = append(stages, stage)

		for _, reviewerInput := range input.Reviewers {
			reviewer := store.StageReviewer{
				ID:      util.NewID("rvw"),
				StageID: stage.ID,
			}
			switch {
			case strings.TrimSpace(reviewerInput.UserID) != "":
				user, err := s.store.GetUserByID(ctx, reviewerInput.UserID)
				if err != nil {
					return nil, err
				}
				if user.OrgID != session.OrgID {
					return nil, forbiddenError()
				}
				userID := user.ID
				reviewer.UserID = &userID
				reviewer.Email = user.Email
			case strings.TrimSpace(reviewerInput.Email) != "":
				reviewer.Email = strings.ToLower(strings.TrimSpace(reviewerInput.Email))
				reviewer.ShareToken = util.NewID("shr") + util.NewID("")
			default:
				return nil, validationError("a reviewer needs a userId or an email")
			}
			reviewers = append(reviewers, reviewer)
		}
	}

	if err := s.store.ReplaceWorkflow(ctx, projectID, stages, reviewers); err != nil {
		return nil, err
	}
	return s.GetWorkflow(ctx, session, projectID)
}

// SubmitMockup opens a new review round: stage 1, round+1. Approvals
// count per round, so the bump implicitly discards stale decisions.
func (s *Service) SubmitMockup(ctx context.Context, session Session, mockupID string) (map[string]any, error) {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	if mockup.Status != "draft" && mockup.Status != "changes_requested" {
		return nil, conflictError("INVALID_TRANSITION", "Only draft or changes-requested mockups can be submitted")
	}
	if mockup.ProjectID == nil {
		return nil, validationError("mockup is not attached to a project")
	}
	stageCount, err := s.store.StageCount(ctx, *mockup.ProjectID)
	if err != nil {
		return nil, err
	}
	if stageCount == 0 {
		return nil, conflictError("NO_WORKFLOW", "Project has no review workflow")
	}

	round := mockup.Round + 1
	if err := s.store.SetMockupReviewState(ctx, mockupID, "in_review", 1, round); err != nil {
		return nil, err
	}
	mockup.Status = "in_review"
	mockup.StagePosition = 1
	mockup.Round = round

	s.notifyStageReviewers(ctx, mockup, 1)
	s.indexMockup(ctx, mockup)
	return s.mockupPayload(ctx, mockup), nil
}

type ReviewInput struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// ReviewMockup records an org reviewer's decision on the current stage.
// Re-reviews by the same reviewer overwrite their earlier decision.
func (s *Service) ReviewMockup(ctx context.Context, session Session, mockupID string, input ReviewInput) (map[string]any, error) {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	if mockup.Status != "in_review" {
		return nil, conflictError("NOT_IN_REVIEW", "Mockup is not in review")
	}
	stage, err := s.store.GetStageByPosition(ctx, *mockup.ProjectID, mockup.StagePosition)
	if err != nil {
		return nil, err
	}

	reviewer, err := s.store.FindStageReviewerForUser(ctx, stage.ID, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, forbiddenError()
		}
		return nil, err
	}

	return s.applyDecision(ctx, mockup, stage, reviewer, input)
}

// ShareView is the unauthenticated reviewer page behind a share token.
func (s *Service) ShareView(ctx context.Context, token string) (map[string]any, error) {
	share, err := s.store.GetReviewerByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	mockups, err := s.store.ListMockups(ctx, share.Project.OrgID, store.MockupFilter{
		ProjectID: share.Project.ID,
		Status:    "in_review",
	})
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0)
	for _, mockup := range mockups {
		if mockup.StagePosition != share.Stage.Position {
			continue
		}
		item := map[string]any{
			"id":    mockup.ID,
			"name":  mockup.Name,
			"round": mockup.Round,
		}
		if url := s.presignGet(ctx, mockup.ObjectKey); url != "" {
			item["imageUrl"] = url
		}
		board, err := s.approvalBoard(ctx, mockup)
		if err != nil {
			return nil, err
		}
		item["approvals"] = board
		items = append(items, item)
	}

	return map[string]any{
		"projectName": share.Project.Name,
		"stageName":   share.Stage.Name,
		"reviewer":    share.Reviewer.Email,
		"mockups":     items,
	}, nil
}

// ReviewByShareToken records an external reviewer's decision. The token
// pins both the reviewer identity and the stage.
func (s *Service) ReviewByShareToken(ctx context.Context, token, mockupID string, input ReviewInput) (map[string]any, error) {
	share, err := s.store.GetReviewerByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	mockup, err := s.store.GetMockup(ctx, share.Project.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	if mockup.Status != "in_review" {
		return nil, conflictError("NOT_IN_REVIEW", "Mockup is not in review")
	}
	if mockup.ProjectID == nil || *mockup.ProjectID != share.Project.ID {
		return nil, forbiddenError()
	}
	if mockup.StagePosition != share.Stage.Position {
		return nil, forbiddenError()
	}

	return s.applyDecision(ctx, mockup, share.Stage, share.Reviewer, input)
}

// applyDecision is the shared core of internal and external reviews:
// upsert the decision, then advance, finish, or bounce the mockup.
func (s *Service) applyDecision(ctx context.Context, mockup store.Mockup, stage store.WorkflowStage, reviewer store.StageReviewer, input ReviewInput) (map[string]any, error) {
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	if decision != "approved" && decision != "rejected" {
		return nil, validationError("decision must be approved or rejected")
	}

	if err := s.store.UpsertStageApproval(ctx, store.StageApproval{
		ID:         util.NewID("apv"),
		MockupID:   mockup.ID,
		StageID:    stage.ID,
		ReviewerID: reviewer.ID,
		Round:      mockup.Round,
		Decision:   decision,
		Comment:    strings.TrimSpace(input.Comment),
	}); err != nil {
		return nil, err
	}

	if decision == "rejected" {
		// Bump the round so every stale approval falls out of quorum.
		if err := s.store.SetMockupReviewState(ctx, mockup.ID, "changes_requested", 1, mockup.Round+1); err != nil {
			return nil, err
		}
		mockup.Status = "changes_requested"
		mockup.StagePosition = 1
		mockup.Round++
		s.notifyCreator(ctx, mockup, "changes_requested",
			"Changes requested on "+mockup.Name,
			strings.TrimSpace(input.Comment))
		s.indexMockup(ctx, mockup)
		return s.mockupPayload(ctx, mockup), nil
	}

	approvals, err := s.store.StageApprovalCount(ctx, mockup.ID, stage.ID, mockup.Round)
	if err != nil {
		return nil, err
	}
	if approvals < stage.MinApprovals {
		return s.mockupPayload(ctx, mockup), nil
	}

	stageCount, err := s.store.StageCount(ctx, *mockup.ProjectID)
	if err != nil {
		return nil, err
	}
	if mockup.StagePosition >= stageCount {
		if err := s.store.SetMockupReviewState(ctx, mockup.ID, "approved", mockup.StagePosition, mockup.Round); err != nil {
			return nil, err
		}
		mockup.Status = "approved"
		s.notifyCreator(ctx, mockup, "approved", mockup.Name+" is approved", "")
		s.indexMockup(ctx, mockup)
		return s.mockupPayload(ctx, mockup), nil
	}

	nextPosition := mockup.StagePosition + 1
	if err := s.store.SetMockupReviewState(ctx, mockup.ID, "in_review", nextPosition, mockup.Round); err != nil {
		return nil, err
	}
	mockup.StagePosition = nextPosition
	s.notifyStageReviewers(ctx, mockup, nextPosition)
	return s.mockupPayload(ctx, mockup), nil
}

// ResetMockup returns an in-flight mockup to draft. Creator or admin.
func (s *Service) ResetMockup(ctx context.Context, session Session, mockupID string) (map[string]any, error) {
	mockup, err := s.store.GetMockup(ctx, session.OrgID, mockupID)
	if err != nil {
		return nil, err
	}
	if mockup.CreatedBy != session.UserID && rbac.Normalize(session.Role) != rbac.RoleAdmin {
		return nil, forbiddenError()
	}
	if mockup.Status != "in_review" && mockup.Status != "changes_requested" {
		return nil, conflictError("INVALID_TRANSITION", "Only in-review or changes-requested mockups can be reset")
	}

	if err := s.store.SetMockupReviewState(ctx, mockupID, "draft", 0, mockup.Round); err != nil {
		return nil, err
	}
	mockup.Status = "draft"
	mockup.StagePosition = 0
	s.indexMockup(ctx, mockup)
	return s.mockupPayload(ctx, mockup), nil
}

func (s *Service) MockupApprovals(ctx context.Context, session Session, mockupID string) (map[string]any, error) {
	mockup, err := s.mockupForSession(ctx, session, mockupID)
	if err != nil {
		return nil, err
	}
	board, err := s.approvalBoard(ctx, mockup)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"mockupId":      mockup.ID,
		"status":        mockup.Status,
		"stagePosition": mockup.StagePosition,
		"round":         mockup.Round,
		"stages":        board,
	}, nil
}

// approvalBoard groups the joined reviewer/decision rows per stage.
func (s *Service) approvalBoard(ctx context.Context, mockup store.Mockup) ([]map[string]any, error) {
	rows, err := s.store.ListApprovalBoard(ctx, mockup.ID)
	if err != nil {
		return nil, err
	}

	board := make([]map[string]any, 0)
	var current map[string]any
	for _, row := range rows {
		if current == nil || current["stageId"] != row.StageID {
			current = map[string]any{
				"stageId":      row.StageID,
				"position":     row.StagePosition,
				"name":         row.StageName,
				"minApprovals": row.MinApprovals,
				"reviews":      []map[string]any{},
			}
			board = append(board, current)
		}
		review := map[string]any{
			"reviewerId": row.ReviewerID,
			"name":       firstNonBlank(row.ReviewerName, row.ReviewerEmail),
			"external":   row.External,
		}
		if row.Decision != "" {
			review["decision"] = row.Decision
			review["comment"] = row.Comment
			if row.DecidedAt != nil {
				review["decidedAt"] = *row.DecidedAt
			}
		}
		current["reviews"] = append(current["reviews"].([]map[string]any), review)
	}
	return board, nil
}

// notifyStageReviewers fans out notification rows and emails to every
// reviewer of the given stage. Best effort throughout.
func (s *Service) notifyStageReviewers(ctx context.Context, mockup store.Mockup, position int) {
	if mockup.ProjectID == nil {
		return
	}
	stage, err := s.store.GetStageByPosition(ctx, *mockup.ProjectID, position)
	if err != nil {
		return
	}
	project, err := s.store.GetProject(ctx, mockup.OrgID, *mockup.ProjectID)
	if err != nil {
		return
	}
	reviewers, err := s.store.ListStageReviewers(ctx, stage.ID)
	if err != nil {
		return
	}

	mockupID := mockup.ID
	for _, reviewer := range reviewers {
		if reviewer.UserID != nil {
			s.notify(ctx, mockup.OrgID, *reviewer.UserID, "review_requested",
				"Review requested: "+mockup.Name,
				"Stage "+stage.Name+" of "+project.Name, &mockupID)
		}
		if !s.SMTPConfigured() || reviewer.Email == "" {
			continue
		}
		reviewURL := s.appURL("/mockups/" + mockup.ID)
		reviewerName := reviewer.Email
		if reviewer.UserID == nil {
			reviewURL = s.appURL("/share/" + reviewer.ShareToken)
		} else if user, err := s.store.GetUserByID(ctx, *reviewer.UserID); err == nil {
			reviewerName = user.DisplayName
		}
		_ = s.mail.SendReviewRequestEmail(reviewer.Email, reviewerName, mockup.Name, project.Name, stage.Name, reviewURL)
	}
}

// notifyCreator tells the mockup creator about a terminal decision.
func (s *Service) notifyCreator(ctx context.Context, mockup store.Mockup, kind, subject, comment string) {
	mockupID := mockup.ID
	s.notify(ctx, mockup.OrgID, mockup.CreatedBy, kind, subject, comment, &mockupID)

	if !s.SMTPConfigured() {
		return
	}
	creator, err := s.store.GetUserByID(ctx, mockup.CreatedBy)
	if err != nil || creator.Email == "" {
		return
	}
	mockupURL := s.appURL("/mockups/" + mockup.ID)
	if kind == "approved" {
		_ = s.mail.SendMockupApprovedEmail(creator.Email, creator.DisplayName, mockup.Name, mockupURL)
		return
	}
	_ = s.mail.SendChangesRequestedEmail(creator.Email, creator.DisplayName, mockup.Name, comment, mockupURL)
}
