package app

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"emblem/api/internal/authpw"
	"emblem/api/internal/config"
	"emblem/api/internal/search"
	"emblem/api/internal/store"
)

type fakeStore struct {
	getUserByIDFn              func(context.Context, string) (store.User, error)
	getUserByEmailFn           func(context.Context, string) (store.User, error)
	getUserByExternalIDFn      func(context.Context, string, string) (store.User, error)
	createUserFn               func(context.Context, store.User) error
	updateUserProfileFn        func(context.Context, string, string, string) error
	deactivateUserFn           func(context.Context, string, string) error
	createOrganizationFn       func(context.Context, store.Organization) error
	getOrganizationBySlugFn    func(context.Context, string) (store.Organization, error)
	isAccessTokenRevokedFn     func(context.Context, string) (bool, error)
	insertNotificationFn       func(context.Context, store.Notification) error
	summaryCountsFn            func(context.Context, string) (store.Summary, error)
	webhookEventSeenFn         func(context.Context, string, string) (bool, error)
	markWebhookEventFn         func(context.Context, string, string) error
	getClientFn                func(context.Context, string, string) (store.Client, error)
	clientBrandCountFn         func(context.Context, string) (int, error)
	listBrandsFn               func(context.Context, string, *string) ([]store.Brand, error)
	getBrandFn                 func(context.Context, string, string) (store.Brand, error)
	brandMockupCountFn         func(context.Context, string) (int, error)
	getTemplateFn              func(context.Context, string, string) (store.Template, error)
	templateMockupCountFn      func(context.Context, string) (int, error)
	listMockupsFn              func(context.Context, string, store.MockupFilter) ([]store.Mockup, error)
	getMockupFn                func(context.Context, string, string) (store.Mockup, error)
	setMockupReviewStateFn     func(context.Context, string, string, int, int) error
	getProjectFn               func(context.Context, string, string) (store.Project, error)
	stageCountFn               func(context.Context, string) (int, error)
	getStageByPositionFn       func(context.Context, string, int) (store.WorkflowStage, error)
	listStageReviewersFn       func(context.Context, string) ([]store.StageReviewer, error)
	findStageReviewerForUserFn func(context.Context, string, string) (store.StageReviewer, error)
	getReviewerByTokenFn       func(context.Context, string) (store.ShareContext, error)
	upsertStageApprovalFn      func(context.Context, store.StageApproval) error
	stageApprovalCountFn       func(context.Context, string, string, int) (int, error)
	listApprovalBoardFn        func(context.Context, string) ([]store.ApprovalBoardRow, error)
	inReviewCountByProjectFn   func(context.Context, string) (int, error)
	getContractFn              func(context.Context, string, string) (store.Contract, error)
	getContractByEnvelopeFn    func(context.Context, string) (store.Contract, error)
	updateContractStatusFn     func(context.Context, string, string, *time.Time) error
	verifyUserEmailFn          func(context.Context, string) error
	getPasswordResetFn         func(context.Context, string) (string, error)
	pingFn                     func(context.Context) error
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID string) (store.User, error) {
	if f.getUserByIDFn != nil {
		return f.getUserByIDFn(ctx, userID)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	if f.getUserByEmailFn != nil {
		return f.getUserByEmailFn(ctx, email)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) GetUserByExternalID(ctx context.Context, orgID, externalID string) (store.User, error) {
	if f.getUserByExternalIDFn != nil {
		return f.getUserByExternalIDFn(ctx, orgID, externalID)
	}
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) CreateUser(ctx context.Context, user store.User) error {
	if f.createUserFn != nil {
		return f.createUserFn(ctx, user)
	}
	return nil
}
func (f *fakeStore) UpdateUserProfile(ctx context.Context, userID, displayName, email string) error {
	if f.updateUserProfileFn != nil {
		return f.updateUserProfileFn(ctx, userID, displayName, email)
	}
	return nil
}
func (f *fakeStore) UpdateMembership(context.Context, string, string, *string) error { return nil }
func (f *fakeStore) DeactivateUser(ctx context.Context, orgID, userID string) error {
	if f.deactivateUserFn != nil {
		return f.deactivateUserFn(ctx, orgID, userID)
	}
	return nil
}
func (f *fakeStore) ListMembers(context.Context, string) ([]store.User, error) { return nil, nil }
func (f *fakeStore) CreateOrganization(ctx context.Context, org store.Organization) error {
	if f.createOrganizationFn != nil {
		return f.createOrganizationFn(ctx, org)
	}
	return nil
}
func (f *fakeStore) GetOrganization(context.Context, string) (store.Organization, error) {
	return store.Organization{}, nil
}
func (f *fakeStore) GetOrganizationBySlug(ctx context.Context, slug string) (store.Organization, error) {
	if f.getOrganizationBySlugFn != nil {
		return f.getOrganizationBySlugFn(ctx, slug)
	}
	return store.Organization{}, sql.ErrNoRows
}
func (f *fakeStore) CreatePasswordReset(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeStore) SaveRefreshSession(context.Context, string, store.User, time.Time) error {
	return nil
}
func (f *fakeStore) LookupRefreshSession(context.Context, string) (store.User, error) {
	return store.User{}, sql.ErrNoRows
}
func (f *fakeStore) RevokeRefreshSession(context.Context, string) error { return nil }
func (f *fakeStore) RevokeAccessToken(context.Context, string, time.Time) error {
	return nil
}
func (f *fakeStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if f.isAccessTokenRevokedFn != nil {
		return f.isAccessTokenRevokedFn(ctx, jti)
	}
	return false, nil
}
func (f *fakeStore) UpdateUserVerificationToken(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeStore) VerifyUserEmail(ctx context.Context, token string) error {
	if f.verifyUserEmailFn != nil {
		return f.verifyUserEmailFn(ctx, token)
	}
	return nil
}
func (f *fakeStore) UpdateUserPassword(context.Context, string, string) error { return nil }
func (f *fakeStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	if f.getPasswordResetFn != nil {
		return f.getPasswordResetFn(ctx, token)
	}
	return "", sql.ErrNoRows
}
func (f *fakeStore) MarkPasswordResetUsed(context.Context, string) error { return nil }
func (f *fakeStore) InsertNotification(ctx context.Context, n store.Notification) error {
	if f.insertNotificationFn != nil {
		return f.insertNotificationFn(ctx, n)
	}
	return nil
}
func (f *fakeStore) ListNotifications(context.Context, string, bool, int) ([]store.Notification, error) {
	return nil, nil
}
func (f *fakeStore) MarkNotificationsRead(context.Context, string, []int64) error { return nil }
func (f *fakeStore) SummaryCounts(ctx context.Context, orgID string) (store.Summary, error) {
	if f.summaryCountsFn != nil {
		return f.summaryCountsFn(ctx, orgID)
	}
	return store.Summary{}, nil
}
func (f *fakeStore) WebhookEventSeen(ctx context.Context, provider, eventID string) (bool, error) {
	if f.webhookEventSeenFn != nil {
		return f.webhookEventSeenFn(ctx, provider, eventID)
	}
	return false, nil
}
func (f *fakeStore) MarkWebhookEvent(ctx context.Context, provider, eventID string) error {
	if f.markWebhookEventFn != nil {
		return f.markWebhookEventFn(ctx, provider, eventID)
	}
	return nil
}
func (f *fakeStore) ListClients(context.Context, string) ([]store.Client, error) { return nil, nil }
func (f *fakeStore) GetClient(ctx context.Context, orgID, clientID string) (store.Client, error) {
	if f.getClientFn != nil {
		return f.getClientFn(ctx, orgID, clientID)
	}
	return store.Client{}, sql.ErrNoRows
}
func (f *fakeStore) InsertClient(context.Context, store.Client) error { return nil }
func (f *fakeStore) UpdateClient(context.Context, store.Client) error { return nil }
func (f *fakeStore) ClientBrandCount(ctx context.Context, clientID string) (int, error) {
	if f.clientBrandCountFn != nil {
		return f.clientBrandCountFn(ctx, clientID)
	}
	return 0, nil
}
func (f *fakeStore) DeleteClient(context.Context, string, string) error { return nil }
func (f *fakeStore) ListBrands(ctx context.Context, orgID string, clientID *string) ([]store.Brand, error) {
	if f.listBrandsFn != nil {
		return f.listBrandsFn(ctx, orgID, clientID)
	}
	return nil, nil
}
func (f *fakeStore) GetBrand(ctx context.Context, orgID, brandID string) (store.Brand, error) {
	if f.getBrandFn != nil {
		return f.getBrandFn(ctx, orgID, brandID)
	}
	return store.Brand{}, sql.ErrNoRows
}
func (f *fakeStore) InsertBrand(context.Context, store.Brand) error { return nil }
func (f *fakeStore) UpdateBrand(context.Context, store.Brand) error { return nil }
func (f *fakeStore) BrandMockupCount(ctx context.Context, brandID string) (int, error) {
	if f.brandMockupCountFn != nil {
		return f.brandMockupCountFn(ctx, brandID)
	}
	return 0, nil
}
func (f *fakeStore) DeleteBrand(context.Context, string, string) error { return nil }
func (f *fakeStore) ListBrandLogos(context.Context, string) ([]store.BrandLogo, error) {
	return nil, nil
}
func (f *fakeStore) GetBrandLogo(context.Context, string, string) (store.BrandLogo, error) {
	return store.BrandLogo{}, sql.ErrNoRows
}
func (f *fakeStore) InsertBrandLogo(context.Context, store.BrandLogo) error { return nil }
func (f *fakeStore) DeleteBrandLogo(context.Context, string, string) error  { return nil }
func (f *fakeStore) ListBrandColors(context.Context, string) ([]store.BrandColor, error) {
	return nil, nil
}
func (f *fakeStore) InsertBrandColor(context.Context, store.BrandColor) error { return nil }
func (f *fakeStore) DeleteBrandColor(context.Context, string, string) error   { return nil }
func (f *fakeStore) ListBrandFonts(context.Context, string) ([]store.BrandFont, error) {
	return nil, nil
}
func (f *fakeStore) InsertBrandFont(context.Context, store.BrandFont) error { return nil }
func (f *fakeStore) DeleteBrandFont(context.Context, string, string) error  { return nil }
func (f *fakeStore) ListTemplates(context.Context, string, string) ([]store.Template, error) {
	return nil, nil
}
func (f *fakeStore) GetTemplate(ctx context.Context, orgID, templateID string) (store.Template, error) {
	if f.getTemplateFn != nil {
		return f.getTemplateFn(ctx, orgID, templateID)
	}
	return store.Template{}, sql.ErrNoRows
}
func (f *fakeStore) InsertTemplate(context.Context, store.Template) error { return nil }
func (f *fakeStore) UpdateTemplate(context.Context, store.Template) error { return nil }
func (f *fakeStore) TemplateMockupCount(ctx context.Context, templateID string) (int, error) {
	if f.templateMockupCountFn != nil {
		return f.templateMockupCountFn(ctx, templateID)
	}
	return 0, nil
}
func (f *fakeStore) DeleteTemplate(context.Context, string, string) error { return nil }
func (f *fakeStore) ListMockups(ctx context.Context, orgID string, filter store.MockupFilter) ([]store.Mockup, error) {
	if f.listMockupsFn != nil {
		return f.listMockupsFn(ctx, orgID, filter)
	}
	return nil, nil
}
func (f *fakeStore) GetMockup(ctx context.Context, orgID, mockupID string) (store.Mockup, error) {
	if f.getMockupFn != nil {
		return f.getMockupFn(ctx, orgID, mockupID)
	}
	return store.Mockup{}, sql.ErrNoRows
}
func (f *fakeStore) InsertMockup(context.Context, store.Mockup) error { return nil }
func (f *fakeStore) UpdateMockup(context.Context, string, string, string, *string) error {
	return nil
}
func (f *fakeStore) SetMockupReviewState(ctx context.Context, mockupID, status string, stagePosition, round int) error {
	if f.setMockupReviewStateFn != nil {
		return f.setMockupReviewStateFn(ctx, mockupID, status, stagePosition, round)
	}
	return nil
}
func (f *fakeStore) DeleteMockup(context.Context, string, string) error { return nil }
func (f *fakeStore) ListProjects(context.Context, string, *string) ([]store.Project, error) {
	return nil, nil
}
func (f *fakeStore) GetProject(ctx context.Context, orgID, projectID string) (store.Project, error) {
	if f.getProjectFn != nil {
		return f.getProjectFn(ctx, orgID, projectID)
	}
	return store.Project{}, sql.ErrNoRows
}
func (f *fakeStore) InsertProject(context.Context, store.Project) error { return nil }
func (f *fakeStore) UpdateProject(context.Context, store.Project) error { return nil }
func (f *fakeStore) DeleteProject(context.Context, string, string) error {
	return nil
}
func (f *fakeStore) ListStages(context.Context, string) ([]store.WorkflowStage, error) {
	return nil, nil
}
func (f *fakeStore) GetStageByPosition(ctx context.Context, projectID string, position int) (store.WorkflowStage, error) {
	if f.getStageByPositionFn != nil {
		return f.getStageByPositionFn(ctx, projectID, position)
	}
	return store.WorkflowStage{}, sql.ErrNoRows
}
func (f *fakeStore) StageCount(ctx context.Context, projectID string) (int, error) {
	if f.stageCountFn != nil {
		return f.stageCountFn(ctx, projectID)
	}
	return 0, nil
}
func (f *fakeStore) ReplaceWorkflow(context.Context, string, []store.WorkflowStage, []store.StageReviewer) error {
	return nil
}
func (f *fakeStore) ListStageReviewers(ctx context.Context, stageID string) ([]store.StageReviewer, error) {
	if f.listStageReviewersFn != nil {
		return f.listStageReviewersFn(ctx, stageID)
	}
	return nil, nil
}
func (f *fakeStore) FindStageReviewerForUser(ctx context.Context, stageID, userID string) (store.StageReviewer, error) {
	if f.findStageReviewerForUserFn != nil {
		return f.findStageReviewerForUserFn(ctx, stageID, userID)
	}
	return store.StageReviewer{}, sql.ErrNoRows
}
func (f *fakeStore) GetReviewerByToken(ctx context.Context, token string) (store.ShareContext, error) {
	if f.getReviewerByTokenFn != nil {
		return f.getReviewerByTokenFn(ctx, token)
	}
	return store.ShareContext{}, sql.ErrNoRows
}
func (f *fakeStore) UpsertStageApproval(ctx context.Context, item store.StageApproval) error {
	if f.upsertStageApprovalFn != nil {
		return f.upsertStageApprovalFn(ctx, item)
	}
	return nil
}
func (f *fakeStore) StageApprovalCount(ctx context.Context, mockupID, stageID string, round int) (int, error) {
	if f.stageApprovalCountFn != nil {
		return f.stageApprovalCountFn(ctx, mockupID, stageID, round)
	}
	return 0, nil
}
func (f *fakeStore) ListApprovalBoard(ctx context.Context, mockupID string) ([]store.ApprovalBoardRow, error) {
	if f.listApprovalBoardFn != nil {
		return f.listApprovalBoardFn(ctx, mockupID)
	}
	return nil, nil
}
func (f *fakeStore) InReviewCountByProject(ctx context.Context, projectID string) (int, error) {
	if f.inReviewCountByProjectFn != nil {
		return f.inReviewCountByProjectFn(ctx, projectID)
	}
	return 0, nil
}
func (f *fakeStore) ListContracts(context.Context, string, string) ([]store.Contract, error) {
	return nil, nil
}
func (f *fakeStore) GetContract(ctx context.Context, orgID, contractID string) (store.Contract, error) {
	if f.getContractFn != nil {
		return f.getContractFn(ctx, orgID, contractID)
	}
	return store.Contract{}, sql.ErrNoRows
}
func (f *fakeStore) InsertContract(context.Context, store.Contract) error { return nil }
func (f *fakeStore) UpdateContractSent(context.Context, string, string, time.Time) error {
	return nil
}
func (f *fakeStore) GetContractByEnvelope(ctx context.Context, envelopeID string) (store.Contract, error) {
	if f.getContractByEnvelopeFn != nil {
		return f.getContractByEnvelopeFn(ctx, envelopeID)
	}
	return store.Contract{}, sql.ErrNoRows
}
func (f *fakeStore) UpdateContractStatus(ctx context.Context, contractID, status string, completedAt *time.Time) error {
	if f.updateContractStatusFn != nil {
		return f.updateContractStatusFn(ctx, contractID, status, completedAt)
	}
	return nil
}
func (f *fakeStore) DeleteContract(context.Context, string, string) error { return nil }
func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          "test-secret",
		AccessTTL:          time.Hour,
		RefreshTTL:         24 * time.Hour,
		AppBaseURL:         "http://localhost:3000",
		ESignWebhookKey:    "esign-secret",
		IdentityWebhookKey: "identity-secret",
	}
}

func newTestService(fs *fakeStore) *Service {
	return &Service{
		cfg:      testConfig(),
		store:    fs,
		sessions: fs,
		authpw:   authpw.NewService(fs),
	}
}

func memberUser(id, orgID string) store.User {
	return store.User{
		ID:          id,
		OrgID:       orgID,
		DisplayName: "Avery Reed",
		Email:       id + "@example.com",
		Role:        "member",
	}
}

func TestIssueAndParseSession(t *testing.T) {
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, userID string) (store.User, error) {
			return memberUser(userID, "org_1"), nil
		},
	}
	svc := newTestService(fs)

	session, err := svc.CreateSession(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Token == "" || session.RefreshToken == "" {
		t.Fatal("expected token and refresh token")
	}
	if session.OrgID != "org_1" {
		t.Fatalf("expected org_1, got %q", session.OrgID)
	}

	parsed, err := svc.SessionFromToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken: %v", err)
	}
	if parsed.UserID != "usr_1" || parsed.Role != "member" {
		t.Fatalf("unexpected session %+v", parsed)
	}
}

func TestSessionRejectsRevokedToken(t *testing.T) {
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, userID string) (store.User, error) {
			return memberUser(userID, "org_1"), nil
		},
		isAccessTokenRevokedFn: func(context.Context, string) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(fs)

	session, err := svc.CreateSession(context.Background(), "usr_1")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := svc.SessionFromToken(context.Background(), session.Token); err == nil {
		t.Fatal("expected revoked token to be rejected")
	}
}

func TestSessionRejectsDeactivatedUser(t *testing.T) {
	deactivatedAt := time.Now()
	fs := &fakeStore{
		getUserByIDFn: func(_ context.Context, userID string) (store.User, error) {
			user := memberUser(userID, "org_1")
			user.DeactivatedAt = &deactivatedAt
			return user, nil
		},
	}
	svc := newTestService(fs)

	session, err := svc.issueSession(context.Background(), memberUser("usr_1", "org_1"))
	if err != nil {
		t.Fatalf("issueSession: %v", err)
	}
	if _, err := svc.SessionFromToken(context.Background(), session.Token); err == nil {
		t.Fatal("expected deactivated user to be rejected")
	}
}

func TestClientScope(t *testing.T) {
	if scope := clientScope(Session{Role: "member"}); scope != nil {
		t.Fatal("member should not be client scoped")
	}
	if scope := clientScope(Session{Role: "client", ClientID: "cli_1"}); scope == nil || *scope != "cli_1" {
		t.Fatal("client role should scope to its client")
	}
}

type fakeSearch struct {
	lastQuery search.Query
}

func (f *fakeSearch) Search(q search.Query) search.Response {
	f.lastQuery = q
	return search.Response{Results: []search.Result{}, Total: 0}
}
func (f *fakeSearch) IndexBrand(search.BrandRecord)       {}
func (f *fakeSearch) IndexTemplate(search.TemplateRecord) {}
func (f *fakeSearch) IndexMockup(search.MockupRecord)     {}
func (f *fakeSearch) DeleteBrand(string)                  {}
func (f *fakeSearch) DeleteTemplate(string)               {}
func (f *fakeSearch) DeleteMockup(string)                 {}

func TestSearchCarriesTypeFilterAndScope(t *testing.T) {
	index := &fakeSearch{}
	svc := newTestService(&fakeStore{})
	svc.SetSearch(index)

	session := Session{OrgID: "org_1", UserID: "usr_1", Role: "client", ClientID: "cli_1"}
	if _, err := svc.Search(context.Background(), session, "spring", "mockup", 10, 0); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if index.lastQuery.FilterType != search.ResultMockup {
		t.Fatalf("expected mockup filter, got %q", index.lastQuery.FilterType)
	}
	if index.lastQuery.OrgID != "org_1" || index.lastQuery.ClientID != "cli_1" {
		t.Fatalf("query missing tenancy scope: %+v", index.lastQuery)
	}
}

func TestSubmitMockupRequiresWorkflow(t *testing.T) {
	projectID := "prj_1"
	fs := &fakeStore{
		getMockupFn: func(context.Context, string, string) (store.Mockup, error) {
			return store.Mockup{ID: "mck_1", OrgID: "org_1", Status: "draft", ProjectID: &projectID}, nil
		},
		stageCountFn: func(context.Context, string) (int, error) { return 0, nil },
	}
	svc := newTestService(fs)

	_, err := svc.SubmitMockup(context.Background(), Session{OrgID: "org_1", UserID: "usr_1"}, "mck_1")
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) || domainErr.Code != "NO_WORKFLOW" {
		t.Fatalf("expected NO_WORKFLOW, got %v", err)
	}
}

func TestSubmitMockupRejectsApproved(t *testing.T) {
	projectID := "prj_1"
	fs := &fakeStore{
		getMockupFn: func(context.Context, string, string) (store.Mockup, error) {
			return store.Mockup{ID: "mck_1", OrgID: "org_1", Status: "approved", ProjectID: &projectID}, nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.SubmitMockup(context.Background(), Session{OrgID: "org_1"}, "mck_1")
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) || domainErr.Code != "INVALID_TRANSITION" {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}
}

func TestReviewRejectsNonReviewer(t *testing.T) {
	projectID := "prj_1"
	fs := &fakeStore{
		getMockupFn: func(context.Context, string, string) (store.Mockup, error) {
			return store.Mockup{ID: "mck_1", OrgID: "org_1", Status: "in_review", StagePosition: 1, Round: 1, ProjectID: &projectID}, nil
		},
		getStageByPositionFn: func(context.Context, string, int) (store.WorkflowStage, error) {
			return store.WorkflowStage{ID: "stg_1", ProjectID: projectID, Position: 1, MinApprovals: 1}, nil
		},
	}
	svc := newTestService(fs)

	_, err := svc.ReviewMockup(context.Background(), Session{OrgID: "org_1", UserID: "usr_other"}, "mck_1", ReviewInput{Decision: "approved"})
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403 for non-reviewer, got %v", err)
	}
}

func TestDeleteClientBlockedWhileInUse(t *testing.T) {
	fs := &fakeStore{
		getClientFn: func(context.Context, string, string) (store.Client, error) {
			return store.Client{ID: "cli_1", OrgID: "org_1"}, nil
		},
		clientBrandCountFn: func(context.Context, string) (int, error) { return 2, nil },
	}
	svc := newTestService(fs)

	err := svc.DeleteClient(context.Background(), Session{OrgID: "org_1"}, "cli_1")
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) || domainErr.Code != "CLIENT_IN_USE" {
		t.Fatalf("expected CLIENT_IN_USE, got %v", err)
	}
}

func TestReplaceWorkflowValidation(t *testing.T) {
	fs := &fakeStore{
		getProjectFn: func(context.Context, string, string) (store.Project, error) {
			return store.Project{ID: "prj_1", OrgID: "org_1"}, nil
		},
	}
	svc := newTestService(fs)
	session := Session{OrgID: "org_1", Role: "admin"}

	cases := []struct {
		name   string
		stages []WorkflowStageInput
	}{
		{"empty", nil},
		{"no reviewers", []WorkflowStageInput{{Name: "Design"}}},
		{"quorum too high", []WorkflowStageInput{{
			Name:         "Design",
			MinApprovals: 3,
			Reviewers:    []WorkflowReviewerInput{{Email: "a@example.com"}},
		}}},
		{"reviewer without identity", []WorkflowStageInput{{
			Name:      "Design",
			Reviewers: []WorkflowReviewerInput{{}},
		}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReplaceWorkflow(context.Background(), session, "prj_1", tc.stages)
			var domainErr *DomainError
			if err == nil || !errors.As(err, &domainErr) || domainErr.Status != 422 {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReplaceWorkflowBlockedWhileInReview(t *testing.T) {
	fs := &fakeStore{
		getProjectFn: func(context.Context, string, string) (store.Project, error) {
			return store.Project{ID: "prj_1", OrgID: "org_1"}, nil
		},
		inReviewCountByProjectFn: func(context.Context, string) (int, error) { return 1, nil },
	}
	svc := newTestService(fs)

	_, err := svc.ReplaceWorkflow(context.Background(), Session{OrgID: "org_1"}, "prj_1", []WorkflowStageInput{{
		Name:      "Design",
		Reviewers: []WorkflowReviewerInput{{Email: "a@example.com"}},
	}})
	var domainErr *DomainError
	if err == nil || !errors.As(err, &domainErr) || domainErr.Code != "WORKFLOW_IN_USE" {
		t.Fatalf("expected WORKFLOW_IN_USE, got %v", err)
	}
}
