package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"emblem/api/internal/auth"
	"emblem/api/internal/authpw"
	"emblem/api/internal/brandlookup"
	"emblem/api/internal/config"
	"emblem/api/internal/designimport"
	"emblem/api/internal/esign"
	"emblem/api/internal/export"
	"emblem/api/internal/rbac"
	"emblem/api/internal/search"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	OrgID        string
	Role         string
	ClientID     string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)
	GetUserByExternalID(context.Context, string, string) (store.User, error)
	CreateUser(context.Context, store.User) error
	UpdateUserProfile(context.Context, string, string, string) error
	UpdateMembership(context.Context, string, string, *string) error
	DeactivateUser(context.Context, string, string) error
	ListMembers(context.Context, string) ([]store.User, error)
	CreateOrganization(context.Context, store.Organization) error
	GetOrganization(context.Context, string) (store.Organization, error)
	GetOrganizationBySlug(context.Context, string) (store.Organization, error)
	CreatePasswordReset(context.Context, string, string, time.Time) error
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)
	InsertNotification(context.Context, store.Notification) error
	ListNotifications(context.Context, string, bool, int) ([]store.Notification, error)
	MarkNotificationsRead(context.Context, string, []int64) error
	SummaryCounts(context.Context, string) (store.Summary, error)
	WebhookEventSeen(context.Context, string, string) (bool, error)
	MarkWebhookEvent(context.Context, string, string) error
	ListClients(context.Context, string) ([]store.Client, error)
	GetClient(context.Context, string, string) (store.Client, error)
	InsertClient(context.Context, store.Client) error
	UpdateClient(context.Context, store.Client) error
	ClientBrandCount(context.Context, string) (int, error)
	DeleteClient(context.Context, string, string) error
	ListBrands(context.Context, string, *string) ([]store.Brand, error)
	GetBrand(context.Context, string, string) (store.Brand, error)
	InsertBrand(context.Context, store.Brand) error
	UpdateBrand(context.Context, store.Brand) error
	BrandMockupCount(context.Context, string) (int, error)
	DeleteBrand(context.Context, string, string) error
	ListBrandLogos(context.Context, string) ([]store.BrandLogo, error)
	GetBrandLogo(context.Context, string, string) (store.BrandLogo, error)
	InsertBrandLogo(context.Context, store.BrandLogo) error
	DeleteBrandLogo(context.Context, string, string) error
	ListBrandColors(context.Context, string) ([]store.BrandColor, error)
	InsertBrandColor(context.Context, store.BrandColor) error
	DeleteBrandColor(context.Context, string, string) error
	ListBrandFonts(context.Context, string) ([]store.BrandFont, error)
	InsertBrandFont(context.Context, store.BrandFont) error
	DeleteBrandFont(context.Context, string, string) error
	ListTemplates(context.Context, string, string) ([]store.Template, error)
	GetTemplate(context.Context, string, string) (store.Template, error)
	InsertTemplate(context.Context, store.Template) error
	UpdateTemplate(context.Context, store.Template) error
	TemplateMockupCount(context.Context, string) (int, error)
	DeleteTemplate(context.Context, string, string) error
	ListMockups(context.Context, string, store.MockupFilter) ([]store.Mockup, error)
	GetMockup(context.Context, string, string) (store.Mockup, error)
	InsertMockup(context.Context, store.Mockup) error
	UpdateMockup(context.Context, string, string, string, *string) error
	SetMockupReviewState(context.Context, string, string, int, int) error
	DeleteMockup(context.Context, string, string) error
	ListProjects(context.Context, string, *string) ([]store.Project, error)
	GetProject(context.Context, string, string) (store.Project, error)
	InsertProject(context.Context, store.Project) error
	UpdateProject(context.Context, store.Project) error
	DeleteProject(context.Context, string, string) error
	ListStages(context.Context, string) ([]store.WorkflowStage, error)
	GetStageByPosition(context.Context, string, int) (store.WorkflowStage, error)
	StageCount(context.Context, string) (int, error)
	ReplaceWorkflow(context.Context, string, []store.WorkflowStage, []store.StageReviewer) error
	ListStageReviewers(context.Context, string) ([]store.StageReviewer, error)
	FindStageReviewerForUser(context.Context, string, string) (store.StageReviewer, error)
	GetReviewerByToken(context.Context, string) (store.ShareContext, error)
	UpsertStageApproval(context.Context, store.StageApproval) error
	StageApprovalCount(context.Context, string, string, int) (int, error)
	ListApprovalBoard(context.Context, string) ([]store.ApprovalBoardRow, error)
	InReviewCountByProject(context.Context, string) (int, error)
	ListContracts(context.Context, string, string) ([]store.Contract, error)
	GetContract(context.Context, string, string) (store.Contract, error)
	InsertContract(context.Context, store.Contract) error
	UpdateContractSent(context.Context, string, string, time.Time) error
	GetContractByEnvelope(context.Context, string) (store.Contract, error)
	UpdateContractStatus(context.Context, string, string, *time.Time) error
	DeleteContract(context.Context, string, string) error
	Ping(ctx context.Context) error
}

// sessionStore holds refresh sessions. The Postgres store implements it
// directly; a Redis-backed store is swapped in when REDIS_URL is set.
type sessionStore interface {
	SaveRefreshSession(context.Context, string, store.User, time.Time) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeRefreshSession(context.Context, string) error
}

type blobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

type mailer interface {
	IsConfigured() bool
	SendVerificationEmail(to, userName, verificationURL string) error
	SendPasswordResetEmail(to, userName, resetURL string) error
	SendReviewRequestEmail(to, reviewerName, mockupName, projectName, stageName, reviewURL string) error
	SendMockupApprovedEmail(to, userName, mockupName, mockupURL string) error
	SendChangesRequestedEmail(to, userName, mockupName, comment, mockupURL string) error
	SendContractCompletedEmail(to, userName, contractTitle, signerName, contractURL string) error
}

type brandLookupClient interface {
	Configured() bool
	Lookup(ctx context.Context, domain string) (*brandlookup.Profile, error)
	FetchAsset(ctx context.Context, assetURL string) (io.ReadCloser, string, error)
}

type envelopeClient interface {
	Configured() bool
	CreateEnvelope(ctx context.Context, req esign.EnvelopeRequest) (string, error)
	VoidEnvelope(ctx context.Context, envelopeID string) error
}

type designClient interface {
	Configured() bool
	ListFrames(ctx context.Context, fileKey string) ([]designimport.Frame, error)
	RenderFrames(ctx context.Context, fileKey string, nodeIDs []string) (map[string]string, error)
	FetchImage(ctx context.Context, imageURL string) (io.ReadCloser, error)
}

type searchIndex interface {
	Search(q search.Query) search.Response
	IndexBrand(b search.BrandRecord)
	IndexTemplate(t search.TemplateRecord)
	IndexMockup(m search.MockupRecord)
	DeleteBrand(id string)
	DeleteTemplate(id string)
	DeleteMockup(id string)
}

type guideExporter interface {
	Export(ctx context.Context, req export.Request) (*export.Result, error)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	authpw   *authpw.Service
	blob     blobStore
	search   searchIndex
	mail     mailer
	lookup   brandLookupClient
	esign    envelopeClient
	design   designClient
	exporter guideExporter
}

func New(cfg config.Config, dataStore *store.PostgresStore) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: dataStore,
		authpw:   authpw.NewService(dataStore),
	}
}

// NewWithSessionStore keeps refresh sessions in a separate backend
// (Redis) while everything else stays on Postgres.
func NewWithSessionStore(cfg config.Config, dataStore *store.PostgresStore, sessions sessionStore) *Service {
	service := New(cfg, dataStore)
	service.sessions = sessions
	return service
}

func (s *Service) SetBlobStore(blob blobStore)             { s.blob = blob }
func (s *Service) SetSearch(index searchIndex)             { s.search = index }
func (s *Service) SetMailer(mail mailer)                   { s.mail = mail }
func (s *Service) SetBrandLookup(client brandLookupClient) { s.lookup = client }
func (s *Service) SetESign(client envelopeClient)          { s.esign = client }
func (s *Service) SetDesignAPI(client designClient)        { s.design = client }
func (s *Service) SetExporter(exporter guideExporter)      { s.exporter = exporter }

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

func (s *Service) SMTPConfigured() bool {
	return s.mail != nil && s.mail.IsConfigured()
}

func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	clientID := ""
	if user.ClientID != nil {
		clientID = *user.ClientID
	}

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:    user.ID,
		Name:   user.DisplayName,
		Org:    user.OrgID,
		Role:   user.Role,
		Client: clientID,
		JTI:    jti,
		Exp:    expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		OrgID:        user.OrgID,
		Role:         user.Role,
		ClientID:     clientID,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	if user.DeactivatedAt != nil {
		return Session{}, auth.ErrInvalidToken
	}

	clientID := ""
	if user.ClientID != nil {
		clientID = *user.ClientID
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		OrgID:     user.OrgID,
		Role:      user.Role,
		ClientID:  clientID,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

// clientScope returns the client filter for list queries: nil means
// unrestricted, a value restricts results to that client's rows.
func clientScope(session Session) *string {
	if rbac.Normalize(session.Role) == rbac.RoleClient && session.ClientID != "" {
		clientID := session.ClientID
		return &clientID
	}
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingBlob(ctx context.Context) error {
	if s.blob == nil {
		return nil
	}
	return s.blob.Ping(ctx)
}

func (s *Service) Summary(ctx context.Context, session Session) (map[string]any, error) {
	summary, err := s.store.SummaryCounts(ctx, session.OrgID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"brands":            summary.Brands,
		"templates":         summary.Templates,
		"mockupsInReview":   summary.MockupsInReview,
		"mockupsApproved":   summary.MockupsApproved,
		"contractsAwaiting": summary.ContractsAwaiting,
	}, nil
}

func (s *Service) Search(ctx context.Context, session Session, text, filterType string, limit, offset int) (map[string]any, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if s.search == nil {
		return map[string]any{"results": []search.Result{}, "total": 0}, nil
	}

	query := search.Query{
		Text:       text,
		FilterType: search.ResultType(filterType),
		OrgID:      session.OrgID,
		Limit:      limit,
		Offset:     offset,
	}
	if scope := clientScope(session); scope != nil {
		query.ClientID = *scope
	}

	response := s.search.Search(query)
	return map[string]any{
		"results": response.Results,
		"total":   response.Total,
	}, nil
}

func (s *Service) ListNotifications(ctx context.Context, session Session, unreadOnly bool, limit int) ([]map[string]any, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	notifications, err := s.store.ListNotifications(ctx, session.UserID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(notifications))
	for _, n := range notifications {
		item := map[string]any{
			"id":        n.ID,
			"kind":      n.Kind,
			"subject":   n.Subject,
			"body":      n.Body,
			"read":      n.ReadAt != nil,
			"createdAt": n.CreatedAt,
		}
		if n.MockupID != nil {
			item["mockupId"] = *n.MockupID
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) MarkNotificationsRead(ctx context.Context, session Session, ids []int64) error {
	if len(ids) == 0 {
		return validationError("ids is required")
	}
	return s.store.MarkNotificationsRead(ctx, session.UserID, ids)
}

// notify writes a notification row. Failures are logged by callers at
// best; a lost notification never fails the triggering operation.
func (s *Service) notify(ctx context.Context, orgID, userID, kind, subject, body string, mockupID *string) {
	_ = s.store.InsertNotification(ctx, store.Notification{
		OrgID:    orgID,
		UserID:   userID,
		Kind:     kind,
		Subject:  subject,
		Body:     body,
		MockupID: mockupID,
	})
}

func (s *Service) appURL(path string) string {
	return fmt.Sprintf("%s%s", s.cfg.AppBaseURL, path)
}

func (s *Service) presignGet(ctx context.Context, key string) string {
	if s.blob == nil || key == "" {
		return ""
	}
	url, err := s.blob.PresignGet(ctx, key, 15*time.Minute)
	if err != nil {
		return ""
	}
	return url
}
