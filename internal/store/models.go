package store

import "time"

type Organization struct {
	ID        string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID                    string
	OrgID                 string
	DisplayName           string
	Email                 string
	PasswordHash          string
	Role                  string
	ClientID              *string
	ExternalID            string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	DeactivatedAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Client struct {
	ID           string
	OrgID        string
	Name         string
	ContactName  string
	ContactEmail string
	Website      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Brand struct {
	ID          string
	OrgID       string
	ClientID    *string
	Name        string
	Domain      string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BrandLogo is one stored logo variant. ObjectKey points into the blob store;
// SourceURL is kept when the file came from the brand-data lookup.
type BrandLogo struct {
	ID        string
	BrandID   string
	Kind      string // icon, wordmark, full
	Theme     string // light, dark
	Format    string // png, svg, jpeg
	ObjectKey string
	SourceURL string
	CreatedAt time.Time
}

type BrandColor struct {
	ID        string
	BrandID   string
	Hex       string
	Kind      string // primary, secondary, accent
	Name      string
	CreatedAt time.Time
}

type BrandFont struct {
	ID        string
	BrandID   string
	Family    string
	Usage     string // heading, body
	Source    string // google, custom
	CreatedAt time.Time
}

type Template struct {
	ID          string
	OrgID       string
	Name        string
	Category    string // physical, digital
	Description string
	ObjectKey   string
	Width       int
	Height      int
	LogoX       float64
	LogoY       float64
	LogoScale   float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Project struct {
	ID          string
	OrgID       string
	ClientID    *string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkflowStage is one ordered review step of a project workflow.
// Position is 1-based.
type WorkflowStage struct {
	ID           string
	ProjectID    string
	Position     int
	Name         string
	MinApprovals int
}

// StageReviewer is either an org user (UserID set) or an external reviewer
// reached through a public share link (Email + ShareToken set).
type StageReviewer struct {
	ID         string
	StageID    string
	UserID     *string
	Email      string
	ShareToken string
	CreatedAt  time.Time
}

type Mockup struct {
	ID            string
	OrgID         string
	BrandID       string
	TemplateID    string
	LogoID        string
	ProjectID     *string
	Name          string
	ObjectKey     string
	Status        string // draft, in_review, changes_requested, approved
	StagePosition int
	Round         int
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StageApproval records one reviewer decision in one review round.
type StageApproval struct {
	ID         string
	MockupID   string
	StageID    string
	ReviewerID string
	Round      int
	Decision   string // approved, rejected
	Comment    string
	DecidedAt  time.Time
}

// ApprovalBoardRow is a joined row for the per-stage approval board.
type ApprovalBoardRow struct {
	StageID       string
	StagePosition int
	StageName     string
	MinApprovals  int
	ReviewerID    string
	ReviewerName  string
	ReviewerEmail string
	External      bool
	Decision      string
	Comment       string
	DecidedAt     *time.Time
}

type Notification struct {
	ID        int64
	OrgID     string
	UserID    string
	Kind      string
	Subject   string
	Body      string
	MockupID  *string
	ReadAt    *time.Time
	CreatedAt time.Time
}

type Contract struct {
	ID          string
	OrgID       string
	ClientID    string
	Title       string
	ObjectKey   string
	Status      string // draft, sent, completed, declined, voided
	EnvelopeID  string
	SignerName  string
	SignerEmail string
	CreatedBy   string
	SentAt      *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SummaryCounts backs the dashboard header figures.
type Summary struct {
	Brands            int
	Templates         int
	MockupsInReview   int
	MockupsApproved   int
	ContractsAwaiting int
}
