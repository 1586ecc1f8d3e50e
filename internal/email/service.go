// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	FromName  string
	EnableTLS bool
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	// Simple multipart message
	boundary := "boundary-emblem"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

const appName = "Emblem"

type VerificationData struct {
	AppName         string
	UserName        string
	VerificationURL string
}

type PasswordResetData struct {
	AppName  string
	UserName string
	ResetURL string
}

// ReviewRequestData backs the review-request email sent to stage reviewers.
type ReviewRequestData struct {
	AppName      string
	ReviewerName string
	MockupName   string
	ProjectName  string
	StageName    string
	ReviewURL    string
}

// DecisionData backs the approved / changes-requested emails to the creator.
type DecisionData struct {
	AppName    string
	UserName   string
	MockupName string
	Comment    string
	MockupURL  string
}

type ContractCompletedData struct {
	AppName       string
	UserName      string
	ContractTitle string
	SignerName    string
	ContractURL   string
}

// SendVerificationEmail sends an email verification email
func (s *Service) SendVerificationEmail(to, userName, verificationURL string) error {
	data := VerificationData{
		AppName:         appName,
		UserName:        userName,
		VerificationURL: verificationURL,
	}

	subject := "Verify your Emblem account"
	html, err := renderTemplate(verificationEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render verification template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendPasswordResetEmail sends a password reset email
func (s *Service) SendPasswordResetEmail(to, userName, resetURL string) error {
	data := PasswordResetData{
		AppName:  appName,
		UserName: userName,
		ResetURL: resetURL,
	}

	subject := "Reset your Emblem password"
	html, err := renderTemplate(passwordResetEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendReviewRequestEmail asks a reviewer to look at a mockup that reached
// their stage.
func (s *Service) SendReviewRequestEmail(to, reviewerName, mockupName, projectName, stageName, reviewURL string) error {
	data := ReviewRequestData{
		AppName:      appName,
		ReviewerName: reviewerName,
		MockupName:   mockupName,
		ProjectName:  projectName,
		StageName:    stageName,
		ReviewURL:    reviewURL,
	}

	subject := fmt.Sprintf("Review requested: %s", mockupName)
	html, err := renderTemplate(reviewRequestEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render review request template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendMockupApprovedEmail tells the creator their mockup cleared the workflow.
func (s *Service) SendMockupApprovedEmail(to, userName, mockupName, mockupURL string) error {
	data := DecisionData{
		AppName:    appName,
		UserName:   userName,
		MockupName: mockupName,
		MockupURL:  mockupURL,
	}

	subject := fmt.Sprintf("Approved: %s", mockupName)
	html, err := renderTemplate(mockupApprovedEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render approved template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendChangesRequestedEmail tells the creator a reviewer rejected the mockup.
func (s *Service) SendChangesRequestedEmail(to, userName, mockupName, comment, mockupURL string) error {
	data := DecisionData{
		AppName:    appName,
		UserName:   userName,
		MockupName: mockupName,
		Comment:    comment,
		MockupURL:  mockupURL,
	}

	subject := fmt.Sprintf("Changes requested: %s", mockupName)
	html, err := renderTemplate(changesRequestedEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render changes requested template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

// SendContractCompletedEmail tells the contract owner the envelope was signed.
func (s *Service) SendContractCompletedEmail(to, userName, contractTitle, signerName, contractURL string) error {
	data := ContractCompletedData{
		AppName:       appName,
		UserName:      userName,
		ContractTitle: contractTitle,
		SignerName:    signerName,
		ContractURL:   contractURL,
	}

	subject := fmt.Sprintf("Signed: %s", contractTitle)
	html, err := renderTemplate(contractCompletedEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render contract completed template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const emailStyle = `
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #1a1a2e; padding-bottom: 10px; margin-bottom: 20px; }
        .button { display: inline-block; padding: 12px 24px; background: #1a1a2e; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
        .link { word-break: break-all; color: #1a1a2e; }
        .comment { background: #f6f6f9; padding: 12px; border-left: 3px solid #1a1a2e; margin: 20px 0; }
        .warning { background: #fff3cd; padding: 12px; border-radius: 4px; margin: 20px 0; }
`

const verificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Verify your {{.AppName}} account</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Welcome, {{.UserName}}!</h2>

    <p>Thank you for signing up. Please verify your email address to activate your account.</p>

    <p>
        <a href="{{.VerificationURL}}" class="button">Verify Email Address</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.VerificationURL}}</p>

    <p>This verification link will expire in 24 hours.</p>

    <div class="footer">
        <p>If you didn't create an account with {{.AppName}}, you can safely ignore this email.</p>
    </div>
</body>
</html>`

const passwordResetEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset your {{.AppName}} password</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Password Reset Request</h2>

    <p>Hi {{.UserName}},</p>

    <p>We received a request to reset your password. Click the button below to create a new password:</p>

    <p>
        <a href="{{.ResetURL}}" class="button">Reset Password</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.ResetURL}}</p>

    <div class="warning">
        <strong>Important:</strong> This reset link will expire in 1 hour.
    </div>

    <div class="footer">
        <p>If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
    </div>
</body>
</html>`

const reviewRequestEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Review requested</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Your review is requested</h2>

    <p>Hi {{.ReviewerName}},</p>

    <p>The mockup <strong>{{.MockupName}}</strong> in project <strong>{{.ProjectName}}</strong> has reached the <strong>{{.StageName}}</strong> stage and is waiting on your decision.</p>

    <p>
        <a href="{{.ReviewURL}}" class="button">Review Mockup</a>
    </p>

    <p>Or copy and paste this link into your browser:</p>
    <p class="link">{{.ReviewURL}}</p>

    <div class="footer">
        <p>You received this email because you are a reviewer on this workflow stage.</p>
    </div>
</body>
</html>`

const mockupApprovedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Mockup approved</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Approved!</h2>

    <p>Hi {{.UserName}},</p>

    <p>Your mockup <strong>{{.MockupName}}</strong> has cleared every review stage and is now approved.</p>

    <p>
        <a href="{{.MockupURL}}" class="button">View Mockup</a>
    </p>
</body>
</html>`

const changesRequestedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Changes requested</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Changes requested</h2>

    <p>Hi {{.UserName}},</p>

    <p>A reviewer has requested changes on your mockup <strong>{{.MockupName}}</strong>.</p>

    {{if .Comment}}
    <div class="comment">{{.Comment}}</div>
    {{end}}

    <p>
        <a href="{{.MockupURL}}" class="button">View Feedback</a>
    </p>
</body>
</html>`

const contractCompletedEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Contract signed</title>
    <style>` + emailStyle + `</style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Contract signed</h2>

    <p>Hi {{.UserName}},</p>

    <p><strong>{{.SignerName}}</strong> has signed <strong>{{.ContractTitle}}</strong>. The completed document is attached to the contract record.</p>

    <p>
        <a href="{{.ContractURL}}" class="button">View Contract</a>
    </p>
</body>
</html>`
