package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "test@example.com",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "test@example.com",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestRenderVerificationTemplate(t *testing.T) {
	data := VerificationData{
		AppName:         "Emblem",
		UserName:        "Test User",
		VerificationURL: "https://example.com/verify?token=abc123",
	}

	html, err := renderTemplate(verificationEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "Emblem") {
		t.Error("template should contain app name")
	}
	if !strings.Contains(html, "Test User") {
		t.Error("template should contain user name")
	}
	if !strings.Contains(html, "https://example.com/verify?token=abc123") {
		t.Error("template should contain verification URL")
	}
}

func TestRenderPasswordResetTemplate(t *testing.T) {
	data := PasswordResetData{
		AppName:  "Emblem",
		UserName: "Test User",
		ResetURL: "https://example.com/reset?token=xyz789",
	}

	html, err := renderTemplate(passwordResetEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "https://example.com/reset?token=xyz789") {
		t.Error("template should contain reset URL")
	}
	if !strings.Contains(html, "1 hour") {
		t.Error("template should mention expiration time")
	}
}

func TestRenderReviewRequestTemplate(t *testing.T) {
	data := ReviewRequestData{
		AppName:      "Emblem",
		ReviewerName: "Reviewer One",
		MockupName:   "Spring Card Front",
		ProjectName:  "Spring Launch",
		StageName:    "Design Review",
		ReviewURL:    "https://example.com/share/tok-1",
	}

	html, err := renderTemplate(reviewRequestEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	for _, want := range []string{"Reviewer One", "Spring Card Front", "Spring Launch", "Design Review", "https://example.com/share/tok-1"} {
		if !strings.Contains(html, want) {
			t.Errorf("template should contain %q", want)
		}
	}
}

func TestRenderChangesRequestedTemplate(t *testing.T) {
	withComment := DecisionData{
		AppName:    "Emblem",
		UserName:   "Creator",
		MockupName: "Spring Card Front",
		Comment:    "Logo is too small on dark backgrounds",
		MockupURL:  "https://example.com/mockups/mk-1",
	}

	html, err := renderTemplate(changesRequestedEmailTemplate, withComment)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if !strings.Contains(html, "Logo is too small on dark backgrounds") {
		t.Error("template should contain the reviewer comment")
	}

	withComment.Comment = ""
	html, err = renderTemplate(changesRequestedEmailTemplate, withComment)
	if err != nil {
		t.Fatalf("renderTemplate without comment failed: %v", err)
	}
	if strings.Contains(html, `class="comment"`) {
		t.Error("empty comment should not render a comment block")
	}
}

func TestRenderContractCompletedTemplate(t *testing.T) {
	data := ContractCompletedData{
		AppName:       "Emblem",
		UserName:      "Owner",
		ContractTitle: "Brand Services Agreement",
		SignerName:    "Pat Client",
		ContractURL:   "https://example.com/contracts/ct-1",
	}

	html, err := renderTemplate(contractCompletedEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if !strings.Contains(html, "Pat Client") {
		t.Error("template should contain the signer name")
	}
	if !strings.Contains(html, "Brand Services Agreement") {
		t.Error("template should contain the contract title")
	}
}
