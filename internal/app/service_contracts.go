package app

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"emblem/api/internal/blob"
	"emblem/api/internal/esign"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

func (s *Service) ListContracts(ctx context.Context, session Session) ([]map[string]any, error) {
	clientID := ""
	if scope := clientScope(session); scope != nil {
		clientID = *scope
	}
	contracts, err := s.store.ListContracts(ctx, session.OrgID, clientID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(contracts))
	for _, contract := range contracts {
		items = append(items, contractPayload(contract))
	}
	return items, nil
}

func contractPayload(contract store.Contract) map[string]any {
	item := map[string]any{
		"id":          contract.ID,
		"clientId":    contract.ClientID,
		"title":       contract.Title,
		"status":      contract.Status,
		"signerName":  contract.SignerName,
		"signerEmail": contract.SignerEmail,
		"createdBy":   contract.CreatedBy,
		"createdAt":   contract.CreatedAt,
	}
	if contract.SentAt != nil {
		item["sentAt"] = *contract.SentAt
	}
	if contract.CompletedAt != nil {
		item["completedAt"] = *contract.CompletedAt
	}
	return item
}

func (s *Service) contractForSession(ctx context.Context, session Session, contractID string) (store.Contract, error) {
	contract, err := s.store.GetContract(ctx, session.OrgID, contractID)
	if err != nil {
		return store.Contract{}, err
	}
	if scope := clientScope(session); scope != nil && contract.ClientID != *scope {
		return store.Contract{}, forbiddenError()
	}
	return contract, nil
}

func (s *Service) GetContractDetail(ctx context.Context, session Session, contractID string) (map[string]any, error) {
	contract, err := s.contractForSession(ctx, session, contractID)
	if err != nil {
		return nil, err
	}
	payload := contractPayload(contract)
	if url := s.presignGet(ctx, contract.ObjectKey); url != "" {
		payload["documentUrl"] = url
	}
	return payload, nil
}

type ContractInput struct {
	Title       string `json:"title"`
	ClientID    string `json:"clientId"`
	SignerName  string `json:"signerName"`
	SignerEmail string `json:"signerEmail"`
}

// CreateContract stores the contract row and returns a presigned PUT
// URL for the PDF document.
func (s *Service) CreateContract(ctx context.Context, session Session, input ContractInput) (map[string]any, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if strings.TrimSpace(input.ClientID) == "" {
		return nil, validationError("clientId is required")
	}
	if strings.TrimSpace(input.SignerEmail) == "" {
		return nil, validationError("signerEmail is required")
	}
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}
	if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
		return nil, err
	}

	contract := store.Contract{
		ID:          util.NewID("ctr"),
		OrgID:       session.OrgID,
		ClientID:    input.ClientID,
		Title:       title,
		Status:      "draft",
		SignerName:  strings.TrimSpace(input.SignerName),
		SignerEmail: strings.ToLower(strings.TrimSpace(input.SignerEmail)),
		CreatedBy:   session.UserID,
	}
	contract.ObjectKey = blob.ContractKey(session.OrgID, contract.ID)

	uploadURL, err := s.blob.PresignPut(ctx, contract.ObjectKey, 15*time.Minute)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertContract(ctx, contract); err != nil {
		return nil, err
	}

	payload := contractPayload(contract)
	payload["uploadUrl"] = uploadURL
	return payload, nil
}

// SendContract creates an envelope with the e-signature provider and
// moves the contract to sent.
func (s *Service) SendContract(ctx context.Context, session Session, contractID string) (map[string]any, error) {
	contract, err := s.store.GetContract(ctx, session.OrgID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != "draft" {
		return nil, conflictError("INVALID_TRANSITION", "Only draft contracts can be sent")
	}
	if s.esign == nil || !s.esign.Configured() {
		return nil, domainError(503, "ESIGN_UNAVAILABLE", "E-signature provider is not configured", nil)
	}
	if s.blob == nil {
		return nil, domainError(503, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	// The provider downloads the document itself, so the URL has to
	// outlive a normal presign window.
	documentURL, err := s.blob.PresignGet(ctx, contract.ObjectKey, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	envelopeID, err := s.esign.CreateEnvelope(ctx, esign.EnvelopeRequest{
		Title:       contract.Title,
		DocumentURL: documentURL,
		SignerName:  contract.SignerName,
		SignerEmail: contract.SignerEmail,
		CallbackURL: s.appURL("/api/webhooks/esign"),
	})
	if err != nil {
		return nil, err
	}

	sentAt := time.Now()
	if err := s.store.UpdateContractSent(ctx, contractID, envelopeID, sentAt); err != nil {
		return nil, err
	}
	contract.Status = "sent"
	contract.EnvelopeID = envelopeID
	contract.SentAt = &sentAt
	return contractPayload(contract), nil
}

// VoidContract voids a sent envelope at the provider and locally.
func (s *Service) VoidContract(ctx context.Context, session Session, contractID string) (map[string]any, error) {
	contract, err := s.store.GetContract(ctx, session.OrgID, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != "sent" {
		return nil, conflictError("INVALID_TRANSITION", "Only sent contracts can be voided")
	}
	if s.esign != nil && s.esign.Configured() && contract.EnvelopeID != "" {
		if err := s.esign.VoidEnvelope(ctx, contract.EnvelopeID); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateContractStatus(ctx, contractID, "voided", nil); err != nil {
		return nil, err
	}
	contract.Status = "voided"
	return contractPayload(contract), nil
}

func (s *Service) DeleteContract(ctx context.Context, session Session, contractID string) error {
	contract, err := s.store.GetContract(ctx, session.OrgID, contractID)
	if err != nil {
		return err
	}
	if contract.Status != "draft" {
		return conflictError("INVALID_TRANSITION", "Only draft contracts can be deleted")
	}
	if err := s.store.DeleteContract(ctx, session.OrgID, contractID); err != nil {
		return err
	}
	if s.blob != nil && contract.ObjectKey != "" {
		_ = s.blob.Remove(ctx, contract.ObjectKey)
	}
	return nil
}

// ProcessESignEvent applies a verified provider callback. Unknown
// envelopes and replayed event IDs are acknowledged without effect.
func (s *Service) ProcessESignEvent(ctx context.Context, event esign.WebhookEvent) error {
	seen, err := s.store.WebhookEventSeen(ctx, "esign", event.ID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	contract, err := s.store.GetContractByEnvelope(ctx, event.EnvelopeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.store.MarkWebhookEvent(ctx, "esign", event.ID)
		}
		return err
	}

	switch event.Type {
	case esign.EventCompleted:
		completedAt := time.Now()
		if err := s.store.UpdateContractStatus(ctx, contract.ID, "completed", &completedAt); err != nil {
			return err
		}
		s.notify(ctx, contract.OrgID, contract.CreatedBy, "contract_completed",
			contract.Title+" was signed",
			"Signed by "+firstNonBlank(event.SignerName, contract.SignerName), nil)
		if s.SMTPConfigured() {
			if creator, err := s.store.GetUserByID(ctx, contract.CreatedBy); err == nil && creator.Email != "" {
				_ = s.mail.SendContractCompletedEmail(creator.Email, creator.DisplayName,
					contract.Title, firstNonBlank(event.SignerName, contract.SignerName),
					s.appURL("/contracts/"+contract.ID))
			}
		}
	case esign.EventDeclined:
		if err := s.store.UpdateContractStatus(ctx, contract.ID, "declined", nil); err != nil {
			return err
		}
		s.notify(ctx, contract.OrgID, contract.CreatedBy, "contract_declined",
			contract.Title+" was declined", "", nil)
	case esign.EventVoided:
		if err := s.store.UpdateContractStatus(ctx, contract.ID, "voided", nil); err != nil {
			return err
		}
		s.notify(ctx, contract.OrgID, contract.CreatedBy, "contract_voided",
			contract.Title+" was voided", "", nil)
	}
	// Mark only after the effects are applied so a transient failure
	// above leaves the event unmarked and the provider's retry lands.
	return s.store.MarkWebhookEvent(ctx, "esign", event.ID)
}
