package app

import (
	"context"
	"strings"
	"time"

	"emblem/api/internal/identity"
	"emblem/api/internal/rbac"
	"emblem/api/internal/store"
	"emblem/api/internal/util"
)

func (s *Service) Organization(ctx context.Context, session Session) (map[string]any, error) {
	org, err := s.store.GetOrganization(ctx, session.OrgID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, session.OrgID)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(members))
	for _, member := range members {
		items = append(items, memberPayload(member))
	}

	return map[string]any{
		"id":      org.ID,
		"name":    org.Name,
		"slug":    org.Slug,
		"members": items,
	}, nil
}

func memberPayload(user store.User) map[string]any {
	item := map[string]any{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"email":       user.Email,
		"role":        user.Role,
		"verified":    user.IsEmailVerified,
		"deactivated": user.DeactivatedAt != nil,
	}
	if user.ClientID != nil {
		item["clientId"] = *user.ClientID
	}
	return item
}

type CreateMemberInput struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	ClientID    string `json:"clientId"`
}

// CreateMember provisions a member account without a password. The
// returned invite token feeds the password-reset flow so the invitee can
// choose their own password.
func (s *Service) CreateMember(ctx context.Context, session Session, input CreateMemberInput) (map[string]any, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	displayName := strings.TrimSpace(input.DisplayName)
	if email == "" || displayName == "" {
		return nil, validationError("email and displayName are required")
	}
	role := rbac.Normalize(input.Role)
	if role == rbac.RoleClient && strings.TrimSpace(input.ClientID) == "" {
		return nil, validationError("clientId is required for client members")
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, conflictError("EMAIL_EXISTS", "Email already registered")
	}

	var clientID *string
	if strings.TrimSpace(input.ClientID) != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, input.ClientID); err != nil {
			return nil, err
		}
		value := input.ClientID
		clientID = &value
	}

	user := store.User{
		ID:              util.NewID("usr"),
		OrgID:           session.OrgID,
		DisplayName:     displayName,
		Email:           email,
		Role:            string(role),
		ClientID:        clientID,
		IsEmailVerified: true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	inviteToken := util.NewID("inv") + util.NewID("")
	if err := s.store.CreatePasswordReset(ctx, user.ID, inviteToken, time.Now().Add(72*time.Hour)); err != nil {
		return nil, err
	}

	if s.SMTPConfigured() {
		_ = s.mail.SendPasswordResetEmail(email, displayName, s.appURL("/invite?token="+inviteToken))
	}

	payload := memberPayload(user)
	if !s.SMTPConfigured() {
		payload["devInviteToken"] = inviteToken
	}
	return payload, nil
}

type UpdateMemberInput struct {
	Role     string  `json:"role"`
	ClientID *string `json:"clientId"`
}

func (s *Service) UpdateMember(ctx context.Context, session Session, userID string, input UpdateMemberInput) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.OrgID != session.OrgID {
		return nil, forbiddenError()
	}

	role := rbac.Normalize(input.Role)
	if role == rbac.RoleClient && (input.ClientID == nil || *input.ClientID == "") {
		return nil, validationError("clientId is required for client members")
	}
	if input.ClientID != nil && *input.ClientID != "" {
		if _, err := s.store.GetClient(ctx, session.OrgID, *input.ClientID); err != nil {
			return nil, err
		}
	}
	if role != rbac.RoleClient {
		input.ClientID = nil
	}

	if err := s.store.UpdateMembership(ctx, userID, string(role), input.ClientID); err != nil {
		return nil, err
	}

	user, err = s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return memberPayload(user), nil
}

func (s *Service) DeactivateMember(ctx context.Context, session Session, userID string) error {
	if userID == session.UserID {
		return conflictError("SELF_DEACTIVATE", "You cannot deactivate your own account")
	}
	return s.store.DeactivateUser(ctx, session.OrgID, userID)
}

func (s *Service) ListClients(ctx context.Context, session Session) ([]map[string]any, error) {
	clients, err := s.store.ListClients(ctx, session.OrgID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(clients))
	for _, client := range clients {
		items = append(items, clientPayload(client))
	}
	return items, nil
}

func clientPayload(client store.Client) map[string]any {
	return map[string]any{
		"id":           client.ID,
		"name":         client.Name,
		"contactName":  client.ContactName,
		"contactEmail": client.ContactEmail,
		"website":      client.Website,
		"createdAt":    client.CreatedAt,
	}
}

type ClientInput struct {
	Name         string `json:"name"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	Website      string `json:"website"`
}

func (s *Service) GetClientDetail(ctx context.Context, session Session, clientID string) (map[string]any, error) {
	client, err := s.store.GetClient(ctx, session.OrgID, clientID)
	if err != nil {
		return nil, err
	}
	return clientPayload(client), nil
}

func (s *Service) CreateClient(ctx context.Context, session Session, input ClientInput) (map[string]any, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	client := store.Client{
		ID:           util.NewID("cli"),
		OrgID:        session.OrgID,
		Name:         name,
		ContactName:  strings.TrimSpace(input.ContactName),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
		Website:      strings.TrimSpace(input.Website),
	}
	if err := s.store.InsertClient(ctx, client); err != nil {
		return nil, err
	}
	return clientPayload(client), nil
}

func (s *Service) UpdateClient(ctx context.Context, session Session, clientID string, input ClientInput) (map[string]any, error) {
	client, err := s.store.GetClient(ctx, session.OrgID, clientID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		client.Name = name
	}
	if input.ContactName != "" {
		client.ContactName = strings.TrimSpace(input.ContactName)
	}
	if input.ContactEmail != "" {
		client.ContactEmail = strings.TrimSpace(input.ContactEmail)
	}
	if input.Website != "" {
		client.Website = strings.TrimSpace(input.Website)
	}
	if err := s.store.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return clientPayload(client), nil
}

func (s *Service) DeleteClient(ctx context.Context, session Session, clientID string) error {
	if _, err := s.store.GetClient(ctx, session.OrgID, clientID); err != nil {
		return err
	}
	count, err := s.store.ClientBrandCount(ctx, clientID)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflictError("CLIENT_IN_USE", "Client still has brands attached")
	}
	return s.store.DeleteClient(ctx, session.OrgID, clientID)
}

// ProcessIdentityEvent syncs membership changes pushed by the hosted
// identity provider. Replayed event IDs are acknowledged without effect.
func (s *Service) ProcessIdentityEvent(ctx context.Context, event identity.Event) error {
	seen, err := s.store.WebhookEventSeen(ctx, "identity", event.ID)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	if err := s.applyIdentityEvent(ctx, event); err != nil {
		return err
	}
	// Mark only after the effects are applied so a transient failure
	// above leaves the event unmarked and the provider's retry lands.
	return s.store.MarkWebhookEvent(ctx, "identity", event.ID)
}

func (s *Service) applyIdentityEvent(ctx context.Context, event identity.Event) error {
	switch event.Type {
	case identity.EventUserCreated:
		org, err := s.store.GetOrganizationBySlug(ctx, event.Data.OrgSlug)
		if err != nil {
			return err
		}
		if _, err := s.store.GetUserByExternalID(ctx, org.ID, event.Data.ExternalID); err == nil {
			return nil
		}
		return s.store.CreateUser(ctx, store.User{
			ID:              util.NewID("usr"),
			OrgID:           org.ID,
			DisplayName:     event.Data.Name,
			Email:           strings.ToLower(event.Data.Email),
			Role:            string(rbac.RoleMember),
			ExternalID:      event.Data.ExternalID,
			IsEmailVerified: true,
		})
	case identity.EventUserUpdated:
		org, err := s.store.GetOrganizationBySlug(ctx, event.Data.OrgSlug)
		if err != nil {
			return err
		}
		user, err := s.store.GetUserByExternalID(ctx, org.ID, event.Data.ExternalID)
		if err != nil {
			return err
		}
		return s.store.UpdateUserProfile(ctx, user.ID, event.Data.Name, strings.ToLower(event.Data.Email))
	case identity.EventUserDeleted:
		org, err := s.store.GetOrganizationBySlug(ctx, event.Data.OrgSlug)
		if err != nil {
			return err
		}
		user, err := s.store.GetUserByExternalID(ctx, org.ID, event.Data.ExternalID)
		if err != nil {
			return err
		}
		return s.store.DeactivateUser(ctx, org.ID, user.ID)
	}
	return nil
}
