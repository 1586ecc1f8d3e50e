package app

import (
	"net/http"

	"emblem/api/internal/rbac"
)

func (s *HTTPServer) handleProjects(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListProjects(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list projects", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"projects": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body ProjectInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.CreateProject(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 3 {
		projectID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetProjectDetail(r.Context(), session, projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodPatch:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body ProjectInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateProject(r.Context(), session, projectID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodDelete:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			if err := s.service.DeleteProject(r.Context(), session, projectID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	if len(parts) == 4 && parts[3] == "workflow" {
		projectID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetWorkflow(r.Context(), session, projectID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case http.MethodPut:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body struct {
				Stages []WorkflowStageInput `json:"stages"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.ReplaceWorkflow(r.Context(), session, projectID, body.Stages)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}
