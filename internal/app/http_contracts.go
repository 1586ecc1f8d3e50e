package app

import (
	"net/http"

	"emblem/api/internal/rbac"
)

func (s *HTTPServer) handleContracts(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListContracts(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list contracts", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"contracts": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body ContractInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.CreateContract(r.Context(), session, body)
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
		contractID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetContractDetail(r.Context(), session, contractID)
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
			if err := s.service.DeleteContract(r.Context(), session, contractID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	if len(parts) == 4 && r.Method == http.MethodPost {
		contractID := parts[2]
		switch parts[3] {
		case "send":
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			payload, err := s.service.SendContract(r.Context(), session, contractID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		case "void":
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			payload, err := s.service.VoidContract(r.Context(), session, contractID)
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
