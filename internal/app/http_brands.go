package app

import (
	"net/http"
	"strings"

	"emblem/api/internal/export"
	"emblem/api/internal/rbac"
)

func (s *HTTPServer) handleBrands(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListBrands(r.Context(), session)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list brands", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"brands": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body BrandInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.CreateBrand(r.Context(), session, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 3 && parts[2] == "lookup" && r.Method == http.MethodGet {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		payload, err := s.service.LookupBrand(r.Context(), r.URL.Query().Get("domain"))
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if len(parts) == 3 && parts[2] == "import" && r.Method == http.MethodPost {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		var body ImportBrandInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.ImportBrand(r.Context(), session, body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if len(parts) == 3 {
		brandID := parts[2]
		switch r.Method {
		case http.MethodGet:
			payload, err := s.service.GetBrandDetail(r.Context(), session, brandID)
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
			var body BrandInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.UpdateBrand(r.Context(), session, brandID, body)
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
			if err := s.service.DeleteBrand(r.Context(), session, brandID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
	}

	if len(parts) == 4 && parts[3] == "export" && r.Method == http.MethodGet {
		brandID := parts[2]
		format := export.Format(strings.ToLower(r.URL.Query().Get("format")))
		if format == "" {
			format = export.FormatPDF
		}
		if format != export.FormatPDF && format != export.FormatDOCX {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format must be 'pdf' or 'docx'", nil)
			return
		}
		result, err := s.service.ExportBrandGuide(r.Context(), session, brandID, format)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
		w.Header().Set("Content-Type", result.MimeType)
		w.Write(result.Data)
		return
	}

	if len(parts) >= 4 {
		brandID := parts[2]
		switch parts[3] {
		case "logos":
			s.handleBrandLogos(w, r, session, brandID, parts)
			return
		case "colors":
			s.handleBrandColors(w, r, session, brandID, parts)
			return
		case "fonts":
			s.handleBrandFonts(w, r, session, brandID, parts)
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBrandLogos(w http.ResponseWriter, r *http.Request, session Session, brandID string, parts []string) {
	if len(parts) == 4 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListBrandLogos(r.Context(), session, brandID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"logos": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body LogoInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.AddBrandLogo(r.Context(), session, brandID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 5 && r.Method == http.MethodDelete {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		if err := s.service.DeleteBrandLogo(r.Context(), session, brandID, parts[4]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBrandColors(w http.ResponseWriter, r *http.Request, session Session, brandID string, parts []string) {
	if len(parts) == 4 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListBrandColorsForSession(r.Context(), session, brandID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"colors": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body ColorInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.AddBrandColor(r.Context(), session, brandID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 5 && r.Method == http.MethodDelete {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		if err := s.service.DeleteBrandColor(r.Context(), session, brandID, parts[4]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBrandFonts(w http.ResponseWriter, r *http.Request, session Session, brandID string, parts []string) {
	if len(parts) == 4 {
		switch r.Method {
		case http.MethodGet:
			items, err := s.service.ListBrandFontsForSession(r.Context(), session, brandID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"fonts": items})
			return
		case http.MethodPost:
			if !s.requireAction(w, session, rbac.ActionWrite) {
				return
			}
			var body FontInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			payload, err := s.service.AddBrandFont(r.Context(), session, brandID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, payload)
			return
		}
	}

	if len(parts) == 5 && r.Method == http.MethodDelete {
		if !s.requireAction(w, session, rbac.ActionWrite) {
			return
		}
		if err := s.service.DeleteBrandFont(r.Context(), session, brandID, parts[4]); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}
