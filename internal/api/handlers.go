// internal/api/handlers.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"mentoloop-waitlist/internal/common/errors"
	"mentoloop-waitlist/internal/signup"
	"mentoloop-waitlist/internal/waitlist"
)

type signupBody struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ReferralSource string `json:"referralSource"`
}

// handleWaitlistSubmit runs the full pipeline: validate, persist, notify.
// 201 on success, 422 with field errors, 409 duplicate, 503 store failure.
func (s *Server) handleWaitlistSubmit(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Request body is required",
		})
		return
	}

	// One orchestrator per request: the submission state machine scopes to a
	// single form attempt. Cross-request duplicate safety comes from the
	// store's unique index, not from shared orchestrator state.
	orch := signup.New(signup.Options{
		Store:         s.store,
		Notifier:      s.dispatcher,
		Logger:        s.logger,
		Observability: s.obs,
	})

	state, fieldErrs := orch.Submit(r.Context(), waitlist.RawSignup{
		FullName:       body.FullName,
		Email:          body.Email,
		Role:           body.Role,
		ReferralSource: body.ReferralSource,
	})
	if len(fieldErrs) > 0 {
		writeJSON(w, errors.HTTPStatus(errors.ErrCodeValidationFailed), map[string]interface{}{
			"success": false,
			"errors":  fieldErrs,
		})
		return
	}

	switch state.Status {
	case signup.StatusSucceeded:
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": state.Message,
		})
	default:
		writeJSON(w, errors.HTTPStatus(state.Code), map[string]interface{}{
			"success": false,
			"error":   state.Message,
		})
	}
}

// handleEmailExists is the best-effort lookup backing the form's inline
// duplicate hint. Always 200; errors collapse to exists=false.
func (s *Server) handleEmailExists(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	exists := false
	if email != "" {
		exists = s.store.EmailExists(r.Context(), email)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"exists": exists})
}

// handleSendEmail is the standalone notification endpoint. Contract: 200
// advisory success when no email provider is configured (checked before the
// body is read), 400 missing body or required fields (presence only, content
// is not validated here), 500 when the welcome send fails, 200 otherwise
// (operator-alert failure included).
func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	if !s.dispatcher.Configured() {
		s.logger.Warn("Email send requested with no provider configured", nil)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Email service not configured",
		})
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil || len(raw) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Request body is required",
		})
		return
	}

	if err := validateSendEmailBody(raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Missing required fields",
		})
		return
	}

	var body signupBody
	if err := json.Unmarshal(raw, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Request body is required",
		})
		return
	}

	req := &waitlist.SignupRequest{
		FullName: body.FullName,
		Email:    body.Email,
		Role:     waitlist.Role(body.Role),
	}
	if body.ReferralSource != "" {
		req.ReferralSource = &body.ReferralSource
	}

	if err := s.dispatcher.Notify(r.Context(), req); err != nil {
		if stdErr, ok := errors.AsStandardError(err); ok {
			writeJSON(w, errors.HTTPStatus(stdErr.Code), map[string]interface{}{
				"success": false,
				"error":   stdErr.Message,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to send notifications",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
