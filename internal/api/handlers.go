package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/repcard/engine/internal/core/domain"
	"github.com/repcard/engine/internal/engine/retry"
)

// executeRequest is the wire shape of one transaction intent. The
// optional policy overrides let a UI shorten retries for interactive
// flows.
type executeRequest struct {
	Kind       domain.IntentKind `json:"kind"`
	Contract   string            `json:"contract"`
	Function   string            `json:"function"`
	Args       []string          `json:"args"`
	Signer     string            `json:"signer"`
	Subject    string            `json:"subject"`
	MaxRetries *int              `json:"max_retries,omitempty"`
}

// executeResponse wraps the resolution result. Confirmed is false when
// the outcome id is the unknown sentinel: the transaction succeeded but
// the result could not be confirmed, and the user should check their
// history rather than be shown an error.
type executeResponse struct {
	Result    domain.ResolutionResult `json:"result"`
	Confirmed bool                    `json:"confirmed"`
	Message   string                  `json:"message,omitempty"`
}

// errorResponse carries a classified failure. Notify tells the UI
// whether to show an error toast; user cancellations are silent.
type errorResponse struct {
	Error  *domain.ClassifiedError `json:"error"`
	Notify bool                    `json:"notify"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	intent := domain.TransactionIntent{
		Kind:     req.Kind,
		Contract: req.Contract,
		Function: req.Function,
		Args:     req.Args,
		Signer:   req.Signer,
		Subject:  req.Subject,
	}

	var policy *retry.Policy
	if req.MaxRetries != nil {
		p := retry.DefaultPolicy
		p.MaxRetries = *req.MaxRetries
		policy = &p
	}

	result, err := s.flow.Execute(r.Context(), intent, policy)
	if err != nil {
		var ce *domain.ClassifiedError
		if !errors.As(err, &ce) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, statusFor(ce), errorResponse{
			Error:  ce,
			Notify: !ce.IsUserCancelled(),
		})
		return
	}

	resp := executeResponse{Result: result, Confirmed: result.Confirmed()}
	if !resp.Confirmed {
		resp.Message = "Transaction succeeded but the outcome could not be confirmed. Please check your history."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOutcomes(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		http.Error(w, "missing subject parameter", http.StatusBadRequest)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := s.outcomes.ListBySubject(r.Context(), subject, limit)
	if err != nil {
		http.Error(w, "failed to list outcomes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": records})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	detail := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			detail[name] = err.Error()
		} else {
			detail[name] = "ok"
		}
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": detail})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	detail := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			detail[name] = err.Error()
		} else {
			detail[name] = "ok"
		}
	}

	report := map[string]any{"checks": detail}
	if s.providers != nil {
		report["providers"] = s.providers()
	}
	writeJSON(w, http.StatusOK, report)
}

func statusFor(ce *domain.ClassifiedError) int {
	switch {
	case ce.IsUserCancelled():
		return http.StatusConflict
	case ce.Code == domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case ce.BusinessRuleRejected():
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
