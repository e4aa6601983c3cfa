package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainbridge "modbridge/internal/domain/bridge"
	"modbridge/internal/metrics"
	"modbridge/internal/ozone"
	"modbridge/internal/ports"
	bridgesvc "modbridge/internal/usecase/bridge"
)

type emissionRequest struct {
	EventType             string   `json:"eventType"`
	Labels                []string `json:"labels"`
	NegateLabels          []string `json:"negateLabels"`
	Comment               *string  `json:"comment"`
	SubjectDID            string   `json:"subjectDid"`
	SubjectURI            string   `json:"subjectUri"`
	PlatformActionID      string   `json:"platformActionId"`
	PlatformCorrelationID string   `json:"platformCorrelationId"`
	Policies              []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"policies"`
	DurationInHours *int64 `json:"durationInHours"`
}

type mappingRequest struct {
	PolicyType string `json:"policyType"`
	LabelValue string `json:"labelValue"`
	Direction  string `json:"direction"`
}

type syncPatchRequest struct {
	Enabled *bool `json:"enabled"`
}

type apiError struct {
	Error string `json:"error"`
}

type bridgeAPIHandler struct {
	svc *bridgesvc.Service
}

func newBridgeAPIHandler(svc *bridgesvc.Service, prom *metrics.Prom) http.Handler {
	h := &bridgeAPIHandler{svc: svc}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if prom != nil {
		r.Method(http.MethodGet, "/metrics", prom.Handler())
	}

	r.Route("/v1/tenants/{tenantID}", func(r chi.Router) {
		r.Post("/emissions", h.handleEmit)
		r.Get("/emissions", h.handleListEmissions)
		r.Get("/mappings", h.handleListMappings)
		r.Put("/mappings", h.handleUpsertMapping)
		r.Delete("/mappings", h.handleDeleteMapping)
		r.Get("/sync", h.handleGetSync)
		r.Patch("/sync", h.handlePatchSync)
		r.Get("/labeler/health", h.handleLabelerHealth)
		r.Get("/labeler/statuses", h.handleLabelerStatuses)
	})
	return r
}

func (h *bridgeAPIHandler) handleEmit(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req emissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	input := bridgesvc.EmitEventInput{
		TenantID:              tenantID,
		EventType:             req.EventType,
		Labels:                req.Labels,
		NegateLabels:          req.NegateLabels,
		Comment:               req.Comment,
		SubjectDID:            req.SubjectDID,
		SubjectURI:            req.SubjectURI,
		PlatformActionID:      req.PlatformActionID,
		PlatformCorrelationID: req.PlatformCorrelationID,
		DurationInHours:       req.DurationInHours,
	}
	for _, p := range req.Policies {
		input.Policies = append(input.Policies, bridgesvc.PolicyRef{ID: p.ID, Name: p.Name})
	}

	if err := h.svc.EmitEvent(r.Context(), input); err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "emitted"})
}

func (h *bridgeAPIHandler) handleListEmissions(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListEmissions(r.Context(), chi.URLParam(r, "tenantID"), r.URL.Query().Get("status"))
	if err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *bridgeAPIHandler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	if r.URL.Query().Get("effective") == "true" {
		resolved, err := h.svc.ResolveMappings(r.Context(), tenantID)
		if err != nil {
			writeJSON(w, statusForError(err), apiError{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resolved)
		return
	}

	rows, err := h.svc.ListMappings(r.Context(), tenantID)
	if err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *bridgeAPIHandler) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid json body"})
		return
	}

	err := h.svc.UpsertMapping(r.Context(), ports.LabelMapping{
		TenantID:   chi.URLParam(r, "tenantID"),
		PolicyType: req.PolicyType,
		LabelValue: req.LabelValue,
		Direction:  req.Direction,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *bridgeAPIHandler) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	policyType := r.URL.Query().Get("policy")
	labelValue := r.URL.Query().Get("label")
	if policyType == "" || labelValue == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "policy and label query params are required"})
		return
	}

	if err := h.svc.DeleteMapping(r.Context(), chi.URLParam(r, "tenantID"), policyType, labelValue); err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *bridgeAPIHandler) handleGetSync(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.GetSyncState(r.Context(), chi.URLParam(r, "tenantID"))
	if errors.Is(err, ports.ErrSyncStateNotFound) {
		writeJSON(w, http.StatusNotFound, apiError{Error: "tenant has never been polled"})
		return
	}
	if err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *bridgeAPIHandler) handlePatchSync(w http.ResponseWriter, r *http.Request) {
	var req syncPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "enabled field is required"})
		return
	}

	if err := h.svc.SetSyncEnabled(r.Context(), chi.URLParam(r, "tenantID"), *req.Enabled); err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

func (h *bridgeAPIHandler) handleLabelerHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.CheckLabelerHealth(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, health)
}

func (h *bridgeAPIHandler) handleLabelerStatuses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	resp, err := h.svc.QuerySubjectStatuses(r.Context(), chi.URLParam(r, "tenantID"), ozone.QueryStatusesParams{
		Cursor:      query.Get("cursor"),
		Limit:       limit,
		Subject:     query.Get("subject"),
		ReviewState: query.Get("reviewState"),
	})
	if err != nil {
		writeJSON(w, statusForError(err), apiError{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusForError(err error) int {
	var httpErr *domainbridge.HTTPError
	var transportErr *domainbridge.TransportError
	switch {
	case errors.Is(err, domainbridge.ErrNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, domainbridge.ErrInvalidCredential):
		return http.StatusConflict
	case errors.As(err, &httpErr), errors.As(err, &transportErr), errors.Is(err, domainbridge.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
