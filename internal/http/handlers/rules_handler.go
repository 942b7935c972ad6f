package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/http/response"
)

// GetRules returns the singleton rule set with its opening hours and
// blocked periods.
func (h *Handlers) GetRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.Get(r.Context())
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, rules)
}

// UpdateRules applies a partial update to the singleton rule set.
func (h *Handlers) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	rules, err := h.rules.Update(r.Context(), &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, rules)
}

func (h *Handlers) CreateBlockedPeriod(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBlockedPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	period, err := h.rules.CreateBlockedPeriod(r.Context(), &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, period)
}

func (h *Handlers) UpdateBlockedPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "blocked period not found")
		return
	}

	var req domain.UpdateBlockedPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	period, err := h.rules.UpdateBlockedPeriod(r.Context(), id, &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, period)
}

func (h *Handlers) DeleteBlockedPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "blocked period not found")
		return
	}

	if err := h.rules.DeleteBlockedPeriod(r.Context(), id); err != nil {
		response.MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
