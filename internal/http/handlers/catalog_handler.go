package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/http/response"
)

// ListServices returns the catalog; ?active=true narrows to bookable
// offerings.
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	services, err := h.catalog.List(r.Context(), activeOnly)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	if services == nil {
		services = []domain.Service{}
	}
	response.WriteJSON(w, http.StatusOK, services)
}

func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "service not found")
		return
	}

	svc, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	svc, err := h.catalog.Create(r.Context(), &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, svc)
}

func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "service not found")
		return
	}

	var req domain.UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	svc, err := h.catalog.Update(r.Context(), id, &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "service not found")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		response.MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
