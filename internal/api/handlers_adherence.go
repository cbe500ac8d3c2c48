package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	respond "github.com/q-pitt/Medilense-3bros/internal/api/respond"
	"github.com/q-pitt/Medilense-3bros/internal/api/validate"
	"github.com/q-pitt/Medilense-3bros/internal/services"
)

// AdherenceHandler is a thin HTTP transport over AdherenceService.
type AdherenceHandler struct {
	svc *services.AdherenceService
}

func NewAdherenceHandler(svc *services.AdherenceService) *AdherenceHandler {
	return &AdherenceHandler{svc: svc}
}

// SetTaken PUT /api/adherence/{date}/{name} body {"taken": bool}
func (h *AdherenceHandler) SetTaken(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	date, err := validate.Date("date", vars["date"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	name := vars["name"]
	if err := validate.MedicationName(name); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	var req struct {
		Taken *bool `json:"taken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Taken == nil {
		respond.WriteBadRequest(w, "taken is required")
		return
	}
	if err := h.svc.SetTaken(r.Context(), date, name, *req.Taken); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"name":  strings.TrimSpace(name),
		"taken": *req.Taken,
	})
}

// GetDay GET /api/adherence/{date}
func (h *AdherenceHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, err := validate.Date("date", mux.Vars(r)["date"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	status, err := h.svc.Day(r.Context(), date)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, status)
}
