package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/gorilla/mux"

	respond "github.com/q-pitt/Medilense-3bros/internal/api/respond"
	"github.com/q-pitt/Medilense-3bros/internal/api/validate"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/services"
)

// DefaultMaxUploadBytes caps a prescription photo upload.
const DefaultMaxUploadBytes = 10 << 20

// MedicationHandler is a thin HTTP transport over MedicationService.
type MedicationHandler struct {
	svc            *services.MedicationService
	maxUploadBytes int64
}

func NewMedicationHandler(svc *services.MedicationService, maxUploadBytes int64) *MedicationHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &MedicationHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// RegisterPrescription POST /api/prescriptions (multipart: image, optional date)
func (h *MedicationHandler) RegisterPrescription(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if isTooLarge(err) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		respond.WriteBadRequest(w, "expected multipart/form-data with an image field")
		return
	}
	date, err := validate.OptionalDate("date", r.FormValue("date"), h.svc.Today())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respond.WriteBadRequest(w, "image is required")
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		respond.WriteBadRequest(w, "could not read image")
		return
	}

	res, err := h.svc.Register(r.Context(), image, date)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, res)
}

// ListMedications GET /api/medications
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := h.svc.List(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"medications": meds, "count": len(meds)})
}

// DeleteMedication DELETE /api/medications/{name}
func (h *MedicationHandler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := validate.MedicationName(name); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	n, err := h.svc.Delete(r.Context(), name)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"name": strings.TrimSpace(name), "deleted": n})
}

// GetSchedule GET /api/schedule?date=YYYY-MM-DD
func (h *MedicationHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	date, err := validate.OptionalDate("date", r.URL.Query().Get("date"), h.svc.Today())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	cl, err := h.svc.Checklist(r.Context(), date)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, cl)
}

// GetCalendar GET /api/calendar?from=&to= (defaults to the current month)
func (h *MedicationHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	first, last := monthOf(h.svc.Today())
	q := r.URL.Query()
	from, err := validate.OptionalDate("from", q.Get("from"), first)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	to, err := validate.OptionalDate("to", q.Get("to"), last)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	cal, err := h.svc.Calendar(r.Context(), from, to)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, cal)
}

// ResetData DELETE /api/data
func (h *MedicationHandler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reset(r.Context()); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func monthOf(d strfmt.Date) (strfmt.Date, strfmt.Date) {
	t := time.Time(d)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return strfmt.Date(first), model.AddDays(strfmt.Date(first.AddDate(0, 1, 0)), -1)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}
