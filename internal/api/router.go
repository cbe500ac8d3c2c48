package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/q-pitt/Medilense-3bros/internal/api/recovery"
	"github.com/q-pitt/Medilense-3bros/internal/services"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Medications    *services.MedicationService
	Adherence      *services.AdherenceService
	Health         *HealthHandler
	MaxUploadBytes int64
	Log            zerolog.Logger
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// metrics sits outside recovery so requests that panic are still counted
	router.Use(metricsMiddleware)
	router.Use(recovery.Middleware(d.Log))

	medHandler := NewMedicationHandler(d.Medications, d.MaxUploadBytes)
	adhHandler := NewAdherenceHandler(d.Adherence)
	health := d.Health
	if health == nil {
		health = NewHealthHandler(nil, nil)
	}

	router.HandleFunc("/api/health", health.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Registration and medication set
	router.HandleFunc("/api/prescriptions", medHandler.RegisterPrescription).Methods("POST")
	router.HandleFunc("/api/medications", medHandler.ListMedications).Methods("GET")
	router.HandleFunc("/api/medications/{name}", medHandler.DeleteMedication).Methods("DELETE")
	router.HandleFunc("/api/data", medHandler.ResetData).Methods("DELETE")

	// Daily checklist and calendar
	router.HandleFunc("/api/schedule", medHandler.GetSchedule).Methods("GET")
	router.HandleFunc("/api/calendar", medHandler.GetCalendar).Methods("GET")

	// Adherence checkmarks
	router.HandleFunc("/api/adherence/{date}", adhHandler.GetDay).Methods("GET")
	router.HandleFunc("/api/adherence/{date}/{name}", adhHandler.SetTaken).Methods("PUT")

	return router
}
