package services

import (
	"github.com/go-openapi/strfmt"

	"github.com/q-pitt/Medilense-3bros/internal/drugname"
	"github.com/q-pitt/Medilense-3bros/internal/model"
	"github.com/q-pitt/Medilense-3bros/internal/schedule"
)

// MedicationView is a stored record plus the derived fields clients render.
type MedicationView struct {
	model.MedicationRecord
	EndDate   strfmt.Date `json:"endDate"`
	SearchURL string      `json:"searchUrl"`
}

func viewOf(r model.MedicationRecord) MedicationView {
	return MedicationView{MedicationRecord: r, EndDate: r.LastDay(), SearchURL: drugname.SearchURL(r.Name)}
}

func viewsOf(recs []model.MedicationRecord) []MedicationView {
	out := make([]MedicationView, 0, len(recs))
	for _, r := range recs {
		out = append(out, viewOf(r))
	}
	return out
}

// RegisterResult is the outcome of a successful prescription registration.
type RegisterResult struct {
	Count       int              `json:"count"`
	Medications []MedicationView `json:"medications"`
}

// ChecklistItem is one medication due on the checklist date.
type ChecklistItem struct {
	MedicationView
	RemainingDays int  `json:"remainingDays"`
	Taken         bool `json:"taken"`
}

// Checklist is the daily view: what is due and whether each dose was taken.
type Checklist struct {
	Date     strfmt.Date     `json:"date"`
	Items    []ChecklistItem `json:"items"`
	AllTaken bool            `json:"allTaken"`
}

// Calendar is the rendering data for [From, To].
type Calendar struct {
	From         strfmt.Date         `json:"from"`
	To           strfmt.Date         `json:"to"`
	Bars         []schedule.Bar      `json:"bars"`
	Events       []schedule.DayEvent `json:"events"`
	AdherentDays []strfmt.Date       `json:"adherentDays"`
}

// DayStatus is the adherence state of one date.
type DayStatus struct {
	Date     strfmt.Date     `json:"date"`
	Required []string        `json:"required"`
	Taken    map[string]bool `json:"taken"`
	AllTaken bool            `json:"allTaken"`
}
