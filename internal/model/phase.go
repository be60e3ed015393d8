package model

import "strings"

// PhaseStatus is the lifecycle state of a research phase
type PhaseStatus string

const (
	PhaseComplete  PhaseStatus = "COMPLETE"
	PhaseActive    PhaseStatus = "ACTIVE"
	PhaseAbandoned PhaseStatus = "ABANDONED"
)

// ParsePhaseStatus converts a header field value to a PhaseStatus
func ParsePhaseStatus(s string) (PhaseStatus, bool) {
	switch PhaseStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case PhaseComplete:
		return PhaseComplete, true
	case PhaseActive:
		return PhaseActive, true
	case PhaseAbandoned:
		return PhaseAbandoned, true
	}
	return "", false
}

// Phase is a named unit of research work producing claims, fits, and metrics
type Phase struct {
	ID       string      `json:"id"` // Free-form slug
	Status   PhaseStatus `json:"status"`
	Produced []string    `json:"produced,omitempty"` // Claim/Fit IDs declared by the phase
	Body     string      `json:"body,omitempty"`
	Origin   Origin      `json:"origin"`
}

// Metric is a quantitative result attached to exactly one record as
// supporting evidence. Immutable once recorded; attachment is append-only.
type Metric struct {
	Name       string   `json:"name"` // Statistic name (chi_square, entropy_ratio, ...)
	Value      float64  `json:"value"`
	SampleSize int      `json:"n,omitempty"`
	PValue     *float64 `json:"p,omitempty"`
	Attach     string   `json:"attach"` // Record ID the metric supports
	Phase      string   `json:"phase"`  // Producing phase
	Origin     Origin   `json:"origin"`
}
