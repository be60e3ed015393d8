package model

import (
	"fmt"
	"strings"
)

// Kind identifies the namespace a record belongs to
type Kind string

const (
	KindClaim Kind = "claim" // Structural assertion at an epistemic tier
	KindFit   Kind = "fit"   // Explanatory model demonstrating adequacy, never authority
	KindPhase Kind = "phase" // Named unit of research work
)

// Status is the governance lifecycle state of a record
type Status string

const (
	StatusProposed   Status = "PROPOSED"
	StatusActive     Status = "ACTIVE"
	StatusSuperseded Status = "SUPERSEDED"
	StatusClosed     Status = "CLOSED"
	StatusFalsified  Status = "FALSIFIED"
)

// ParseStatus converts a header field value to a Status
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusProposed:
		return StatusProposed, true
	case StatusActive:
		return StatusActive, true
	case StatusSuperseded:
		return StatusSuperseded, true
	case StatusClosed:
		return StatusClosed, true
	case StatusFalsified:
		return StatusFalsified, true
	}
	return "", false
}

// FitTier grades how well an explanatory model fits
type FitTier string

const (
	FitTierTrivial     FitTier = "F0" // Fits anything, explains nothing
	FitTierFailed      FitTier = "F1"
	FitTierAdequate    FitTier = "F2"
	FitTierCompelling  FitTier = "F3"
	FitTierExploratory FitTier = "F4"
)

// ParseFitTier converts a header field value to a FitTier
func ParseFitTier(s string) (FitTier, bool) {
	switch FitTier(strings.ToUpper(strings.TrimSpace(s))) {
	case FitTierTrivial:
		return FitTierTrivial, true
	case FitTierFailed:
		return FitTierFailed, true
	case FitTierAdequate:
		return FitTierAdequate, true
	case FitTierCompelling:
		return FitTierCompelling, true
	case FitTierExploratory:
		return FitTierExploratory, true
	}
	return "", false
}

// FitResult is the outcome of running an explanatory model
type FitResult string

const (
	FitResultSuccess FitResult = "SUCCESS"
	FitResultPartial FitResult = "PARTIAL"
	FitResultNull    FitResult = "NULL"
)

// ParseFitResult converts a header field value to a FitResult
func ParseFitResult(s string) (FitResult, bool) {
	switch FitResult(strings.ToUpper(strings.TrimSpace(s))) {
	case FitResultSuccess:
		return FitResultSuccess, true
	case FitResultPartial:
		return FitResultPartial, true
	case FitResultNull:
		return FitResultNull, true
	}
	return "", false
}

// RefType classifies a typed cross-reference between records
type RefType string

const (
	RefSupports   RefType = "supports" // Fit lends evidence to a claim
	RefRefines    RefType = "refines"  // Narrower restatement (C12.a refines C12)
	RefExtends    RefType = "extends"
	RefSupersedes RefType = "supersedes" // Replacement; old record flips to SUPERSEDED
	RefCites      RefType = "cites"      // Untyped mention, non-authoritative when from body
)

// ParseRefType converts a header field value to a RefType
func ParseRefType(s string) (RefType, bool) {
	switch RefType(strings.ToLower(strings.TrimSpace(s))) {
	case RefSupports:
		return RefSupports, true
	case RefRefines:
		return RefRefines, true
	case RefExtends:
		return RefExtends, true
	case RefSupersedes:
		return RefSupersedes, true
	case RefCites:
		return RefCites, true
	}
	return "", false
}

// Ref is one entry in a record's ordered reference set
type Ref struct {
	Type   RefType `json:"type"`
	Target string  `json:"target"`
	Hint   bool    `json:"hint,omitempty"` // Extracted from body prose, not the header
}

// Origin records where a record was parsed from
type Origin struct {
	File     string `json:"file"`
	Line     int    `json:"line"`      // Header line, 1-based
	BodyLine int    `json:"body_line"` // First body line, 1-based
}

// Record is a claim or fit parsed from a corpus document.
// Kind-specific fields are populated per Kind; validation never reads
// structured facts out of Body.
type Record struct {
	ID     string `json:"id"`
	Kind   Kind   `json:"kind"`
	Title  string `json:"title"`
	Status Status `json:"status"`
	Scope  string `json:"scope,omitempty"`
	Body   string `json:"body,omitempty"`
	Refs   []Ref  `json:"refs,omitempty"`
	Origin Origin `json:"origin"`

	// Claim fields
	ConstraintTier  int    `json:"constraint_tier"`            // 0 frozen fact .. 4 exploratory
	EvidenceSummary string `json:"evidence_summary,omitempty"` // Method + headline statistic
	HumanAuthorized bool   `json:"human_authorized,omitempty"` // Required for tier 0/1

	// Fit fields
	FitTier  FitTier   `json:"fit_tier,omitempty"`
	Result   FitResult `json:"result,omitempty"`
	Supports []string  `json:"supports,omitempty"` // Claim IDs; lends evidence, never defines
}

// TierLabel renders the tier the way headers and tables carry it
func (r *Record) TierLabel() string {
	if r.Kind == KindFit {
		return string(r.FitTier)
	}
	return fmt.Sprintf("%d", r.ConstraintTier)
}

// IsTerminal reports whether the record's status admits no further transition
func (r *Record) IsTerminal() bool {
	return r.Status == StatusFalsified || r.Status == StatusClosed || r.Status == StatusSuperseded
}

// Edge is a resolved directed relationship in the corpus graph
type Edge struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Type RefType `json:"type"`
	Hint bool    `json:"hint,omitempty"`
}
