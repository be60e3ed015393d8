// Package registry is the canonical namespace of claim, fit, and phase
// identifiers. It is the single source of truth for the resolver and must be
// fully populated before resolution begins (two-pass construction).
package registry

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/quireproject/quire/internal/model"
)

var (
	// ClaimIDPattern matches C123 or a refinement C123.a
	ClaimIDPattern = regexp.MustCompile(`^C\d+(\.[a-z])?$`)

	// FitIDPattern matches F-AREA-045
	FitIDPattern = regexp.MustCompile(`^F-[A-Z]+-\d+$`)

	// PhaseIDPattern matches a free-form slug
	PhaseIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

	// BodyTokenPattern finds identifier-looking tokens in free prose.
	// Matches are best-effort resolver hints, never authoritative.
	BodyTokenPattern = regexp.MustCompile(`\b(C\d+(?:\.[a-z])?|F-[A-Z]+-\d+)\b`)
)

// ValidID reports whether id matches the pattern for kind
func ValidID(id string, kind model.Kind) bool {
	switch kind {
	case model.KindClaim:
		return ClaimIDPattern.MatchString(id)
	case model.KindFit:
		return FitIDPattern.MatchString(id)
	case model.KindPhase:
		return PhaseIDPattern.MatchString(id)
	}
	return false
}

// InferKind classifies an identifier-looking token by its shape
func InferKind(id string) (model.Kind, bool) {
	switch {
	case ClaimIDPattern.MatchString(id):
		return model.KindClaim, true
	case FitIDPattern.MatchString(id):
		return model.KindFit, true
	}
	return "", false
}

type entry struct {
	kind model.Kind
	file string
	line int
}

// Registry maps every known identifier to its kind and origin.
// Registration is first-writer-wins; a duplicate is a fatal finding, never a
// silent overwrite. Not safe for concurrent writers: all registration
// happens behind the two-phase barrier before any reads.
type Registry struct {
	entries map[string]entry
	order   []string
	dups    []model.Finding
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register records an identifier. The id must match its kind's pattern.
// A second registration of the same id, regardless of kind, produces a
// DUPLICATE_ID finding naming both source files; the first writer wins.
func (r *Registry) Register(id string, kind model.Kind, file string, line int) error {
	if !ValidID(id, kind) {
		return fmt.Errorf("id %q does not match %s pattern", id, kind)
	}

	if prev, exists := r.entries[id]; exists {
		r.dups = append(r.dups, model.Finding{
			Code:     model.CodeDuplicateID,
			Severity: model.SeverityFatal,
			RecordID: id,
			File:     file,
			Line:     line,
			Message:  fmt.Sprintf("%s already declared in %s:%d", id, prev.file, prev.line),
		})
		return nil
	}

	r.entries[id] = entry{kind: kind, file: file, line: line}
	r.order = append(r.order, id)
	return nil
}

// Exists reports whether id is registered
func (r *Registry) Exists(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// KindOf returns the registered kind of id
func (r *Registry) KindOf(id string) (model.Kind, bool) {
	e, ok := r.entries[id]
	return e.kind, ok
}

// OriginOf returns where id was first registered
func (r *Registry) OriginOf(id string) (model.Origin, bool) {
	e, ok := r.entries[id]
	return model.Origin{File: e.file, Line: e.line}, ok
}

// IDs returns all registered identifiers, optionally filtered by kind,
// in registration order.
func (r *Registry) IDs(kind model.Kind) []string {
	var out []string
	for _, id := range r.order {
		if kind == "" || r.entries[id].kind == kind {
			out = append(out, id)
		}
	}
	return out
}

// Duplicates returns the DUPLICATE_ID findings collected during registration
func (r *Registry) Duplicates() []model.Finding {
	out := make([]model.Finding, len(r.dups))
	copy(out, r.dups)
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecordID != out[j].RecordID {
			return out[i].RecordID < out[j].RecordID
		}
		return out[i].File < out[j].File
	})
	return out
}

// Len returns the number of registered identifiers
func (r *Registry) Len() int {
	return len(r.entries)
}
