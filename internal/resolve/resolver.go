// Package resolve checks every cross-reference in the corpus against the
// identifier registry. Resolution is read-only and runs strictly after the
// registration pass has completed.
package resolve

import (
	"fmt"

	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/registry"
)

// Resolver resolves typed refs and free-text body citations. Dangling and
// mismatched references are findings, not errors: the corpus stays usable
// while authors fix edges.
type Resolver struct {
	reg *registry.Registry
}

// New creates a resolver over a fully populated registry
func New(reg *registry.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Record resolves one record's references. Returns the resolved edges and
// the findings for everything that did not resolve cleanly; no reference is
// silently ignored.
func (r *Resolver) Record(rec *model.Record) ([]model.Edge, []model.Finding) {
	var edges []model.Edge
	var findings []model.Finding

	for _, ref := range rec.Refs {
		edge, finding := r.resolveRef(rec, ref)
		if finding != nil {
			findings = append(findings, *finding)
		}
		if edge != nil {
			edges = append(edges, *edge)
		}
	}

	// A fit's supports set is an edge list in its own right.
	for _, target := range rec.Supports {
		edge, finding := r.resolveRef(rec, model.Ref{Type: model.RefSupports, Target: target})
		if finding != nil {
			findings = append(findings, *finding)
		}
		if edge != nil {
			edges = append(edges, *edge)
		}
	}

	hintEdges, hintFindings := r.scanBody(rec)
	edges = append(edges, hintEdges...)
	findings = append(findings, hintFindings...)

	return edges, findings
}

func (r *Resolver) resolveRef(rec *model.Record, ref model.Ref) (*model.Edge, *model.Finding) {
	targetKind, exists := r.reg.KindOf(ref.Target)
	if !exists {
		return nil, &model.Finding{
			Code:     model.CodeDanglingRef,
			Severity: model.SeverityWarning,
			RecordID: rec.ID,
			Related:  ref.Target,
			File:     rec.Origin.File,
			Line:     rec.Origin.Line,
			Message:  fmt.Sprintf("%s %s %s: target not found", rec.ID, ref.Type, ref.Target),
		}
	}

	if want, constrained := expectedKind(rec.Kind, ref.Type); constrained && targetKind != want {
		return nil, &model.Finding{
			Code:     model.CodeTypeMismatch,
			Severity: model.SeverityWarning,
			RecordID: rec.ID,
			Related:  ref.Target,
			File:     rec.Origin.File,
			Line:     rec.Origin.Line,
			Message:  fmt.Sprintf("%s %s %s: target is a %s, expected %s", rec.ID, ref.Type, ref.Target, targetKind, want),
		}
	}

	return &model.Edge{From: rec.ID, To: ref.Target, Type: ref.Type, Hint: ref.Hint}, nil
}

// expectedKind returns the required target kind for an edge, if any.
// Supports always targets claims: a fit lends evidence to constraints, never
// to other fits. Refinement, extension, and supersession stay within a kind.
func expectedKind(source model.Kind, typ model.RefType) (model.Kind, bool) {
	switch typ {
	case model.RefSupports:
		return model.KindClaim, true
	case model.RefRefines, model.RefExtends, model.RefSupersedes:
		return source, true
	}
	return "", false // cites is unconstrained
}

// scanBody extracts identifier-looking tokens from prose and resolves them
// as non-authoritative cites hints. Historical entries carry relationships
// in free text; hints surface them without inferring intent.
func (r *Resolver) scanBody(rec *model.Record) ([]model.Edge, []model.Finding) {
	if rec.Body == "" {
		return nil, nil
	}

	known := map[string]bool{rec.ID: true}
	for _, ref := range rec.Refs {
		known[ref.Target] = true
	}
	for _, id := range rec.Supports {
		known[id] = true
	}

	var edges []model.Edge
	var findings []model.Finding
	for _, token := range registry.BodyTokenPattern.FindAllString(rec.Body, -1) {
		if known[token] {
			continue
		}
		known[token] = true

		if !r.reg.Exists(token) {
			findings = append(findings, model.Finding{
				Code:     model.CodeDanglingRef,
				Severity: model.SeverityWarning,
				RecordID: rec.ID,
				Related:  token,
				File:     rec.Origin.File,
				Line:     rec.Origin.Line,
				Message:  fmt.Sprintf("%s cites %s in body text: target not found", rec.ID, token),
			})
			continue
		}
		edges = append(edges, model.Edge{From: rec.ID, To: token, Type: model.RefCites, Hint: true})
	}
	return edges, findings
}
