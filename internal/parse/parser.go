// Package parse turns raw document text into typed records.
//
// A document has exactly two zones: a header zone (the first non-blank line
// plus continuation lines starting with "|", pipe-delimited Key: Value
// segments) and a body zone (everything after, opaque prose). Structured
// fields come from the header only; the body is never used to infer tier,
// status, or refs.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/registry"
)

// Document is the result of parsing one corpus file. Narrative files are
// skipped, not errored: the corpus interleaves records with prose.
// Serialized form is what the parse cache stores.
type Document struct {
	Record   *model.Record   `json:"record,omitempty"`
	Phase    *model.Phase    `json:"phase,omitempty"`
	Findings []model.Finding `json:"findings,omitempty"`
	Skipped  bool            `json:"skipped,omitempty"`
}

// ParseDocument parses raw text into a record, a phase, or a skip.
// Pure function: no side effects, all problems come back as findings.
func ParseDocument(path, text string) *Document {
	lines := strings.Split(text, "\n")

	start := -1
	for i, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			start = i
			break
		}
	}
	if start == -1 {
		return &Document{Skipped: true}
	}

	headerLine := start + 1 // 1-based for provenance
	segments := splitSegments(strings.TrimSpace(lines[start]))

	// Continuation lines extend the header zone.
	end := start + 1
	for end < len(lines) {
		t := strings.TrimSpace(lines[end])
		if !strings.HasPrefix(t, "|") {
			break
		}
		segments = append(segments, splitSegments(strings.TrimPrefix(t, "|"))...)
		end++
	}
	bodyStart := end + 1
	for bodyStart-1 < len(lines) && strings.TrimSpace(lines[bodyStart-1]) == "" {
		bodyStart++
	}
	body := strings.Trim(strings.Join(lines[end:], "\n"), "\n")

	first := strings.TrimSpace(segments[0])
	p := &docParser{path: path, line: headerLine, bodyLine: bodyStart}

	switch {
	case strings.HasPrefix(first, "PHASE ") || first == "PHASE":
		return p.parsePhase(first, segments[1:], body)
	case looksLikeClaimID(first):
		return p.parseRecord(first, model.KindClaim, segments[1:], body)
	case looksLikeFitID(first):
		return p.parseRecord(first, model.KindFit, segments[1:], body)
	default:
		// Narrative content; the engine ignores it.
		return &Document{Skipped: true}
	}
}

// looksLikeClaimID is the loose gate that separates a claim header attempt
// from narrative prose. Strict validation happens afterwards so that C12..x
// becomes a PARSE_ERROR rather than a silent skip.
func looksLikeClaimID(s string) bool {
	return len(s) >= 2 && s[0] == 'C' && s[1] >= '0' && s[1] <= '9' && !strings.ContainsAny(s, " \t")
}

func looksLikeFitID(s string) bool {
	return strings.HasPrefix(s, "F-") && !strings.ContainsAny(s, " \t")
}

type docParser struct {
	path     string
	line     int
	bodyLine int
	findings []model.Finding
}

func (p *docParser) errf(format string, args ...interface{}) {
	p.findings = append(p.findings, model.Finding{
		Code:     model.CodeParseError,
		Severity: model.SeverityWarning,
		File:     p.path,
		Line:     p.line,
		Message:  fmt.Sprintf(format, args...) + "; document excluded from corpus",
	})
}

func (p *docParser) parseRecord(id string, kind model.Kind, segs []string, body string) *Document {
	if !registry.ValidID(id, kind) {
		p.errf("malformed %s identifier %q", kind, id)
		return &Document{Findings: p.findings}
	}

	fields, ok := p.parseFields(segs)
	if !ok {
		return &Document{Findings: p.findings}
	}

	rec := &model.Record{
		ID:     id,
		Kind:   kind,
		Body:   body,
		Origin: model.Origin{File: p.path, Line: p.line, BodyLine: p.bodyLine},
	}

	for key, value := range fields {
		switch key {
		case "title":
			rec.Title = value
		case "scope":
			rec.Scope = value
		case "status":
			st, ok := model.ParseStatus(value)
			if !ok {
				p.errf("unknown status %q", value)
				continue
			}
			rec.Status = st
		case "tier":
			p.parseTier(rec, value)
		case "refs":
			rec.Refs = p.parseRefs(value)
		case "evidence":
			if kind != model.KindClaim {
				p.errf("field Evidence is claim-only")
				continue
			}
			rec.EvidenceSummary = value
		case "authorized":
			if kind != model.KindClaim {
				p.errf("field Authorized is claim-only")
				continue
			}
			auth, ok := parseAuthorized(value)
			if !ok {
				p.errf("unknown authorization marker %q", value)
				continue
			}
			rec.HumanAuthorized = auth
		case "result":
			if kind != model.KindFit {
				p.errf("field Result is fit-only")
				continue
			}
			res, ok := model.ParseFitResult(value)
			if !ok {
				p.errf("unknown result %q", value)
				continue
			}
			rec.Result = res
		case "supports":
			if kind != model.KindFit {
				p.errf("field Supports is fit-only")
				continue
			}
			rec.Supports = p.parseIDList("Supports", value)
		default:
			p.errf("unknown header field %q", key)
		}
	}

	p.requireRecordFields(rec, fields)

	if len(p.findings) > 0 {
		return &Document{Findings: p.findings}
	}
	return &Document{Record: rec}
}

func (p *docParser) parseTier(rec *model.Record, value string) {
	value = strings.TrimSpace(value)
	if rec.Kind == model.KindFit {
		ft, ok := model.ParseFitTier(value)
		if !ok {
			p.errf("unknown fit tier %q", value)
			return
		}
		rec.FitTier = ft
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 4 {
		p.errf("constraint tier %q outside 0-4", value)
		return
	}
	rec.ConstraintTier = n
}

func (p *docParser) requireRecordFields(rec *model.Record, fields map[string]string) {
	required := []string{"title", "tier", "status"}
	if rec.Kind == model.KindFit {
		required = append(required, "result")
	}
	for _, key := range required {
		if _, ok := fields[key]; !ok {
			p.errf("missing required header field %q", key)
		}
	}
}

func (p *docParser) parsePhase(first string, segs []string, body string) *Document {
	parts := strings.Fields(first)
	if len(parts) != 2 {
		p.errf("phase header needs exactly one slug, got %q", first)
		return &Document{Findings: p.findings}
	}
	id := parts[1]
	if !registry.ValidID(id, model.KindPhase) {
		p.errf("malformed phase slug %q", id)
		return &Document{Findings: p.findings}
	}

	fields, ok := p.parseFields(segs)
	if !ok {
		return &Document{Findings: p.findings}
	}

	ph := &model.Phase{
		ID:     id,
		Body:   body,
		Origin: model.Origin{File: p.path, Line: p.line, BodyLine: p.bodyLine},
	}

	for key, value := range fields {
		switch key {
		case "status":
			st, ok := model.ParsePhaseStatus(value)
			if !ok {
				p.errf("unknown phase status %q", value)
				continue
			}
			ph.Status = st
		case "produced":
			ph.Produced = p.parseIDList("Produced", value)
		default:
			p.errf("unknown header field %q", key)
		}
	}

	if _, ok := fields["status"]; !ok {
		p.errf("missing required header field %q", "status")
	}

	if len(p.findings) > 0 {
		return &Document{Findings: p.findings}
	}
	return &Document{Phase: ph}
}

// parseFields turns Key: Value segments into a map. A repeated key is
// ambiguous identity and never resolved silently.
func (p *docParser) parseFields(segs []string) (map[string]string, bool) {
	fields := make(map[string]string, len(segs))
	ok := true
	for _, seg := range segs {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, value, found := strings.Cut(seg, ":")
		if !found {
			p.errf("header segment %q is not Key: Value", seg)
			ok = false
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if _, dup := fields[key]; dup {
			p.errf("duplicate header field %q", key)
			ok = false
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, ok
}

// parseRefs parses "refines:C100, supersedes:C10, F-GLY-001". A bare
// identifier is a cites ref.
func (p *docParser) parseRefs(value string) []model.Ref {
	var refs []model.Ref
	for _, item := range splitList(value) {
		typ := model.RefCites
		target := item
		if before, after, found := strings.Cut(item, ":"); found {
			rt, ok := model.ParseRefType(before)
			if !ok {
				p.errf("unknown ref type %q", before)
				continue
			}
			typ = rt
			target = strings.TrimSpace(after)
		}
		if _, ok := registry.InferKind(target); !ok {
			p.errf("malformed ref target %q", target)
			continue
		}
		refs = append(refs, model.Ref{Type: typ, Target: target})
	}
	return refs
}

func (p *docParser) parseIDList(field, value string) []string {
	var ids []string
	for _, item := range splitList(value) {
		if _, ok := registry.InferKind(item); !ok {
			p.errf("malformed identifier %q in %s", item, field)
			continue
		}
		ids = append(ids, item)
	}
	return ids
}

func parseAuthorized(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "human", "true", "yes":
		return true, true
	case "no", "false":
		return false, true
	}
	return false, false
}

func splitSegments(line string) []string {
	parts := strings.Split(line, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
