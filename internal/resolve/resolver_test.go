package resolve

import (
	"strings"
	"testing"

	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/registry"
)

func seedRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	ids := map[string]model.Kind{
		"C1":    model.KindClaim,
		"C2":    model.KindClaim,
		"C2.a":  model.KindClaim,
		"F-X-1": model.KindFit,
		"F-X-2": model.KindFit,
	}
	for id, kind := range ids {
		if err := reg.Register(id, kind, "seed.md", 1); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	return reg
}

func TestResolver_ResolvedRefs(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:   "C2.a",
		Kind: model.KindClaim,
		Refs: []model.Ref{
			{Type: model.RefRefines, Target: "C2"},
			{Type: model.RefCites, Target: "F-X-1"},
		},
		Origin: model.Origin{File: "c2a.md", Line: 1},
	}

	edges, findings := r.Record(rec)
	if len(findings) != 0 {
		t.Fatalf("Expected clean resolution, got %v", findings)
	}
	if len(edges) != 2 {
		t.Fatalf("Expected 2 edges, got %v", edges)
	}
	if edges[0].Type != model.RefRefines || edges[0].To != "C2" {
		t.Errorf("Unexpected edge: %+v", edges[0])
	}
}

func TestResolver_DanglingRef(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:     "C1",
		Kind:   model.KindClaim,
		Refs:   []model.Ref{{Type: model.RefCites, Target: "C99"}},
		Origin: model.Origin{File: "c1.md", Line: 1},
	}

	edges, findings := r.Record(rec)
	if len(edges) != 0 {
		t.Errorf("Dangling ref must not produce an edge, got %v", edges)
	}
	if len(findings) != 1 {
		t.Fatalf("Expected exactly 1 finding, got %v", findings)
	}
	f := findings[0]
	if f.Code != model.CodeDanglingRef || f.Severity != model.SeverityWarning {
		t.Errorf("Expected WARNING DANGLING_REFERENCE, got %s %s", f.Severity, f.Code)
	}
	if f.RecordID != "C1" || f.Related != "C99" {
		t.Errorf("Finding must carry the pair (C1, C99): %+v", f)
	}
}

func TestResolver_SupportsMustTargetClaims(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:       "F-X-1",
		Kind:     model.KindFit,
		Supports: []string{"C1", "F-X-2"},
		Origin:   model.Origin{File: "f.md", Line: 1},
	}

	edges, findings := r.Record(rec)
	if len(edges) != 1 || edges[0].To != "C1" || edges[0].Type != model.RefSupports {
		t.Errorf("Expected one supports edge to C1, got %v", edges)
	}
	if len(findings) != 1 {
		t.Fatalf("Expected 1 finding, got %v", findings)
	}
	if findings[0].Code != model.CodeTypeMismatch {
		t.Errorf("Expected TYPE_MISMATCH for fit target, got %s", findings[0].Code)
	}
	if !strings.Contains(findings[0].Message, "expected claim") {
		t.Errorf("Message should name the expected kind: %s", findings[0].Message)
	}
}

func TestResolver_RefinesAcrossKindsMismatch(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:     "C1",
		Kind:   model.KindClaim,
		Refs:   []model.Ref{{Type: model.RefRefines, Target: "F-X-1"}},
		Origin: model.Origin{File: "c1.md", Line: 1},
	}

	_, findings := r.Record(rec)
	if len(findings) != 1 || findings[0].Code != model.CodeTypeMismatch {
		t.Fatalf("Expected TYPE_MISMATCH, got %v", findings)
	}
}

func TestResolver_BodyHints(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:     "C1",
		Kind:   model.KindClaim,
		Body:   "Compare with C2 and the failed model F-X-2. C77 was never written. C1 itself recurs.",
		Origin: model.Origin{File: "c1.md", Line: 1, BodyLine: 3},
	}

	edges, findings := r.Record(rec)

	var hints []model.Edge
	for _, e := range edges {
		if !e.Hint {
			t.Errorf("Body-derived edge must be a hint: %+v", e)
		}
		hints = append(hints, e)
	}
	if len(hints) != 2 {
		t.Fatalf("Expected hints to C2 and F-X-2, got %v", hints)
	}

	if len(findings) != 1 || findings[0].Related != "C77" {
		t.Fatalf("Expected one dangling body citation for C77, got %v", findings)
	}
}

func TestResolver_BodyHintSkipsHeaderRefs(t *testing.T) {
	r := New(seedRegistry(t))

	rec := &model.Record{
		ID:     "C1",
		Kind:   model.KindClaim,
		Refs:   []model.Ref{{Type: model.RefCites, Target: "C2"}},
		Body:   "Discussed together with C2.",
		Origin: model.Origin{File: "c1.md", Line: 1, BodyLine: 3},
	}

	edges, findings := r.Record(rec)
	if len(findings) != 0 {
		t.Fatalf("Expected no findings, got %v", findings)
	}
	// The header ref resolves; the body mention of the same target adds nothing.
	if len(edges) != 1 || edges[0].Hint {
		t.Errorf("Expected only the authoritative header edge, got %v", edges)
	}
}

func TestVocabularyScanner_FitViolation(t *testing.T) {
	scanner := NewVocabularyScanner(model.DefaultForbiddenVocabulary(), false)

	rec := &model.Record{
		ID:     "F-X-1",
		Kind:   model.KindFit,
		Body:   "The slot template explains most words.\nIn effect this governs token selection.",
		Origin: model.Origin{File: "f.md", Line: 1, BodyLine: 3},
	}

	findings := scanner.Scan(rec)
	if len(findings) != 1 {
		t.Fatalf("Expected 1 violation, got %v", findings)
	}
	f := findings[0]
	if f.Code != model.CodeVocabulary || f.Severity != model.SeverityWarning {
		t.Errorf("Expected WARNING VOCABULARY_VIOLATION, got %s %s", f.Severity, f.Code)
	}
	if !strings.Contains(f.Message, `"governs"`) {
		t.Errorf("Finding must cite the offending phrase: %s", f.Message)
	}
	if f.Line != 4 {
		t.Errorf("Expected body line provenance 4, got %d", f.Line)
	}
}

func TestVocabularyScanner_StrictModePromotesToFatal(t *testing.T) {
	scanner := NewVocabularyScanner([]string{"governs"}, true)

	rec := &model.Record{
		ID:     "F-X-1",
		Kind:   model.KindFit,
		Body:   "this governs token selection",
		Origin: model.Origin{File: "f.md", Line: 1, BodyLine: 3},
	}

	findings := scanner.Scan(rec)
	if len(findings) != 1 || findings[0].Severity != model.SeverityFatal {
		t.Fatalf("Expected FATAL in strict mode, got %v", findings)
	}
}

func TestVocabularyScanner_ClaimsExempt(t *testing.T) {
	scanner := NewVocabularyScanner([]string{"governs"}, true)

	rec := &model.Record{
		ID:     "C1",
		Kind:   model.KindClaim,
		Body:   "Slot position governs glyph legality.",
		Origin: model.Origin{File: "c1.md", Line: 1, BodyLine: 3},
	}

	if findings := scanner.Scan(rec); len(findings) != 0 {
		t.Errorf("Claims may use constraint vocabulary, got %v", findings)
	}
}
