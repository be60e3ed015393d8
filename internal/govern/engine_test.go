package govern

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
)

func loadCorpus(t *testing.T, files map[string]string) (*corpus.Corpus, *model.Config) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg := model.DefaultConfig()
	cfg.Corpus.Roots = []string{dir}
	cfg.Cache.Enabled = false
	c, err := corpus.NewLoader(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("load corpus: %v", err)
	}
	return c, cfg
}

func findingsWith(rep *model.Report, code model.Code) []model.Finding {
	var out []model.Finding
	for _, f := range rep.Findings {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

func TestValidate_CleanCorpus(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md":      "C1 | Title: Quire boundaries follow hair direction | Tier: 2 | Status: ACTIVE | Evidence: collation survey of 18 quires\n\nBody prose.\n",
		"f-col-1.md": "F-COL-1 | Title: Hair-out folding model | Tier: F2 | Status: ACTIVE | Result: SUCCESS | Supports: C1\n\nThe model accounts for the observed pattern.\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("clean corpus produced fatal findings: %+v", rep.Findings)
	}
	if n := len(rep.Findings); n != 0 {
		t.Errorf("expected no findings, got %d: %+v", n, rep.Findings)
	}
}

func TestValidate_TierWithoutAuthorization(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Single scribe throughout | Tier: 1 | Status: ACTIVE | Evidence: ductus comparison\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	f := got[0]
	if f.Severity != model.SeverityFatal || f.RecordID != "C1" {
		t.Errorf("unexpected finding: %+v", f)
	}
	if !strings.Contains(f.Message, "tier 1") {
		t.Errorf("message should name the tier: %q", f.Message)
	}
}

func TestValidate_AuthorizedTierPasses(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Single scribe throughout | Tier: 0 | Status: ACTIVE | Evidence: ductus comparison | Authorized: human\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("authorized tier 0 claim should pass: %+v", rep.Findings)
	}
}

func TestValidate_TierLoosening(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Two production campaigns | Tier: 1 | Status: SUPERSEDED | Evidence: ink analysis | Authorized: human\n",
		"c2.md": "C2 | Title: Two campaigns, revised | Tier: 3 | Status: ACTIVE | Refs: supersedes:C1 | Evidence: re-read of campaign boundary\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	f := got[0]
	if f.RecordID != "C2" || f.Related != "C1" {
		t.Errorf("finding should pair successor and predecessor: %+v", f)
	}
	if !strings.Contains(f.Message, "loosens tier 1 to 3") {
		t.Errorf("message should show the tier move: %q", f.Message)
	}
}

func TestValidate_TierTighteningPasses(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Two production campaigns | Tier: 3 | Status: SUPERSEDED | Evidence: ink analysis\n",
		"c2.md": "C2 | Title: Two campaigns, confirmed | Tier: 2 | Status: ACTIVE | Refs: supersedes:C1 | Evidence: corroborating collation\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("tightening supersession should pass: %+v", rep.Findings)
	}
}

func TestValidate_ImplicitPromotionInPhaseBatch(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md":      "C1 | Title: Ruling precedes pricking | Tier: 2 | Status: ACTIVE | Evidence: overlap order on f.12\n",
		"c2.md":      "C2 | Title: Pricking template reused | Tier: 2 | Status: PROPOSED\n",
		"f-rul-1.md": "F-RUL-1 | Title: Template reuse model | Tier: F2 | Status: ACTIVE | Result: SUCCESS | Supports: C1\n",
		"phase.md":   "PHASE ruling-survey | Status: COMPLETE | Produced: F-RUL-1, C2\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	f := got[0]
	if f.RecordID != "C2" || f.Related != "F-RUL-1" {
		t.Errorf("finding should reference both claim and fit: %+v", f)
	}
	if f.Severity != model.SeverityFatal {
		t.Errorf("implicit promotion must be fatal, got %s", f.Severity)
	}
}

func TestValidate_AuthorizedClaimInBatchPasses(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c2.md":      "C2 | Title: Pricking template reused | Tier: 2 | Status: PROPOSED | Authorized: human\n",
		"f-rul-1.md": "F-RUL-1 | Title: Template reuse model | Tier: F2 | Status: ACTIVE | Result: SUCCESS\n",
		"phase.md":   "PHASE ruling-survey | Status: COMPLETE | Produced: F-RUL-1, C2\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("authorized claim in batch should pass: %+v", rep.Findings)
	}
}

func TestValidate_EvidencedClaimInBatchPasses(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c2.md":      "C2 | Title: Pricking template reused | Tier: 2 | Status: ACTIVE | Evidence: identical prick spacing across quires 3-7\n",
		"f-rul-1.md": "F-RUL-1 | Title: Template reuse model | Tier: F2 | Status: ACTIVE | Result: SUCCESS\n",
		"phase.md":   "PHASE ruling-survey | Status: COMPLETE | Produced: F-RUL-1, C2\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("claim with its own evidence should pass: %+v", rep.Findings)
	}
}

func TestValidate_FitRestatedAsClaim(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c3.md":      "C3 | Title: Hair-out folding model | Tier: 2 | Status: PROPOSED\n",
		"f-col-1.md": "F-COL-1 | Title: Hair-out folding model | Tier: F2 | Status: ACTIVE | Result: SUCCESS | Supports: C3\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	if got[0].RecordID != "C3" || got[0].Related != "F-COL-1" {
		t.Errorf("finding should pair claim and fit: %+v", got[0])
	}
}

func TestValidate_SupersededWithoutEdge(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Abandoned reading | Tier: 2 | Status: SUPERSEDED | Evidence: early transcription\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	if !strings.Contains(got[0].Message, "SUPERSEDED") {
		t.Errorf("message should name the status: %q", got[0].Message)
	}
}

func TestValidate_SupersededWithIncomingEdgePasses(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Abandoned reading | Tier: 2 | Status: SUPERSEDED | Evidence: early transcription\n",
		"c2.md": "C2 | Title: Corrected reading | Tier: 2 | Status: ACTIVE | Refs: supersedes:C1 | Evidence: ultraviolet photography\n",
	})
	rep := New(cfg).Validate(c)
	if rep.HasFatal() {
		t.Fatalf("superseded claim with replacement should pass: %+v", rep.Findings)
	}
}

func TestValidate_SupersedingTerminalRecord(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Disproven dating | Tier: 2 | Status: FALSIFIED | Evidence: radiocarbon result\n",
		"c2.md": "C2 | Title: Dating reopened | Tier: 2 | Status: ACTIVE | Refs: supersedes:C1 | Evidence: disputed calibration\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	f := got[0]
	if f.RecordID != "C2" || f.Related != "C1" {
		t.Errorf("finding should pair superseder and terminal target: %+v", f)
	}
	if !strings.Contains(f.Message, "FALSIFIED") {
		t.Errorf("message should name the terminal status: %q", f.Message)
	}
}

func TestValidate_SupersedingProposedRecord(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Never activated reading | Tier: 2 | Status: PROPOSED | Evidence: draft note\n",
		"c2.md": "C2 | Title: Replacement reading | Tier: 2 | Status: ACTIVE | Refs: supersedes:C1 | Evidence: collation check\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeGovernance)
	if len(got) != 1 {
		t.Fatalf("expected 1 governance finding, got %d: %+v", len(got), rep.Findings)
	}
	// PROPOSED cannot flip straight to SUPERSEDED: no transition skips ACTIVE.
	if !strings.Contains(got[0].Message, "PROPOSED") {
		t.Errorf("message should name the illegal source status: %q", got[0].Message)
	}
}

func TestValidate_VocabularyFolded(t *testing.T) {
	files := map[string]string{
		"f-col-1.md": "F-COL-1 | Title: Folding model | Tier: F2 | Status: ACTIVE | Result: SUCCESS\n" +
			"\n" +
			"This model governs the quire structure.\n",
	}

	c, cfg := loadCorpus(t, files)
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeVocabulary)
	if len(got) != 1 {
		t.Fatalf("expected 1 vocabulary finding, got %d: %+v", len(got), rep.Findings)
	}
	if got[0].Severity != model.SeverityWarning {
		t.Errorf("default mode keeps vocabulary findings at WARNING, got %s", got[0].Severity)
	}

	c2, cfg2 := loadCorpus(t, files)
	cfg2.Strict = true
	rep2 := New(cfg2).Validate(c2)
	got2 := findingsWith(rep2, model.CodeVocabulary)
	if len(got2) != 1 || got2[0].Severity != model.SeverityFatal {
		t.Fatalf("strict mode should promote vocabulary findings to FATAL: %+v", rep2.Findings)
	}
}

func TestValidate_ConstructionFindingsFolded(t *testing.T) {
	c, cfg := loadCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Reading with lost source | Tier: 2 | Status: ACTIVE | Refs: refines:C99 | Evidence: marginal note\n",
	})
	rep := New(cfg).Validate(c)
	got := findingsWith(rep, model.CodeDanglingRef)
	if len(got) != 1 {
		t.Fatalf("expected corpus dangling-reference finding in report, got %+v", rep.Findings)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.Status
		want     bool
	}{
		{model.StatusProposed, model.StatusActive, true},
		{model.StatusActive, model.StatusClosed, true},
		{model.StatusActive, model.StatusSuperseded, true},
		{model.StatusActive, model.StatusFalsified, true},
		{model.StatusProposed, model.StatusClosed, false},
		{model.StatusProposed, model.StatusSuperseded, false},
		{model.StatusProposed, model.StatusFalsified, false},
		{model.StatusFalsified, model.StatusActive, false},
		{model.StatusClosed, model.StatusActive, false},
		{model.StatusSuperseded, model.StatusActive, false},
		{model.StatusActive, model.StatusProposed, false},
		{model.StatusActive, model.StatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
