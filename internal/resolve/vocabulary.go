package resolve

import (
	"fmt"
	"strings"

	"github.com/quireproject/quire/internal/model"
)

// VocabularyScanner flags constraint vocabulary in fit prose. A fit
// demonstrates adequacy; wording it as a structural requirement is the
// epistemic drift this corpus is most damaged by, so the forbidden list is
// enforced mechanically instead of by author discipline.
type VocabularyScanner struct {
	phrases []string
	strict  bool
}

// NewVocabularyScanner creates a scanner over the configured forbidden list.
// In strict mode violations are FATAL instead of WARNING.
func NewVocabularyScanner(phrases []string, strict bool) *VocabularyScanner {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &VocabularyScanner{phrases: lowered, strict: strict}
}

// Scan reports every forbidden phrase in a fit's body with line provenance.
// Claims are exempt: constraint vocabulary is their job.
func (s *VocabularyScanner) Scan(rec *model.Record) []model.Finding {
	if rec.Kind != model.KindFit || rec.Body == "" {
		return nil
	}

	severity := model.SeverityWarning
	if s.strict {
		severity = model.SeverityFatal
	}

	var findings []model.Finding
	for i, line := range strings.Split(rec.Body, "\n") {
		lower := strings.ToLower(line)
		for _, phrase := range s.phrases {
			if strings.Contains(lower, phrase) {
				findings = append(findings, model.Finding{
					Code:     model.CodeVocabulary,
					Severity: severity,
					RecordID: rec.ID,
					File:     rec.Origin.File,
					Line:     rec.Origin.BodyLine + i,
					Message:  fmt.Sprintf("%s uses constraint vocabulary %q; fits state adequacy, not necessity", rec.ID, phrase),
				})
			}
		}
	}
	return findings
}
