package llm

import (
	"fmt"
	"strings"

	"github.com/quireproject/quire/internal/model"
)

// BuildPrompt renders the report as the user prompt. Findings go in
// verbatim so the model has nothing to cite beyond what the run produced.
func BuildPrompt(rep *model.Report, recordCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Validation run over %d records: %d FATAL, %d WARNING findings.\n\n",
		recordCount, rep.Count(model.SeverityFatal), rep.Count(model.SeverityWarning))

	if len(rep.Findings) == 0 {
		b.WriteString("No findings. State that the corpus is clean in one sentence.\n")
		return b.String()
	}

	b.WriteString("Findings:\n")
	for _, f := range rep.Findings {
		fmt.Fprintf(&b, "- %s\n", f.String())
	}
	b.WriteString("\nWrite a short digest for the corpus maintainer: lead with whatever blocks table regeneration, group related findings, and end with the single most useful next action. Plain prose, no markdown headers.\n")
	return b.String()
}
