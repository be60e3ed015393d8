package parse

import (
	"strings"

	"github.com/quireproject/quire/internal/model"
)

// HeaderLine re-serializes a record to its canonical header line. Parsing
// the result yields a record equal field-for-field to the input (body and
// origin aside); this round-trip anchors the parser's regression tests.
func HeaderLine(r *model.Record) string {
	segs := []string{r.ID}
	add := func(key, value string) {
		if value != "" {
			segs = append(segs, key+": "+value)
		}
	}

	add("Title", r.Title)
	add("Tier", r.TierLabel())
	add("Status", string(r.Status))
	if r.Kind == model.KindFit {
		add("Result", string(r.Result))
		add("Supports", strings.Join(r.Supports, ", "))
	}
	add("Scope", r.Scope)
	add("Refs", formatRefs(r.Refs))
	if r.Kind == model.KindClaim {
		add("Evidence", r.EvidenceSummary)
		if r.HumanAuthorized {
			add("Authorized", "human")
		}
	}

	return strings.Join(segs, " | ")
}

// formatRefs serializes header refs. Body-derived hints are not part of the
// header and never round-trip.
func formatRefs(refs []model.Ref) string {
	var items []string
	for _, ref := range refs {
		if ref.Hint {
			continue
		}
		items = append(items, string(ref.Type)+":"+ref.Target)
	}
	return strings.Join(items, ", ")
}
