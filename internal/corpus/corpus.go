// Package corpus assembles the validated in-memory graph of all records.
// A corpus is built once per run and never mutated: any update is parse
// again, rebuild, re-validate, which leaves no room for a stale-cache bug.
package corpus

import (
	"sort"

	"github.com/quireproject/quire/internal/model"
)

// Corpus is the immutable record graph. Readers only ever see a fully
// constructed snapshot; the one writer is the rebuild process that made it.
type Corpus struct {
	records   map[string]*model.Record
	phases    map[string]*model.Phase
	edgesFrom map[string][]model.Edge
	edgesTo   map[string][]model.Edge
	metrics   map[string][]model.Metric
	phaseOf   map[string]string
	findings  []model.Finding
}

// Get returns the record with the given id
func (c *Corpus) Get(id string) (*model.Record, bool) {
	rec, ok := c.records[id]
	return rec, ok
}

// GetPhase returns the phase with the given id
func (c *Corpus) GetPhase(id string) (*model.Phase, bool) {
	ph, ok := c.phases[id]
	return ph, ok
}

// All returns records of the given kind ("" for all) in stable
// numeric-aware id order: C2 before C10.
func (c *Corpus) All(kind model.Kind) []*model.Record {
	var out []*model.Record
	for _, rec := range c.records {
		if kind == "" || rec.Kind == kind {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return NaturalLess(out[i].ID, out[j].ID)
	})
	return out
}

// Phases returns all phases in id order
func (c *Corpus) Phases() []*model.Phase {
	out := make([]*model.Phase, 0, len(c.phases))
	for _, ph := range c.phases {
		out = append(out, ph)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// EdgesFrom returns resolved edges originating at id
func (c *Corpus) EdgesFrom(id string) []model.Edge {
	return c.edgesFrom[id]
}

// EdgesTo returns resolved edges pointing at id
func (c *Corpus) EdgesTo(id string) []model.Edge {
	return c.edgesTo[id]
}

// Metrics returns the metrics attached to id, in attachment order
func (c *Corpus) Metrics(id string) []model.Metric {
	return c.metrics[id]
}

// PhaseOf returns the phase that declared producing id
func (c *Corpus) PhaseOf(id string) (string, bool) {
	ph, ok := c.phaseOf[id]
	return ph, ok
}

// Findings returns the construction findings (parse errors, duplicates,
// unresolved references). Governance findings are the rule engine's.
func (c *Corpus) Findings() []model.Finding {
	out := make([]model.Finding, len(c.findings))
	copy(out, c.findings)
	return out
}

// Len returns the number of records
func (c *Corpus) Len() int {
	return len(c.records)
}

// NaturalLess compares record ids numeric-aware: digit runs compare as
// numbers, everything else byte-wise. C2 < C10, F-GLY-2 < F-GLY-10.
func NaturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := takeNumber(a)
			nb, rb := takeNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func takeNumber(s string) (int, string) {
	n := 0
	i := 0
	for i < len(s) && isDigit(s[i]) {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return n, s[i:]
}
