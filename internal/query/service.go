// Package query serves bounded read-only views of a validated corpus.
// Views are deliberately small: one record plus its one-hop neighborhood,
// so a caller with a tight context budget gets a complete answer without
// walking the graph.
package query

import (
	"errors"
	"sort"
	"strings"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
)

// ErrNotFound is returned by Lookup for identifiers absent from the corpus.
var ErrNotFound = errors.New("record not found")

// Neighbor is one edge endpoint adjacent to the looked-up record.
// Direction is "out" when the record declares the edge, "in" when another
// record points at it.
type Neighbor struct {
	ID        string        `json:"id"`
	Title     string        `json:"title,omitempty"`
	Type      model.RefType `json:"type"`
	Direction string        `json:"direction"`
}

type MetricView struct {
	Name       string   `json:"name"`
	Value      float64  `json:"value"`
	SampleSize int      `json:"sample_size,omitempty"`
	PValue     *float64 `json:"p_value,omitempty"`
	Phase      string   `json:"phase,omitempty"`
}

// RecordView is the bounded projection of one record.
type RecordView struct {
	ID        string       `json:"id"`
	Kind      model.Kind   `json:"kind"`
	Title     string       `json:"title"`
	Tier      string       `json:"tier"`
	Status    model.Status `json:"status"`
	Scope     string       `json:"scope,omitempty"`
	Result    string       `json:"result,omitempty"`   // fits only
	Evidence  string       `json:"evidence,omitempty"` // claims only
	Phase     string       `json:"phase,omitempty"`    // producing phase, when declared
	File      string       `json:"file"`
	Line      int          `json:"line"`
	Neighbors []Neighbor   `json:"neighbors,omitempty"`
	Metrics   []MetricView `json:"metrics,omitempty"`
}

type Service struct {
	c *corpus.Corpus
}

func NewService(c *corpus.Corpus) *Service {
	return &Service{c: c}
}

// Lookup returns the view for one identifier or ErrNotFound.
func (s *Service) Lookup(id string) (*RecordView, error) {
	rec, ok := s.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s.view(rec), nil
}

// Search matches keyword as a case-insensitive substring over titles and
// scopes only. Body text is out of bounds: results stay precise and small.
func (s *Service) Search(keyword string) []*RecordView {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return nil
	}
	var out []*RecordView
	for _, kind := range []model.Kind{model.KindClaim, model.KindFit} {
		for _, rec := range s.c.All(kind) {
			if strings.Contains(strings.ToLower(rec.Title), needle) ||
				strings.Contains(strings.ToLower(rec.Scope), needle) {
				out = append(out, s.view(rec))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return corpus.NaturalLess(out[i].ID, out[j].ID)
	})
	return out
}

func (s *Service) view(rec *model.Record) *RecordView {
	v := &RecordView{
		ID:       rec.ID,
		Kind:     rec.Kind,
		Title:    rec.Title,
		Tier:     rec.TierLabel(),
		Status:   rec.Status,
		Scope:    rec.Scope,
		Result:   string(rec.Result),
		Evidence: rec.EvidenceSummary,
		File:     rec.Origin.File,
		Line:     rec.Origin.Line,
	}
	if ph, ok := s.c.PhaseOf(rec.ID); ok {
		v.Phase = ph
	}

	for _, e := range s.c.EdgesFrom(rec.ID) {
		v.Neighbors = append(v.Neighbors, Neighbor{
			ID:        e.To,
			Title:     s.titleOf(e.To),
			Type:      e.Type,
			Direction: "out",
		})
	}
	for _, e := range s.c.EdgesTo(rec.ID) {
		v.Neighbors = append(v.Neighbors, Neighbor{
			ID:        e.From,
			Title:     s.titleOf(e.From),
			Type:      e.Type,
			Direction: "in",
		})
	}

	for _, m := range s.c.Metrics(rec.ID) {
		v.Metrics = append(v.Metrics, MetricView{
			Name:       m.Name,
			Value:      m.Value,
			SampleSize: m.SampleSize,
			PValue:     m.PValue,
			Phase:      m.Phase,
		})
	}
	return v
}

func (s *Service) titleOf(id string) string {
	if rec, ok := s.c.Get(id); ok {
		return rec.Title
	}
	return ""
}
