package govern

import (
	"fmt"
	"strings"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/resolve"
)

// Engine runs the governance rule battery over a loaded corpus. Rules are
// pure functions of the corpus snapshot: validating the same corpus twice
// yields the same normalized report.
type Engine struct {
	vocab *resolve.VocabularyScanner
}

func New(cfg *model.Config) *Engine {
	phrases := cfg.Vocabulary.Forbidden
	if len(phrases) == 0 {
		phrases = model.DefaultForbiddenVocabulary()
	}
	return &Engine{
		vocab: resolve.NewVocabularyScanner(phrases, cfg.Strict),
	}
}

// Validate folds corpus construction findings together with the rule
// battery and returns a normalized report. FATAL findings mean the corpus
// is not safe to regenerate tables from.
func (e *Engine) Validate(c *corpus.Corpus) *model.Report {
	rep := &model.Report{}
	for _, f := range c.Findings() {
		rep.Add(f)
	}
	e.checkAuthorization(c, rep)
	e.checkTierMonotonicity(c, rep)
	e.checkImplicitPromotion(c, rep)
	e.checkSupersession(c, rep)
	e.checkSupersessionTargets(c, rep)
	e.checkVocabulary(c, rep)
	rep.Normalize()
	return rep
}

// Tier 0 and tier 1 claims constrain everything below them; neither may
// exist without an explicit human authorization flag.
func (e *Engine) checkAuthorization(c *corpus.Corpus, rep *model.Report) {
	for _, rec := range c.All(model.KindClaim) {
		if rec.ConstraintTier <= 1 && !rec.HumanAuthorized {
			rep.Add(model.Finding{
				Code:     model.CodeGovernance,
				Severity: model.SeverityFatal,
				RecordID: rec.ID,
				File:     rec.Origin.File,
				Line:     rec.Origin.Line,
				Message:  fmt.Sprintf("claim %s holds tier %d without human authorization", rec.ID, rec.ConstraintTier),
			})
		}
	}
}

// A claim that refines or supersedes another claim may keep or tighten its
// predecessor's tier, never loosen it. The numeric tier of the successor
// must not exceed the predecessor's.
func (e *Engine) checkTierMonotonicity(c *corpus.Corpus, rep *model.Report) {
	for _, rec := range c.All(model.KindClaim) {
		for _, edge := range c.EdgesFrom(rec.ID) {
			if edge.Type != model.RefRefines && edge.Type != model.RefSupersedes {
				continue
			}
			prev, ok := c.Get(edge.To)
			if !ok || prev.Kind != model.KindClaim {
				continue
			}
			if rec.ConstraintTier > prev.ConstraintTier {
				rep.Add(model.Finding{
					Code:     model.CodeGovernance,
					Severity: model.SeverityFatal,
					RecordID: rec.ID,
					Related:  prev.ID,
					File:     rec.Origin.File,
					Line:     rec.Origin.Line,
					Message: fmt.Sprintf("claim %s (%s %s) loosens tier %d to %d; tiers only tighten along %s edges",
						rec.ID, edge.Type, prev.ID, prev.ConstraintTier, rec.ConstraintTier, edge.Type),
				})
			}
		}
	}
}

// A fit reporting adequacy must never quietly mint a claim. A freshly
// introduced claim carrying no authorization flag and no independent
// justification, landing in the same phase batch as a fit, is treated as
// the fit promoting itself.
func (e *Engine) checkImplicitPromotion(c *corpus.Corpus, rep *model.Report) {
	for _, ph := range c.Phases() {
		var fits []*model.Record
		var claims []*model.Record
		for _, id := range ph.Produced {
			rec, ok := c.Get(id)
			if !ok {
				continue
			}
			switch rec.Kind {
			case model.KindFit:
				fits = append(fits, rec)
			case model.KindClaim:
				claims = append(claims, rec)
			}
		}
		if len(fits) == 0 {
			continue
		}
		for _, cl := range claims {
			if cl.HumanAuthorized || !unjustified(cl) {
				continue
			}
			f := fits[0]
			if m := matchingFit(fits, cl); m != nil {
				f = m
			}
			rep.Add(model.Finding{
				Code:     model.CodeGovernance,
				Severity: model.SeverityFatal,
				RecordID: cl.ID,
				Related:  f.ID,
				File:     cl.Origin.File,
				Line:     cl.Origin.Line,
				Message: fmt.Sprintf("claim %s enters batch %s alongside fit %s with no authorization and no independent evidence; fits cannot mint claims",
					cl.ID, ph.ID, f.ID),
			})
		}
	}

	// Same rule outside phase batches: a fit whose title matches an
	// unauthorized, unjustified claim it supports is restating itself as
	// that claim.
	for _, fit := range c.All(model.KindFit) {
		for _, id := range fit.Supports {
			cl, ok := c.Get(id)
			if !ok || cl.Kind != model.KindClaim {
				continue
			}
			if cl.HumanAuthorized || !unjustified(cl) {
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(fit.Title), strings.TrimSpace(cl.Title)) {
				continue
			}
			rep.Add(model.Finding{
				Code:     model.CodeGovernance,
				Severity: model.SeverityFatal,
				RecordID: cl.ID,
				Related:  fit.ID,
				File:     cl.Origin.File,
				Line:     cl.Origin.Line,
				Message: fmt.Sprintf("claim %s restates fit %s under the same title with no authorization; fits cannot mint claims",
					cl.ID, fit.ID),
			})
		}
	}
}

// unjustified reports whether a claim carries nothing of its own: no
// evidence summary and no outgoing refs grounding it in prior records.
func unjustified(cl *model.Record) bool {
	return cl.EvidenceSummary == "" && len(cl.Refs) == 0
}

func matchingFit(fits []*model.Record, cl *model.Record) *model.Record {
	for _, f := range fits {
		if strings.EqualFold(strings.TrimSpace(f.Title), strings.TrimSpace(cl.Title)) {
			return f
		}
		for _, id := range f.Supports {
			if id == cl.ID {
				return f
			}
		}
	}
	return nil
}

// Every SUPERSEDED record must be reachable by a supersedes edge, either
// declared on a successor pointing at it or carried in its own header.
func (e *Engine) checkSupersession(c *corpus.Corpus, rep *model.Report) {
	check := func(id string, origin model.Origin, refs []model.Ref) {
		for _, edge := range c.EdgesTo(id) {
			if edge.Type == model.RefSupersedes {
				return
			}
		}
		for _, ref := range refs {
			if ref.Type == model.RefSupersedes {
				return
			}
		}
		rep.Add(model.Finding{
			Code:     model.CodeGovernance,
			Severity: model.SeverityFatal,
			RecordID: id,
			File:     origin.File,
			Line:     origin.Line,
			Message:  fmt.Sprintf("%s is SUPERSEDED but no supersedes edge names a replacement", id),
		})
	}
	for _, kind := range []model.Kind{model.KindClaim, model.KindFit} {
		for _, rec := range c.All(kind) {
			if rec.Status == model.StatusSuperseded {
				check(rec.ID, rec.Origin, rec.Refs)
			}
		}
	}
}

// A supersedes edge flips its target to SUPERSEDED. A target already
// flipped is fine; anything else must be a legal transition per
// CanTransition, which keeps FALSIFIED and CLOSED immutable and stops a
// PROPOSED record from skipping ACTIVE.
func (e *Engine) checkSupersessionTargets(c *corpus.Corpus, rep *model.Report) {
	for _, kind := range []model.Kind{model.KindClaim, model.KindFit} {
		for _, rec := range c.All(kind) {
			for _, edge := range c.EdgesFrom(rec.ID) {
				if edge.Type != model.RefSupersedes {
					continue
				}
				target, ok := c.Get(edge.To)
				if !ok {
					continue
				}
				if target.Status == model.StatusSuperseded || CanTransition(target.Status, model.StatusSuperseded) {
					continue
				}
				rep.Add(model.Finding{
					Code:     model.CodeGovernance,
					Severity: model.SeverityFatal,
					RecordID: rec.ID,
					Related:  target.ID,
					File:     rec.Origin.File,
					Line:     rec.Origin.Line,
					Message: fmt.Sprintf("%s supersedes %s, but %s is %s and cannot transition to SUPERSEDED",
						rec.ID, target.ID, target.ID, target.Status),
				})
			}
		}
	}
}

func (e *Engine) checkVocabulary(c *corpus.Corpus, rep *model.Report) {
	for _, rec := range c.All(model.KindFit) {
		for _, f := range e.vocab.Scan(rec) {
			rep.Add(f)
		}
	}
}
