package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/quireproject/quire/internal/cache"
	"github.com/quireproject/quire/internal/metrics"
	"github.com/quireproject/quire/internal/model"
	"github.com/quireproject/quire/internal/parse"
	"github.com/quireproject/quire/internal/registry"
	"github.com/quireproject/quire/internal/resolve"
	"github.com/quireproject/quire/internal/worker"
)

// Loader builds a corpus snapshot from the configured roots.
// Construction is two-phase: every document is parsed and registered before
// any reference is resolved, so resolution runs against a complete registry.
type Loader struct {
	cfg   *model.Config
	cache cache.Cache
}

// NewLoader creates a loader. The parse cache is layered over disk when a
// cache directory is configured, memory-only otherwise.
func NewLoader(cfg *model.Config) *Loader {
	var c cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.TTL, 10*cfg.Cache.TTL)
		}
	}
	return &Loader{cfg: cfg, cache: c}
}

// Load parses, registers, and resolves the whole corpus. Per-document
// problems become findings on the returned corpus; only environmental
// failures (unwalkable root) return an error.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	files, err := l.discover()
	if err != nil {
		return nil, err
	}

	docs := l.parseAll(ctx, files)

	c := &Corpus{
		records:   make(map[string]*model.Record),
		phases:    make(map[string]*model.Phase),
		edgesFrom: make(map[string][]model.Edge),
		edgesTo:   make(map[string][]model.Edge),
		metrics:   make(map[string][]model.Metric),
		phaseOf:   make(map[string]string),
	}

	// Pass 1: register every identifier. First writer wins; duplicates
	// become fatal findings rather than silent overwrites.
	reg := registry.New()
	for _, d := range docs {
		c.findings = append(c.findings, d.doc.Findings...)

		switch {
		case d.doc.Record != nil:
			rec := d.doc.Record
			if err := reg.Register(rec.ID, rec.Kind, rec.Origin.File, rec.Origin.Line); err != nil {
				return nil, fmt.Errorf("register %s: %w", rec.ID, err)
			}
			if _, taken := c.records[rec.ID]; !taken {
				c.records[rec.ID] = rec
			}
		case d.doc.Phase != nil:
			ph := d.doc.Phase
			if err := reg.Register(ph.ID, model.KindPhase, ph.Origin.File, ph.Origin.Line); err != nil {
				return nil, fmt.Errorf("register %s: %w", ph.ID, err)
			}
			if _, taken := c.phases[ph.ID]; !taken {
				c.phases[ph.ID] = ph
			}
		}
	}
	c.findings = append(c.findings, reg.Duplicates()...)

	// Pass 2: resolve against the completed registry.
	resolver := resolve.New(reg)
	for _, d := range docs {
		if d.doc.Record == nil {
			continue
		}
		rec := c.records[d.doc.Record.ID]
		if rec != d.doc.Record {
			continue // Duplicate loser; first writer holds the edges.
		}
		edges, findings := resolver.Record(rec)
		c.findings = append(c.findings, findings...)
		for _, e := range edges {
			c.edgesFrom[e.From] = append(c.edgesFrom[e.From], e)
			c.edgesTo[e.To] = append(c.edgesTo[e.To], e)
		}
	}

	// Phase produced sets and metric attachment. Both fail softly: the
	// corpus grows organically and phases may precede their records.
	for _, ph := range c.Phases() {
		for _, id := range ph.Produced {
			if !reg.Exists(id) {
				c.findings = append(c.findings, model.Finding{
					Code:     model.CodeDanglingRef,
					Severity: model.SeverityWarning,
					RecordID: ph.ID,
					Related:  id,
					File:     ph.Origin.File,
					Line:     ph.Origin.Line,
					Message:  fmt.Sprintf("phase %s declares producing %s: target not found", ph.ID, id),
				})
				continue
			}
			if _, taken := c.phaseOf[id]; !taken {
				c.phaseOf[id] = ph.ID
			}
		}

		ms, findings := metrics.Extract(ph, reg.Exists)
		c.findings = append(c.findings, findings...)
		for _, m := range ms {
			c.metrics[m.Attach] = append(c.metrics[m.Attach], m)
		}
	}

	return c, nil
}

// discover walks the corpus roots and returns matching files in sorted order
func (l *Loader) discover() ([]string, error) {
	var files []string
	for _, root := range l.cfg.Corpus.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if strings.HasPrefix(name, ".") && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			slashed := filepath.ToSlash(rel)
			if l.matches(l.cfg.Corpus.Include, slashed) && !l.matches(l.cfg.Corpus.Exclude, slashed) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk corpus root %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) matches(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// parseAll parses documents on the worker pool, then restores file order so
// construction stays deterministic regardless of scheduling.
func (l *Loader) parseAll(ctx context.Context, files []string) []docResult {
	if ctx.Err() != nil {
		return nil
	}

	pool := worker.NewPool(l.cfg.Concurrency.ParseWorkers, len(files))
	pool.Start()
	for _, path := range files {
		pool.Submit(parseJob{path: path, cache: l.cache, ttl: l.cfg.Cache.TTL})
	}

	var docs []docResult
	for _, res := range pool.Wait() {
		docs = append(docs, res.(docResult))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].path < docs[j].path })
	return docs
}

type parseJob struct {
	path  string
	cache cache.Cache
	ttl   time.Duration
}

type docResult struct {
	path string
	doc  *parse.Document
}

// GetError satisfies worker.Result. Unreadable files surface as findings on
// the document, so results themselves never fail.
func (r docResult) GetError() error { return nil }

// Execute reads and parses one document, consulting the content-addressed
// parse cache first.
func (j parseJob) Execute(ctx context.Context) worker.Result {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return docResult{path: j.path, doc: &parse.Document{
			Findings: []model.Finding{{
				Code:     model.CodeParseError,
				Severity: model.SeverityWarning,
				File:     j.path,
				Message:  fmt.Sprintf("read document: %v; document excluded from corpus", err),
			}},
		}}
	}

	// Keyed by path as well as content: origins baked into the cached
	// parse must match the file being served.
	key := cache.DocumentKey(append([]byte(j.path+"\x00"), data...))
	if j.cache != nil {
		if raw, found := j.cache.Get(key); found {
			var doc parse.Document
			if err := json.Unmarshal(raw, &doc); err == nil {
				return docResult{path: j.path, doc: &doc}
			}
		}
	}

	doc := parse.ParseDocument(j.path, string(data))
	if j.cache != nil {
		if raw, err := json.Marshal(doc); err == nil {
			_ = j.cache.Set(key, raw, j.ttl)
		}
	}
	return docResult{path: j.path, doc: doc}
}
