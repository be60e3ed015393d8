// Package tables projects a validated corpus into flat TSV summary files,
// one per record kind. Output is deterministic: the same corpus renders the
// same bytes, which makes the generated tables the regression anchor for
// the whole engine.
package tables

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
)

// fingerprintPrefix heads every generated file. The hash covers everything
// after the fingerprint line, so a hand edit anywhere in the table breaks
// verification.
const fingerprintPrefix = "# quire:table v1 sha256="

// ErrHandEdited is returned when an existing table file does not match its
// own fingerprint. Generated tables are never hand-edited; a mismatch means
// someone changed one by hand and regeneration would destroy their work.
type ErrHandEdited struct {
	Path string
}

func (e *ErrHandEdited) Error() string {
	return fmt.Sprintf("%s does not match its generation fingerprint (hand-edited?); re-run with --force to overwrite", e.Path)
}

type Generator struct {
	dir   string
	force bool
}

func NewGenerator(dir string, force bool) *Generator {
	return &Generator{dir: dir, force: force}
}

// Generate writes claims.tsv, fits.tsv and phases.tsv under the configured
// directory and returns the paths written. Running it twice on an unchanged
// corpus produces byte-identical files.
func (g *Generator) Generate(c *corpus.Corpus) ([]string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating table directory: %w", err)
	}

	files := []struct {
		name string
		body string
	}{
		{"claims.tsv", renderClaims(c)},
		{"fits.tsv", renderFits(c)},
		{"phases.tsv", renderPhases(c)},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(g.dir, f.name)
		if err := g.write(path, f.body); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func (g *Generator) write(path, body string) error {
	content := fingerprintPrefix + fingerprint(body) + "\n" + body

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if string(existing) == content {
			return nil
		}
		if !g.force && !verifyFingerprint(string(existing)) {
			return &ErrHandEdited{Path: path}
		}
	case os.IsNotExist(err):
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// verifyFingerprint reports whether content carries a fingerprint line that
// matches the rest of the file.
func verifyFingerprint(content string) bool {
	line, rest, ok := strings.Cut(content, "\n")
	if !ok || !strings.HasPrefix(line, fingerprintPrefix) {
		return false
	}
	return strings.TrimPrefix(line, fingerprintPrefix) == fingerprint(rest)
}

func renderClaims(c *corpus.Corpus) string {
	var b strings.Builder
	writeRow(&b, "id", "title", "tier", "status", "scope", "file")
	for _, rec := range c.All(model.KindClaim) {
		writeRow(&b, rec.ID, rec.Title, rec.TierLabel(), string(rec.Status), rec.Scope, rec.Origin.File)
	}
	return b.String()
}

func renderFits(c *corpus.Corpus) string {
	var b strings.Builder
	writeRow(&b, "id", "title", "tier", "status", "result", "supports", "file")
	for _, rec := range c.All(model.KindFit) {
		writeRow(&b, rec.ID, rec.Title, rec.TierLabel(), string(rec.Status),
			string(rec.Result), strings.Join(rec.Supports, ","), rec.Origin.File)
	}
	return b.String()
}

func renderPhases(c *corpus.Corpus) string {
	var b strings.Builder
	writeRow(&b, "id", "status", "produced", "file")
	for _, ph := range c.Phases() {
		writeRow(&b, ph.ID, string(ph.Status), strings.Join(ph.Produced, ","), ph.Origin.File)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells ...string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(sanitizeCell(cell))
	}
	b.WriteByte('\n')
}

// sanitizeCell keeps one row per record: tabs and newlines in field values
// collapse to single spaces.
func sanitizeCell(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == '\t' || r == '\n' || r == '\r'
	}), " ")
}
