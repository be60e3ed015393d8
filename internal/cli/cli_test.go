package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/model"
)

func TestExitError(t *testing.T) {
	err := exitf(ExitNotFound, "not found: %s", "C42")
	if err.Code != ExitNotFound || err.Error() != "not found: C42" {
		t.Errorf("unexpected exit error: %+v", err)
	}
}

func writeCorpus(t *testing.T, files map[string]string) *model.Config {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg := model.DefaultConfig()
	cfg.Corpus.Roots = []string{dir}
	cfg.Cache.Enabled = false
	return cfg
}

func TestValidate_CleanCorpusExitsZero(t *testing.T) {
	cfg := writeCorpus(t, map[string]string{
		"c1.md":    "C1 | Title: Quire boundaries | Tier: 2 | Status: ACTIVE\n",
		"f-x-1.md": "F-X-1 | Title: Folding model | Tier: F2 | Status: ACTIVE | Result: SUCCESS | Supports: C1\n",
	})
	c, rep, err := validate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Len() != 2 || rep.HasFatal() || len(rep.Findings) != 0 {
		t.Errorf("minimal corpus should be clean: len=%d findings=%+v", c.Len(), rep.Findings)
	}
}

func TestValidateWith_LoaderReusedAcrossCycles(t *testing.T) {
	cfg := writeCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Quire boundaries | Tier: 2 | Status: ACTIVE\n",
	})
	cfg.Cache.Enabled = true // memory tier only; survives on the shared loader

	loader := corpus.NewLoader(cfg)
	first, rep1, err := validateWith(context.Background(), cfg, loader)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	second, rep2, err := validateWith(context.Background(), cfg, loader)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	// The second cycle serves C1 from the parse cache; the result must be
	// indistinguishable from a fresh parse.
	a, _ := first.Get("C1")
	b, _ := second.Get("C1")
	if a.Title != b.Title || a.Origin != b.Origin {
		t.Errorf("cached cycle differs: %+v vs %+v", a, b)
	}
	if rep1.HasFatal() || rep2.HasFatal() || len(rep2.Findings) != len(rep1.Findings) {
		t.Errorf("reports diverged: %+v vs %+v", rep1.Findings, rep2.Findings)
	}
}

// setViperCorpus points the command-level config at a temp corpus and
// restores the global viper state afterwards.
func setViperCorpus(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	viper.Set("corpus.roots", []string{dir})
	viper.Set("cache.enabled", false)
	t.Cleanup(func() {
		viper.Set("corpus.roots", []string{})
		viper.Set("cache.enabled", true)
	})
}

func execQuire(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return Execute()
}

func TestLookupCommand_ExitCodes(t *testing.T) {
	setViperCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Quire boundaries | Tier: 2 | Status: ACTIVE\n",
	})

	if err := execQuire(t, "lookup", "C1"); err != nil {
		t.Fatalf("lookup of existing record should succeed: %v", err)
	}

	err := execQuire(t, "lookup", "C404")
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if ee.Code != ExitNotFound {
		t.Errorf("missing id exits %d, want %d", ee.Code, ExitNotFound)
	}
}

func TestCheckCommand_ExitCodes(t *testing.T) {
	setViperCorpus(t, map[string]string{
		"c1.md": "C1 | Title: Quire boundaries | Tier: 2 | Status: ACTIVE\n",
	})
	if err := execQuire(t, "check"); err != nil {
		t.Fatalf("clean corpus should exit zero: %v", err)
	}

	setViperCorpus(t, map[string]string{
		"a.md": "C5 | Title: First | Tier: 2 | Status: ACTIVE\n",
		"b.md": "C5 | Title: Second | Tier: 2 | Status: ACTIVE\n",
	})
	err := execQuire(t, "check")
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if ee.Code != ExitFatal {
		t.Errorf("fatal findings exit %d, want %d", ee.Code, ExitFatal)
	}
}

func TestLoadConfig_ResolvesCacheDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	viper.Set("cache.enabled", true)
	viper.Set("cache.dir", "")
	t.Cleanup(func() {
		viper.Set("cache.enabled", true)
		viper.Set("cache.dir", "")
	})

	if got, want := loadConfig().Cache.Dir, filepath.Join(home, ".quire", "cache"); got != want {
		t.Errorf("default cache dir = %q, want %q", got, want)
	}

	// An explicit dir wins over the resolved default.
	viper.Set("cache.dir", "/srv/quire-cache")
	if got := loadConfig().Cache.Dir; got != "/srv/quire-cache" {
		t.Errorf("explicit cache dir = %q", got)
	}

	// Disabled cache leaves the dir unresolved.
	viper.Set("cache.enabled", false)
	viper.Set("cache.dir", "")
	if got := loadConfig().Cache.Dir; got != "" {
		t.Errorf("disabled cache should not resolve a dir, got %q", got)
	}
}

func TestValidate_DuplicateIDIsFatal(t *testing.T) {
	cfg := writeCorpus(t, map[string]string{
		"a.md": "C5 | Title: First | Tier: 2 | Status: ACTIVE\n",
		"b.md": "C5 | Title: Second | Tier: 2 | Status: ACTIVE\n",
	})
	_, rep, err := validate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !rep.HasFatal() {
		t.Fatalf("duplicate id should be fatal: %+v", rep.Findings)
	}
	if rep.Findings[0].Code != model.CodeDuplicateID {
		t.Errorf("normalized report should lead with the fatal finding: %+v", rep.Findings[0])
	}
}
