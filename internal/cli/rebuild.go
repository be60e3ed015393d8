package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/quireproject/quire/internal/tables"
)

var rebuildForce bool

// rebuildCmd represents the rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Validate the corpus and regenerate summary tables",
	Long: `Rebuild runs the same validation as check, then projects the corpus into
flat TSV tables (one per record kind) under the configured tables directory.

Tables are regenerated wholesale and are byte-identical across runs on an
unchanged corpus. A FATAL finding aborts regeneration: broken invariants
never reach the derived views. A table file that no longer matches its own
generation fingerprint was edited by hand and is refused unless --force.

Example:
  quire rebuild
  quire rebuild --force`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().BoolVar(&rebuildForce, "force", false, "overwrite hand-edited table files")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	c, rep, err := validate(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	printReport(c, rep)

	if rep.HasFatal() {
		return exitf(ExitFatal, "fatal findings present; tables not regenerated")
	}

	var written []string
	err = timed("table generation", func() error {
		var err error
		written, err = tables.NewGenerator(cfg.Tables.Dir, rebuildForce).Generate(c)
		return err
	})
	if err != nil {
		var he *tables.ErrHandEdited
		if errors.As(err, &he) {
			return exitf(ExitFatal, "%v", he)
		}
		return err
	}

	for _, path := range written {
		vlogf("wrote %s\n", path)
	}
	return nil
}
