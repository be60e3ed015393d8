package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/query"
)

var lookupJSON bool

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <id>",
	Short: "Print one record with its one-hop neighborhood",
	Long: `Lookup prints a bounded view of one record: tier, status, evidence,
attached metrics, and immediate neighbors. One hop only, so the answer
stays small enough for callers on a tight context budget.

Exits 3 if the identifier is not in the corpus.

Example:
  quire lookup C12
  quire lookup F-GLY-003 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "emit the view as JSON")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	c, err := corpus.NewLoader(cfg).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	view, err := query.NewService(c).Lookup(args[0])
	if errors.Is(err, query.ErrNotFound) {
		return exitf(ExitNotFound, "not found: %s", args[0])
	}
	if err != nil {
		return err
	}

	if lookupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	printView(view)
	return nil
}

func printView(v *query.RecordView) {
	fmt.Printf("%s  %s\n", v.ID, v.Title)
	fmt.Printf("  kind: %s  tier: %s  status: %s\n", v.Kind, v.Tier, v.Status)
	if v.Scope != "" {
		fmt.Printf("  scope: %s\n", v.Scope)
	}
	if v.Result != "" {
		fmt.Printf("  result: %s\n", v.Result)
	}
	if v.Evidence != "" {
		fmt.Printf("  evidence: %s\n", v.Evidence)
	}
	if v.Phase != "" {
		fmt.Printf("  phase: %s\n", v.Phase)
	}
	fmt.Printf("  origin: %s:%d\n", v.File, v.Line)

	for _, n := range v.Neighbors {
		arrow := "->"
		if n.Direction == "in" {
			arrow = "<-"
		}
		if n.Title != "" {
			fmt.Printf("  %s %s %s  %s\n", arrow, n.Type, n.ID, n.Title)
		} else {
			fmt.Printf("  %s %s %s\n", arrow, n.Type, n.ID)
		}
	}
	for _, m := range v.Metrics {
		fmt.Printf("  metric %s=%g", m.Name, m.Value)
		if m.SampleSize > 0 {
			fmt.Printf(" n=%d", m.SampleSize)
		}
		if m.PValue != nil {
			fmt.Printf(" p=%g", *m.PValue)
		}
		if m.Phase != "" {
			fmt.Printf(" (%s)", m.Phase)
		}
		fmt.Println()
	}
}
