package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quireproject/quire/internal/corpus"
	"github.com/quireproject/quire/internal/query"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Find records by keyword over titles and scopes",
	Long: `Search matches the keyword as a case-insensitive substring over record
titles and scopes. Body text is deliberately not searched: results stay
precise enough to act on without paging.

Example:
  quire search ruling
  quire search "quire 4"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	c, err := corpus.NewLoader(cfg).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	views := query.NewService(c).Search(args[0])
	for _, v := range views {
		fmt.Printf("%s\t%s\t%s\t%s\n", v.ID, v.Tier, v.Status, v.Title)
	}
	vlogf("%d matches\n", len(views))
	return nil
}
