package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the vault",
	Long: `Search for documents by name, path or alias.

Results are ranked by relevance using fuzzy matching.

Examples:
  vaultgraph-cli search project
  vaultgraph-cli search notes/alpha`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchCmd := commands.NewSearchCommand(GetSession().Vault(), args[0])
		searchCmd.Limit = searchLimit
		results, err := searchCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}

		for _, r := range results {
			if r.MatchedText != "" {
				fmt.Printf("%s %s (alias: %s)\n", r.ID, r.Path, r.MatchedText)
				continue
			}
			fmt.Printf("%s %s\n", r.ID, r.Path)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
