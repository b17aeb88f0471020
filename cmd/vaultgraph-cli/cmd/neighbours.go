package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
)

var neighboursCmd = &cobra.Command{
	Use:     "neighbours <id>",
	Aliases: []string{"neighbors"},
	Short:   "List the documents one link away",
	Long: `List the forward-link targets and back-links of a document, followed
by the edges between them. Missing link targets are marked.

Examples:
  vaultgraph-cli neighbours "Project Alpha"
  vaultgraph-cli neighbours "core:Project Alpha"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewNeighboursCommand(GetSession().Core(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, n := range result.Neighbours {
			switch {
			case n.Dangling:
				fmt.Printf("%s (missing)\n", n.ID)
			default:
				fmt.Printf("%s %s\n", n.ID, n.Path)
			}
		}
		for _, e := range result.Edges {
			label := ""
			if e.DisplayType != "" {
				label = " [" + e.DisplayType + "]"
			}
			fmt.Printf("  %s -> %s%s\n", e.Source, e.Target, label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(neighboursCmd)
}
