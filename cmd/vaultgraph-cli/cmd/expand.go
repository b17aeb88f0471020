package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
)

var expandCmd = &cobra.Command{
	Use:   "expand <id>...",
	Short: "Expand documents into a graph and list its elements",
	Long: `Expand the one-hop neighbourhood of every given document, in order, and
print the nodes and edges each expansion added.

Examples:
  vaultgraph-cli expand "Project Alpha"
  vaultgraph-cli expand Alpha core:Beta`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd, nil)
		if err != nil {
			return err
		}
		defer ws.Close()

		for _, id := range args {
			result, err := commands.NewExpandCommand(ws, id).Execute(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", id, result.Message)
			for _, n := range result.Added.Nodes {
				fmt.Printf("  + %s\n", n.ID)
			}
			for _, e := range result.Added.Edges {
				fmt.Printf("  + %s -> %s\n", e.Source, e.Target)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expandCmd)
}
