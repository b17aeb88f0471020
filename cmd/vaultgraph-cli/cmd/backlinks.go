package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
)

var backlinksCmd = &cobra.Command{
	Use:   "backlinks <id>",
	Short: "List the documents linking to a document",
	Long: `List every document with a link to the given one.

Use --backlinks sqlite to answer from the persistent link index.

Examples:
  vaultgraph-cli backlinks "Project Alpha"
  vaultgraph-cli --backlinks sqlite backlinks core:Inbox`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetSession()
		links, err := commands.NewBacklinksCommand(s.Vault(), s.Backlinks(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(links) == 0 {
			fmt.Println("No backlinks")
			return nil
		}
		for _, b := range links {
			fmt.Printf("%s %s\n", b.ID, b.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backlinksCmd)
}
