package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
)

var markCmd = &cobra.Command{
	Use:   "mark <id>",
	Short: "Mark a document as up to date",
	Long: `Append the up-to-date marker to a document. Documents that already
carry the marker are left untouched.

Example:
  vaultgraph-cli mark "Project Alpha"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetSession()
		result, err := commands.NewMarkUpToDateCommand(s.Vault(), s.Vault(), args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markCmd)
}
