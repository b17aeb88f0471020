package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/commands"
	"vaultgraph/internal/application/workspace"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <id>...",
	Short: "Expand documents and export the resulting graph",
	Long: `Expand the neighbourhood of every given document into a fresh graph and
write it as JSON elements or Graphviz DOT.

Examples:
  vaultgraph-cli export "Project Alpha"
  vaultgraph-cli export --format dot Alpha Beta -o graph.dot`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		export := commands.NewExportCommand(nil, exportFormat)
		if err := export.Validate(); err != nil {
			return err
		}

		ws, err := openWorkspace(cmd, args)
		if err != nil {
			return err
		}
		defer ws.Close()

		out, err := commands.NewExportCommand(ws, exportFormat).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if exportOutput == "" || exportOutput == "-" {
			_, err = os.Stdout.Write(out)
			return err
		}
		if err := os.WriteFile(exportOutput, out, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOutput)
		return nil
	},
}

// openWorkspace creates a workspace on the session and opens it on seeds
func openWorkspace(cmd *cobra.Command, seeds []string) (*workspace.Workspace, error) {
	ws, _, err := GetSession().NewWorkspace()
	if err != nil {
		return nil, err
	}
	if err := ws.Open(cmd.Context(), nil); err != nil {
		ws.Close()
		return nil, err
	}
	if len(seeds) > 0 {
		if _, err := commands.NewExpandCommand(ws, seeds...).Execute(cmd.Context()); err != nil {
			ws.Close()
			return nil, err
		}
	}
	return ws, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", commands.FormatJSON, "output format: json or dot")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
