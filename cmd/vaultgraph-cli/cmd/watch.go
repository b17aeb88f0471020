package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vaultgraph/internal/application/workspace"
)

var watchCmd = &cobra.Command{
	Use:   "watch <id>...",
	Short: "Follow graph changes as the vault is edited",
	Long: `Expand the given documents, then watch the vault and print every change
to the graph until interrupted.

Example:
  vaultgraph-cli watch "Project Alpha"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws, err := openWorkspace(cmd, args)
		if err != nil {
			return err
		}
		defer ws.Close()

		unsubscribe := ws.Subscribe(printEvent)
		defer unsubscribe()

		if err := GetSession().Watch(ctx); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Watching %s, press Ctrl+C to stop\n", GetSession().Vault().Root())
		<-ctx.Done()
		return nil
	},
}

func printEvent(e workspace.Event) {
	switch ev := e.(type) {
	case workspace.ElementsChanged:
		if len(ev.Added) > 0 {
			fmt.Printf("+ %s\n", strings.Join(ev.Added, " "))
		}
		if len(ev.Removed) > 0 {
			fmt.Printf("- %s\n", strings.Join(ev.Removed, " "))
		}
	case workspace.UpToDate:
		fmt.Printf("up to date: %s\n", ev.ID)
	case workspace.RefreshSkipped:
		fmt.Printf("skipped %s: %s\n", ev.ID, ev.Reason)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
