package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultgraph/internal/config"
	"vaultgraph/internal/session"
)

var (
	configPath string
	vaultPath  string
	backlinks  string
	sess       *session.Session
)

var rootCmd = &cobra.Command{
	Use:   "vaultgraph-cli",
	Short: "Explore the link graph of a markdown vault",
	Long: `vaultgraph-cli queries the wiki-link graph of an Obsidian-style vault.

It provides commands to search documents, list neighbours and back-links,
expand neighbourhoods into a graph, export it as JSON or DOT, and follow
vault changes live.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("vault") {
			cfg.Vault.Path = vaultPath
		}
		if cmd.Flags().Changed("backlinks") {
			cfg.Index.Backlinks = backlinks
			cfg.Validate()
		}

		sess, err = session.Open(cmd.Context(), cfg, cfg.Log.NewLogger(os.Stderr))
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if sess == nil {
			return nil
		}
		return sess.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/vaultgraph/vaultgraph.yaml)")
	rootCmd.PersistentFlags().StringVarP(&vaultPath, "vault", "v", config.VaultPath(), "path to the vault")
	rootCmd.PersistentFlags().StringVar(&backlinks, "backlinks", config.BacklinksScan, "back-link strategy: scan or sqlite")
}

// GetSession returns the opened session
func GetSession() *session.Session {
	return sess
}
