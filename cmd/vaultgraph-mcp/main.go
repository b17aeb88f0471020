package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "vaultgraph/internal/adapters/mcp"
	"vaultgraph/internal/config"
	"vaultgraph/internal/session"
)

const version = "0.1.0"

func main() {
	configFlag := flag.String("config", "", "config file")
	vaultFlag := flag.String("vault", "", "path to the vault (overrides config)")
	watchFlag := flag.Bool("watch", true, "refresh the shared graph as the vault changes")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("vaultgraph-mcp: %v", err)
	}
	if *vaultFlag != "" {
		cfg.Vault.Path = *vaultFlag
	}

	// stdout carries the protocol
	logger := cfg.Log.NewLogger(os.Stderr)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess, err := session.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("vaultgraph-mcp: %v", err)
	}
	defer sess.Close()

	if *watchFlag {
		if err := sess.Watch(ctx); err != nil {
			logger.Warn("file watching disabled", "error", err)
		}
	}

	tools := mcpadapter.NewTools(sess)
	defer tools.Close()

	if err := server.ServeStdio(mcpadapter.NewServer("vaultgraph-mcp", version, tools)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
