package main

import "vaultgraph/cmd/vaultgraph-cli/cmd"

func main() {
	cmd.Execute()
}
