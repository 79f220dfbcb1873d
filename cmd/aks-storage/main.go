// Package main is the entry point for the aks-storage CLI.
//
// aks-storage provisions a proof-of-concept AKS environment for exercising
// Azure storage from Kubernetes: Blob Storage and Azure Files, each with
// static or dynamic CSI provisioning, authenticated via workload identity.
//
// For detailed usage information, run:
//
//	aks-storage --help
package main

import (
	"fmt"
	"os"

	"github.com/danielscholl/aks-storage-poc/cmd/aks-storage/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
