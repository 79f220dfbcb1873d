package commands

import (
	"github.com/spf13/cobra"

	"github.com/danielscholl/aks-storage-poc/cmd/aks-storage/handlers"
)

// Doctor returns the command that checks the client tools this CLI drives.
func Doctor() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required client tools are installed",
		Long: `Check that the external tools this CLI shells out to are available.

Both az (the Azure CLI) and kubectl are required: every provisioning step
runs through one of them.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Doctor()
		},
	}
}
