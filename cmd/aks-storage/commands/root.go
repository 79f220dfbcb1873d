// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/danielscholl/aks-storage-poc/cmd/aks-storage/handlers"
	"github.com/danielscholl/aks-storage-poc/internal/config"
)

// Root returns the root command for the aks-storage CLI.
//
// The root command itself performs provisioning: when storage and
// provisioning type are both given it runs that single use case, otherwise
// it expands the unpinned dimensions and runs every matching combination
// against shared infrastructure.
func Root() *cobra.Command {
	var (
		group            string
		storage          string
		provision        string
		disableSharedKey bool
		location         string
	)

	cmd := &cobra.Command{
		Use:   "aks-storage",
		Short: "Provision an AKS storage proof of concept",
		Long: `Provision an AKS cluster wired for Azure storage.

Creates a resource group, managed identity, storage account and AKS cluster,
configures workload identity, and verifies each selected use case by running
a job that writes and reads a file on the mounted volume.

Use cases are combinations of storage type (Blob, File) and provisioning
type (Persistent, Dynamic). Omitting a dimension runs all its values.

Examples:
  # Run all four use cases
  aks-storage

  # Run only Blob storage with static provisioning
  aks-storage --storage Blob --provision Persistent

  # Run the keyless variant (forces Blob + Persistent)
  aks-storage --disable-shared-key`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			storageKind, err := config.ParseStorageKind(storage)
			if err != nil {
				return err
			}
			provisionKind, err := config.ParseProvisionKind(provision)
			if err != nil {
				return err
			}

			return handlers.Run(cmd.Context(), config.Options{
				Group:            group,
				Storage:          storageKind,
				Provision:        provisionKind,
				DisableSharedKey: disableSharedKey,
				Location:         location,
			})
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", config.DefaultGroup, "Base name for derived Azure resource names")
	cmd.Flags().StringVarP(&storage, "storage", "s", "", "Storage type: Blob or File (default: all)")
	cmd.Flags().StringVarP(&provision, "provision", "p", "", "Provisioning type: Persistent or Dynamic (default: all)")
	cmd.Flags().BoolVar(&disableSharedKey, "disable-shared-key", false, "Disable shared-key access on the storage account (Blob + Persistent only)")
	cmd.Flags().StringVarP(&location, "location", "l", config.DefaultLocation, "Azure region")

	cmd.AddCommand(Version())
	cmd.AddCommand(Doctor())

	return cmd
}
