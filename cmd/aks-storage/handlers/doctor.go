package handlers

import (
	"github.com/danielscholl/aks-storage-poc/internal/ui"
)

// Doctor checks that the external tools every provisioning step depends on
// are installed, and reports where they were found.
func Doctor() error {
	out := ui.NewConsole(stdout)
	results := checkDefaultPrereqs()

	for _, res := range results.Results {
		if res.Found {
			version := res.Version
			if version == "" {
				version = res.Path
			}
			out.Successf("%s (%s)", res.Tool.Name, version)
			continue
		}
		out.Failf("%s not found: %s", res.Tool.Name, res.Tool.InstallURL)
		out.Printf("  %s", res.Tool.Description)
	}

	if results.HasErrors() {
		return results.Error()
	}
	out.Printf("")
	out.Successf("All required tools are installed")
	return nil
}
