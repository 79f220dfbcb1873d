// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of the
// CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielscholl/aks-storage-poc/internal/azure"
	"github.com/danielscholl/aks-storage-poc/internal/config"
	"github.com/danielscholl/aks-storage-poc/internal/kube"
	"github.com/danielscholl/aks-storage-poc/internal/provisioning"
	"github.com/danielscholl/aks-storage-poc/internal/shell"
	"github.com/danielscholl/aks-storage-poc/internal/ui"
	"github.com/danielscholl/aks-storage-poc/internal/util/prerequisites"
)

// Injection points for tests.
var (
	stdout io.Writer = os.Stdout

	newRunner = func() shell.Runner { return shell.NewExecRunner() }

	checkDefaultPrereqs = prerequisites.CheckDefault
)

// Run resolves the options into a plan and provisions it.
//
// An error is returned for validation failures, missing tools, shared
// infrastructure failures, and for a failed single-case run. In multi-case
// mode individual case failures are reported in the summary table instead:
// a partial run is still a useful result.
func Run(ctx context.Context, opts config.Options) error {
	plan, err := config.Resolve(opts)
	if err != nil {
		return err
	}

	if results := checkDefaultPrereqs(); results.HasErrors() {
		return results.Error()
	}

	out := ui.NewConsole(stdout)
	run := newRunner()
	az := azure.NewClient(run, out)
	runner := &provisioning.Runner{
		Azure: az,
		Kube:  kube.NewKubectl(run, out),
		Out:   out,
	}

	// Confirms the CLI is logged in before anything is created.
	subscription, err := az.SubscriptionID(ctx)
	if err != nil {
		return fmt.Errorf("resolving Azure subscription: %w", err)
	}

	printPlan(out, plan, subscription)

	results, err := runner.Run(ctx, plan)
	if err != nil {
		out.ErrorPanel("Provisioning failed", err.Error())
		return err
	}

	out.Printf("")
	out.ResultsTable("Results", []string{"Use Case", "Status", "Keyless"}, provisioning.SummaryRows(results))
	printKeylessNotes(out, results)

	if plan.SingleCase && !results[0].Success() {
		return fmt.Errorf("use case %s failed: %w", results[0].Case.Name(), results[0].Err)
	}
	return nil
}

func printPlan(out *ui.Console, plan *config.Plan, subscription string) {
	cfg := plan.Base

	cases := ""
	for i, c := range plan.Cases {
		if i > 0 {
			cases += ", "
		}
		cases += c.Name()
	}

	out.Table("Run Configuration", [][2]string{
		{"Subscription", subscription},
		{"Resource Group", cfg.ResourceGroup},
		{"Storage Account", cfg.StorageAccount},
		{"Managed Identity", cfg.IdentityName},
		{"AKS Cluster", cfg.ClusterName},
		{"Location", cfg.Location},
		{"Unique ID", cfg.UniqueID},
		{"Use Cases", cases},
	})

	if !cfg.AllowSharedKeyAccess {
		out.Warnf("Shared-key access disabled: storage operations authenticate with Entra ID only")
	}
}

// printKeylessNotes flags cases that required shared-key access so the run's
// security posture is visible in the final report.
func printKeylessNotes(out *ui.Console, results []provisioning.CaseResult) {
	for _, res := range results {
		if res.Success() && !res.Keyless {
			out.Warnf("%s requires shared-key access on the storage account", res.Case.Name())
		}
	}
}
