package provisioning

import (
	"context"

	"github.com/danielscholl/aks-storage-poc/internal/azure"
	"github.com/danielscholl/aks-storage-poc/internal/config"
	"github.com/danielscholl/aks-storage-poc/internal/kube"
	"github.com/danielscholl/aks-storage-poc/internal/ui"
)

// CaseResult records the outcome of one use case.
type CaseResult struct {
	Case config.UseCase

	// Keyless is true when the case ran without shared-key access.
	Keyless bool

	// Err is nil on success. Case failures are isolated: a failed case does
	// not stop the remaining ones.
	Err error
}

// Success reports whether the case completed.
func (r CaseResult) Success() bool { return r.Err == nil }

// Runner executes a resolved plan: shared infrastructure first, then each
// use case in order.
type Runner struct {
	Azure *azure.Client
	Kube  *kube.Kubectl
	Out   *ui.Console
}

// Run provisions the plan. An error is returned only when the shared
// infrastructure fails; individual use-case failures are reported through
// the results so a partial run still ends with a summary.
func (r *Runner) Run(ctx context.Context, plan *config.Plan) ([]CaseResult, error) {
	pctx := NewContext(ctx, plan.Base, r.Azure, r.Kube, r.Out)
	if err := RunSteps(pctx, SetupSteps(plan)); err != nil {
		return nil, err
	}

	results := make([]CaseResult, 0, len(plan.Cases))
	for i, u := range plan.Cases {
		caseCfg := plan.CaseConfig(u)

		r.Out.Printf("")
		r.Out.Printf("=== Use case %d/%d: %s ===", i+1, len(plan.Cases), u.Name())

		err := RunSteps(pctx.forCase(caseCfg), CaseSteps(caseCfg))
		if err != nil {
			r.Out.Failf("Use case %s failed: %v", u.Name(), err)
		} else {
			r.Out.Successf("Use case %s completed", u.Name())
		}

		results = append(results, CaseResult{
			Case:    u,
			Keyless: config.KeylessSupported(u.Storage, u.Provision, caseCfg.AllowSharedKeyAccess),
			Err:     err,
		})
	}
	return results, nil
}

// SummaryRows renders results as table rows for the final report.
func SummaryRows(results []CaseResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "Success"
		if !res.Success() {
			status = "Failed"
		}
		keyless := "No"
		if res.Keyless {
			keyless = "Yes"
		}
		rows = append(rows, []string{res.Case.Name(), status, keyless})
	}
	return rows
}
