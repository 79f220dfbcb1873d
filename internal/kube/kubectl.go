// Package kube drives the kubectl CLI and builds the Kubernetes manifests
// this tool applies: the workload-identity service account, the storage
// volume objects and the verification job.
package kube

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/danielscholl/aks-storage-poc/internal/shell"
	"github.com/danielscholl/aks-storage-poc/internal/ui"
)

// Job wait timeouts. Dynamic provisioning needs longer because the CSI
// driver creates the backing volume before the pod can start.
const (
	StaticJobTimeout  = 60 * time.Second
	DynamicJobTimeout = 120 * time.Second
)

// Kubectl wraps the kubectl CLI.
type Kubectl struct {
	run shell.Runner
	out *ui.Console
}

// NewKubectl creates a kubectl client. Commands run through run and status
// output goes to out.
func NewKubectl(run shell.Runner, out *ui.Console) *Kubectl {
	return &Kubectl{run: run, out: out}
}

// Apply writes the manifest to a temporary file, applies it, and removes the
// file. The manifest itself was already displayed to the user, so only a
// short apply notice is printed instead of the temp file path.
func (k *Kubectl) Apply(ctx context.Context, description string, manifest []byte) error {
	tmp, err := os.CreateTemp("", "manifest-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(manifest); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp manifest: %w", err)
	}

	k.out.Printf("kubectl apply - Applying %s", description)

	res, err := k.run.Run(ctx, "kubectl", "apply", "-f", tmp.Name())
	if err != nil {
		return fmt.Errorf("invoking kubectl: %w", err)
	}
	if !res.Ok() {
		return fmt.Errorf("kubectl apply failed for %s: %s", description, res.ErrText())
	}

	k.out.Successf("%s created successfully", description)
	return nil
}

// WaitForJob blocks until the named job reports the complete condition or
// the timeout elapses. The wait is delegated entirely to kubectl; there is
// no polling loop here.
func (k *Kubectl) WaitForJob(ctx context.Context, name string, timeout time.Duration) error {
	res, err := k.run.Run(ctx, "kubectl",
		"wait",
		"--for=condition=complete",
		fmt.Sprintf("job/%s", name),
		fmt.Sprintf("--timeout=%ds", int(timeout.Seconds())))
	if err != nil {
		return fmt.Errorf("invoking kubectl: %w", err)
	}
	if !res.Ok() {
		return fmt.Errorf("job %s did not complete within %v", name, timeout)
	}
	return nil
}

// JobLogs fetches the logs of the named job's pod.
func (k *Kubectl) JobLogs(ctx context.Context, name string) (string, error) {
	res, err := k.run.Run(ctx, "kubectl", "logs", fmt.Sprintf("job/%s", name))
	if err != nil {
		return "", fmt.Errorf("invoking kubectl: %w", err)
	}
	if !res.Ok() {
		return "", fmt.Errorf("fetching logs for job %s: %s", name, res.ErrText())
	}
	return res.Stdout, nil
}
