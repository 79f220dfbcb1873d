// Package provisioning runs the step pipeline that stands up the Azure
// resources and Kubernetes objects for a storage use case: resource group,
// managed identity, storage account, AKS cluster, workload identity and the
// CSI volume objects with their verification job.
package provisioning

import (
	"context"

	"github.com/danielscholl/aks-storage-poc/internal/azure"
	"github.com/danielscholl/aks-storage-poc/internal/config"
	"github.com/danielscholl/aks-storage-poc/internal/kube"
	"github.com/danielscholl/aks-storage-poc/internal/ui"
)

// State holds the results steps produce for later steps. It is populated
// progressively: each field is written by exactly one step and read only by
// steps that run after it.
type State struct {
	// Identity results.
	IdentityClientID    string
	IdentityPrincipalID string

	// Storage account resource id. Empty when the run is dynamic-only and
	// no account is created up front.
	StorageAccountID string

	// Cluster results.
	OIDCIssuerURL     string
	NodeResourceGroup string
}

// Context carries everything a step needs: cancellation, the run
// configuration, accumulated state and the CLI clients.
type Context struct {
	context.Context
	Config *config.Config
	State  *State
	Azure  *azure.Client
	Kube   *kube.Kubectl
	Out    *ui.Console
}

// NewContext creates a provisioning context with empty state.
func NewContext(ctx context.Context, cfg *config.Config, az *azure.Client, kc *kube.Kubectl, out *ui.Console) *Context {
	return &Context{
		Context: ctx,
		Config:  cfg,
		State:   &State{},
		Azure:   az,
		Kube:    kc,
		Out:     out,
	}
}

// forCase returns a context sharing this context's state and clients but
// carrying a different configuration. Use-case runs derive their contexts
// this way so they all see the shared infrastructure results.
func (c *Context) forCase(cfg *config.Config) *Context {
	return &Context{
		Context: c.Context,
		Config:  cfg,
		State:   c.State,
		Azure:   c.Azure,
		Kube:    c.Kube,
		Out:     c.Out,
	}
}
