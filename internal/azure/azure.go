// Package azure drives the Azure CLI. Every operation is one synchronous
// `az` invocation; the CLI is the only integration surface, so the client
// holds no credentials and no SDK state of its own.
package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/danielscholl/aks-storage-poc/internal/shell"
	"github.com/danielscholl/aks-storage-poc/internal/ui"
	"github.com/danielscholl/aks-storage-poc/internal/util/retry"
)

// Role names assigned to the managed identity.
const (
	RoleKeyOperator         = "Storage Account Key Operator Service Role"
	RoleBlobDataContributor = "Storage Blob Data Contributor"
	RoleFileDataContributor = "Storage File Data SMB Share Contributor"
	RoleReader              = "Reader"
)

// Storage account creation settings. Creation is retried because the
// account name is freshly derived and Azure occasionally rejects the first
// attempt while propagating a prior delete. Variables so tests can shorten
// the delay.
var (
	storageCreateAttempts = 3
	storageCreateDelay    = 5 * time.Second
)

// Client wraps the az CLI behind typed operations.
type Client struct {
	run shell.Runner
	out *ui.Console
}

// NewClient creates an Azure CLI client. Commands run through run and
// command previews/status go to out.
func NewClient(run shell.Runner, out *ui.Console) *Client {
	return &Client{run: run, out: out}
}

// az runs an az command. When description is non-empty the command is
// displayed first; probe-style calls pass an empty description to keep the
// transcript readable.
func (c *Client) az(ctx context.Context, description string, args ...string) (shell.Result, error) {
	if description != "" {
		c.out.Command(description, append([]string{"az"}, args...))
	}
	res, err := c.run.Run(ctx, "az", args...)
	if err != nil {
		return res, fmt.Errorf("invoking az: %w", err)
	}
	return res, nil
}

// azChecked runs an az command and converts a non-zero exit into an error
// carrying the command's stderr.
func (c *Client) azChecked(ctx context.Context, description string, args ...string) (shell.Result, error) {
	res, err := c.az(ctx, description, args...)
	if err != nil {
		return res, err
	}
	if !res.Ok() {
		return res, fmt.Errorf("az %s failed: %s", args[0], res.ErrText())
	}
	return res, nil
}

// SubscriptionID returns the id of the currently logged-in subscription.
func (c *Client) SubscriptionID(ctx context.Context) (string, error) {
	res, err := c.azChecked(ctx, "", "account", "show", "--query", "id", "-o", "tsv")
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// CreateResourceGroup creates the resource group, tagging it with the
// use-case labels for this run.
func (c *Client) CreateResourceGroup(ctx context.Context, name, location string, tags []string) error {
	args := []string{"group", "create", "-n", name, "-l", location}
	if len(tags) > 0 {
		args = append(args, "--tags")
		args = append(args, tags...)
	}
	_, err := c.azChecked(ctx, fmt.Sprintf("Create resource group %s", name), args...)
	if err != nil {
		return fmt.Errorf("creating resource group %s: %w", name, err)
	}
	return nil
}

// CreateIdentity creates a user-assigned managed identity.
func (c *Client) CreateIdentity(ctx context.Context, resourceGroup, name, location string) error {
	_, err := c.azChecked(ctx, fmt.Sprintf("Create managed identity %s", name),
		"identity", "create",
		"--resource-group", resourceGroup,
		"--name", name,
		"--location", location,
		"--query", "id", "-o", "tsv")
	if err != nil {
		return fmt.Errorf("creating managed identity %s: %w", name, err)
	}
	return nil
}

// IdentityClientID fetches the client id of a managed identity.
func (c *Client) IdentityClientID(ctx context.Context, resourceGroup, name string) (string, error) {
	res, err := c.azChecked(ctx, "",
		"identity", "show",
		"--resource-group", resourceGroup,
		"--name", name,
		"--query", "clientId", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading client id for identity %s: %w", name, err)
	}
	return res.Text(), nil
}

// IdentityPrincipalID fetches the principal (object) id of a managed identity.
func (c *Client) IdentityPrincipalID(ctx context.Context, resourceGroup, name string) (string, error) {
	res, err := c.azChecked(ctx, "",
		"identity", "show",
		"--resource-group", resourceGroup,
		"--name", name,
		"--query", "principalId", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading principal id for identity %s: %w", name, err)
	}
	return res.Text(), nil
}

// StorageAccountExists probes for an existing storage account so a rerun can
// reuse one left behind by a previous partial run.
func (c *Client) StorageAccountExists(ctx context.Context, name string) (bool, error) {
	res, err := c.az(ctx, "",
		"storage", "account", "show",
		"--name", name,
		"--query", "name", "-o", "tsv")
	if err != nil {
		return false, err
	}
	return res.Ok() && res.Text() != "", nil
}

// StorageAccountID returns the resource id of a storage account.
func (c *Client) StorageAccountID(ctx context.Context, name string) (string, error) {
	res, err := c.azChecked(ctx, "",
		"storage", "account", "show",
		"--name", name,
		"--query", "id", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading id of storage account %s: %w", name, err)
	}
	return res.Text(), nil
}

// CreateStorageAccount creates a StorageV2 account and returns its resource
// id. Creation is retried up to three times with a fixed delay, and the
// account is verified to exist afterwards.
func (c *Client) CreateStorageAccount(ctx context.Context, resourceGroup, name, location string, allowSharedKey bool) (string, error) {
	keyStatus := "disabled"
	if allowSharedKey {
		keyStatus = "enabled"
	}

	var accountID string
	attempt := 0
	err := retry.Do(ctx, func() error {
		attempt++
		if attempt > 1 {
			c.out.Warnf("retrying storage account creation (%d/%d)", attempt, storageCreateAttempts)
		}
		res, err := c.az(ctx, fmt.Sprintf("Create storage account with shared keys %s", keyStatus),
			"storage", "account", "create",
			"--resource-group", resourceGroup,
			"--name", name,
			"--location", location,
			"--sku", "Standard_LRS",
			"--kind", "StorageV2",
			"--allow-shared-key-access", boolString(allowSharedKey),
			"--allow-blob-public-access", "false",
			"--query", "id", "-o", "tsv")
		if err != nil {
			return retry.Fatal(err)
		}
		if !res.Ok() || res.Text() == "" {
			return fmt.Errorf("az storage account create failed: %s", res.ErrText())
		}
		accountID = res.Text()
		return nil
	},
		retry.WithMaxAttempts(storageCreateAttempts),
		retry.WithDelay(storageCreateDelay),
		retry.WithMultiplier(1.0))
	if err != nil {
		return "", fmt.Errorf("creating storage account %s: %w", name, err)
	}

	exists, err := c.StorageAccountExists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("storage account %s was not created successfully", name)
	}

	return accountID, nil
}

// CreateBlobContainer creates a blob container. When keyless is set the
// request authenticates with the caller's Entra login instead of an account
// key.
func (c *Client) CreateBlobContainer(ctx context.Context, account, name string, keyless bool) error {
	args := []string{
		"storage", "container", "create",
		"--name", name,
		"--account-name", account,
	}
	if keyless {
		args = append(args, "--auth-mode", "login")
	}
	res, err := c.az(ctx, "", args...)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("creating blob container %s: %s", name, res.ErrText())
	}
	return nil
}

// CreateFileShare creates an SMB file share.
func (c *Client) CreateFileShare(ctx context.Context, account, name string) error {
	res, err := c.az(ctx, "",
		"storage", "share", "create",
		"--name", name,
		"--account-name", account)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("creating file share %s: %s", name, res.ErrText())
	}
	return nil
}

// AssignRole grants role to the assignee principal at scope.
func (c *Client) AssignRole(ctx context.Context, assignee, role, scope string) error {
	_, err := c.azChecked(ctx, fmt.Sprintf("Assign %s", role),
		"role", "assignment", "create",
		"--assignee", assignee,
		"--role", role,
		"--scope", scope)
	if err != nil {
		return fmt.Errorf("assigning role %q: %w", role, err)
	}
	return nil
}

// CreateCluster creates a single-node AKS cluster with managed identity,
// OIDC issuer and workload identity enabled. The blob CSI driver is enabled
// when the run exercises blob storage.
func (c *Client) CreateCluster(ctx context.Context, resourceGroup, name, location string, enableBlobDriver bool) error {
	args := []string{
		"aks", "create",
		"--resource-group", resourceGroup,
		"--name", name,
		"--location", location,
		"--node-count", "1",
		"--enable-managed-identity",
		"--enable-oidc-issuer",
		"--enable-workload-identity",
	}
	if enableBlobDriver {
		args = append(args, "--enable-blob-driver")
	}
	_, err := c.azChecked(ctx, fmt.Sprintf("Create AKS cluster %s", name), args...)
	if err != nil {
		return fmt.Errorf("creating AKS cluster %s: %w", name, err)
	}
	return nil
}

// GetCredentials merges the cluster's kubeconfig into the local config so
// kubectl targets the new cluster.
func (c *Client) GetCredentials(ctx context.Context, resourceGroup, name string) error {
	_, err := c.azChecked(ctx, "Get AKS credentials",
		"aks", "get-credentials",
		"--resource-group", resourceGroup,
		"--name", name,
		"--overwrite-existing")
	if err != nil {
		return fmt.Errorf("fetching credentials for cluster %s: %w", name, err)
	}
	return nil
}

// OIDCIssuerURL returns the cluster's OIDC issuer URL for federated
// credential creation.
func (c *Client) OIDCIssuerURL(ctx context.Context, resourceGroup, cluster string) (string, error) {
	res, err := c.azChecked(ctx, "Get OIDC issuer URL",
		"aks", "show",
		"--name", cluster,
		"--resource-group", resourceGroup,
		"--query", "oidcIssuerProfile.issuerUrl",
		"--output", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading OIDC issuer for cluster %s: %w", cluster, err)
	}
	return res.Text(), nil
}

// NodeResourceGroup returns the auto-created resource group holding the
// cluster's nodes.
func (c *Client) NodeResourceGroup(ctx context.Context, resourceGroup, cluster string) (string, error) {
	res, err := c.azChecked(ctx, "",
		"aks", "show",
		"--name", cluster,
		"--resource-group", resourceGroup,
		"--query", "nodeResourceGroup", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading node resource group for cluster %s: %w", cluster, err)
	}
	return res.Text(), nil
}

// GroupID returns the resource id of a resource group.
func (c *Client) GroupID(ctx context.Context, name string) (string, error) {
	res, err := c.azChecked(ctx, "",
		"group", "show",
		"--name", name,
		"--query", "id", "-o", "tsv")
	if err != nil {
		return "", fmt.Errorf("reading id of resource group %s: %w", name, err)
	}
	return res.Text(), nil
}

// CreateFederatedCredential binds the cluster's OIDC issuer and service
// account subject to the managed identity. The call is best-effort: a
// failure surfaces later as the verification job failing to mount, which is
// a clearer signal than the az error text.
func (c *Client) CreateFederatedCredential(ctx context.Context, credential, identity, resourceGroup, issuer, subject string) error {
	_, err := c.az(ctx, "",
		"identity", "federated-credential", "create",
		"--name", credential,
		"--identity-name", identity,
		"--resource-group", resourceGroup,
		"--issuer", issuer,
		"--subject", subject,
		"--audience", "api://AzureADTokenExchange")
	return err
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
