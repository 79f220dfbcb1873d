package provisioning

import (
	"fmt"

	"github.com/danielscholl/aks-storage-poc/internal/azure"
	"github.com/danielscholl/aks-storage-poc/internal/config"
	"github.com/danielscholl/aks-storage-poc/internal/kube"
)

// SetupSteps returns the steps that build the infrastructure shared by every
// use case in the plan: resource group, managed identity, storage account,
// role assignments, the AKS cluster and the workload identity binding.
//
// A single-case run always creates the storage account, its container or
// share, and the storage roles, even for dynamic provisioning. Only
// multi-case runs whose cases are all dynamic skip the account: there the
// CSI driver provisions its own storage on demand.
func SetupSteps(plan *config.Plan) []Step {
	steps := []Step{
		&resourceGroupStep{tags: plan.TagArgs()},
		&identityStep{},
		&storageAccountStep{skip: !plan.SingleCase && !plan.NeedsStorageAccount()},
	}
	if plan.SingleCase && plan.Base.Provision == config.ProvisionDynamic {
		steps = append(steps, &storageDataStep{})
	}
	return append(steps,
		&roleAssignmentStep{kinds: dataRoleKinds(plan)},
		&clusterStep{enableBlobDriver: plan.Base.Storage == config.StorageBlob},
		&workloadIdentityStep{},
	)
}

// CaseSteps returns the per-use-case steps: the blob container or file share
// for static provisioning, the volume objects, and the verification job.
func CaseSteps(cfg *config.Config) []Step {
	steps := []Step{}
	if cfg.Provision == config.ProvisionPersistent {
		steps = append(steps, &storageDataStep{})
	}
	return append(steps, &volumesStep{}, &verificationStep{})
}

// dataRoleKinds lists the storage kinds that need data-plane roles on the
// account. A single-case run grants the role for its one kind; a multi-case
// run covers the distinct kinds of its static cases.
func dataRoleKinds(plan *config.Plan) []config.StorageKind {
	if plan.SingleCase {
		return []config.StorageKind{plan.Base.Storage}
	}
	var kinds []config.StorageKind
	seen := map[config.StorageKind]bool{}
	for _, c := range plan.Cases {
		if c.Provision != config.ProvisionPersistent || seen[c.Storage] {
			continue
		}
		seen[c.Storage] = true
		kinds = append(kinds, c.Storage)
	}
	return kinds
}

type resourceGroupStep struct {
	tags []string
}

func (s *resourceGroupStep) Name() string { return "Resource Group" }

func (s *resourceGroupStep) Run(ctx *Context) error {
	return ctx.Azure.CreateResourceGroup(ctx, ctx.Config.ResourceGroup, ctx.Config.Location, s.tags)
}

type identityStep struct{}

func (s *identityStep) Name() string { return "Managed Identity" }

func (s *identityStep) Run(ctx *Context) error {
	cfg := ctx.Config
	if err := ctx.Azure.CreateIdentity(ctx, cfg.ResourceGroup, cfg.IdentityName, cfg.Location); err != nil {
		return err
	}

	clientID, err := ctx.Azure.IdentityClientID(ctx, cfg.ResourceGroup, cfg.IdentityName)
	if err != nil {
		return err
	}
	principalID, err := ctx.Azure.IdentityPrincipalID(ctx, cfg.ResourceGroup, cfg.IdentityName)
	if err != nil {
		return err
	}
	ctx.State.IdentityClientID = clientID
	ctx.State.IdentityPrincipalID = principalID

	ctx.Out.Table("Managed Identity", [][2]string{
		{"Name", cfg.IdentityName},
		{"Client ID", clientID},
		{"Principal ID", principalID},
	})
	return nil
}

// storageAccountStep creates (or reuses) the storage account. Skipped only
// for multi-case runs whose cases all provision dynamically.
type storageAccountStep struct {
	skip bool
}

func (s *storageAccountStep) Name() string { return "Storage Account" }

func (s *storageAccountStep) Run(ctx *Context) error {
	if s.skip {
		ctx.Out.Printf("Dynamic provisioning creates its own storage, skipping account creation")
		return nil
	}

	cfg := ctx.Config
	exists, err := ctx.Azure.StorageAccountExists(ctx, cfg.StorageAccount)
	if err != nil {
		return err
	}
	if exists {
		ctx.Out.Successf("Reusing existing storage account %s", cfg.StorageAccount)
		id, err := ctx.Azure.StorageAccountID(ctx, cfg.StorageAccount)
		if err != nil {
			return err
		}
		ctx.State.StorageAccountID = id
		return nil
	}

	id, err := ctx.Azure.CreateStorageAccount(ctx, cfg.ResourceGroup, cfg.StorageAccount, cfg.Location, cfg.AllowSharedKeyAccess)
	if err != nil {
		return err
	}
	ctx.State.StorageAccountID = id
	return nil
}

// roleAssignmentStep grants the managed identity its storage roles at
// account scope. Skipped entirely when no account was created.
type roleAssignmentStep struct {
	kinds []config.StorageKind
}

func (s *roleAssignmentStep) Name() string { return "Role Assignments" }

func (s *roleAssignmentStep) Run(ctx *Context) error {
	if ctx.State.StorageAccountID == "" {
		ctx.Out.Printf("No storage account in this run, skipping role assignments")
		return nil
	}

	principal := ctx.State.IdentityPrincipalID
	scope := ctx.State.StorageAccountID

	if err := ctx.Azure.AssignRole(ctx, principal, azure.RoleKeyOperator, scope); err != nil {
		return err
	}
	for _, kind := range s.kinds {
		if err := ctx.Azure.AssignRole(ctx, principal, dataRole(kind), scope); err != nil {
			return err
		}
	}
	return nil
}

func dataRole(storage config.StorageKind) string {
	if storage == config.StorageBlob {
		return azure.RoleBlobDataContributor
	}
	return azure.RoleFileDataContributor
}

// clusterStep creates the AKS cluster, merges its credentials, records the
// OIDC issuer, and grants the identity Reader on the node resource group so
// the file CSI driver can resolve the account.
type clusterStep struct {
	enableBlobDriver bool
}

func (s *clusterStep) Name() string { return "AKS Cluster" }

func (s *clusterStep) Run(ctx *Context) error {
	cfg := ctx.Config
	if err := ctx.Azure.CreateCluster(ctx, cfg.ResourceGroup, cfg.ClusterName, cfg.Location, s.enableBlobDriver); err != nil {
		return err
	}
	if err := ctx.Azure.GetCredentials(ctx, cfg.ResourceGroup, cfg.ClusterName); err != nil {
		return err
	}

	issuer, err := ctx.Azure.OIDCIssuerURL(ctx, cfg.ResourceGroup, cfg.ClusterName)
	if err != nil {
		return err
	}
	ctx.State.OIDCIssuerURL = issuer

	nodeRG, err := ctx.Azure.NodeResourceGroup(ctx, cfg.ResourceGroup, cfg.ClusterName)
	if err != nil {
		return err
	}
	ctx.State.NodeResourceGroup = nodeRG

	nodeRGID, err := ctx.Azure.GroupID(ctx, nodeRG)
	if err != nil {
		return err
	}
	if err := ctx.Azure.AssignRole(ctx, ctx.State.IdentityPrincipalID, azure.RoleReader, nodeRGID); err != nil {
		return err
	}

	ctx.Out.Table("AKS Cluster", [][2]string{
		{"Name", cfg.ClusterName},
		{"Resource Group", cfg.ResourceGroup},
		{"Node Resource Group", nodeRG},
		{"OIDC Issuer", issuer},
	})
	return nil
}

// workloadIdentityStep applies the annotated service account and binds the
// cluster's OIDC issuer to the managed identity via a federated credential.
type workloadIdentityStep struct{}

func (s *workloadIdentityStep) Name() string { return "Workload Identity" }

func (s *workloadIdentityStep) Run(ctx *Context) error {
	manifest, err := kube.ServiceAccount(ctx.State.IdentityClientID)
	if err != nil {
		return fmt.Errorf("rendering service account: %w", err)
	}
	ctx.Out.YAML("Service Account Manifest", manifest)
	if err := ctx.Kube.Apply(ctx, "service account", manifest); err != nil {
		return err
	}

	// Best effort: a missing federated credential surfaces later as the
	// verification job failing to mount, which is the clearer signal.
	if err := ctx.Azure.CreateFederatedCredential(ctx,
		kube.FederatedCredentialName,
		ctx.Config.IdentityName,
		ctx.Config.ResourceGroup,
		ctx.State.OIDCIssuerURL,
		kube.ServiceAccountSubject); err != nil {
		ctx.Out.Warnf("federated credential creation not confirmed: %v", err)
	}
	return nil
}

// storageDataStep creates the blob container or file share the static volume
// points at.
type storageDataStep struct{}

func (s *storageDataStep) Name() string { return "Storage Data" }

func (s *storageDataStep) Run(ctx *Context) error {
	cfg := ctx.Config
	if cfg.Storage == config.StorageBlob {
		keyless := config.KeylessSupported(cfg.Storage, cfg.Provision, cfg.AllowSharedKeyAccess)
		if err := ctx.Azure.CreateBlobContainer(ctx, cfg.StorageAccount, config.BlobContainerName, keyless); err != nil {
			return err
		}
		ctx.Out.Successf("Blob container %s ready", config.BlobContainerName)
		return nil
	}

	if err := ctx.Azure.CreateFileShare(ctx, cfg.StorageAccount, config.FileShareName); err != nil {
		return err
	}
	ctx.Out.Successf("File share %s ready", config.FileShareName)
	return nil
}

// volumesStep applies the volume objects for the case: a pre-declared
// persistent volume plus bound claim for static provisioning, or a bare
// claim for dynamic provisioning.
type volumesStep struct{}

func (s *volumesStep) Name() string { return "Storage Volumes" }

func (s *volumesStep) Run(ctx *Context) error {
	cfg := ctx.Config

	if cfg.Provision == config.ProvisionPersistent {
		pv, err := kube.StaticPersistentVolume(kube.VolumeParams{
			Storage:          cfg.Storage,
			ResourceGroup:    cfg.ResourceGroup,
			StorageAccount:   cfg.StorageAccount,
			ContainerOrShare: cfg.ContainerOrShare(),
			ClientID:         ctx.State.IdentityClientID,
		})
		if err != nil {
			return fmt.Errorf("rendering persistent volume: %w", err)
		}
		ctx.Out.YAML("Persistent Volume Manifest", pv)
		if err := ctx.Kube.Apply(ctx, "persistent volume", pv); err != nil {
			return err
		}

		pvc, err := kube.StaticPersistentVolumeClaim(cfg.Storage)
		if err != nil {
			return fmt.Errorf("rendering volume claim: %w", err)
		}
		ctx.Out.YAML("Persistent Volume Claim Manifest", pvc)
		return ctx.Kube.Apply(ctx, "persistent volume claim", pvc)
	}

	pvc, err := kube.DynamicPersistentVolumeClaim(cfg.Storage)
	if err != nil {
		return fmt.Errorf("rendering volume claim: %w", err)
	}
	ctx.Out.YAML("Persistent Volume Claim Manifest", pvc)
	return ctx.Kube.Apply(ctx, "persistent volume claim", pvc)
}

// verificationStep runs the job that writes and reads a file on the mounted
// volume, then shows its logs.
type verificationStep struct{}

func (s *verificationStep) Name() string { return "Verification" }

func (s *verificationStep) Run(ctx *Context) error {
	cfg := ctx.Config

	manifest, err := kube.VerificationJob(cfg.Storage, cfg.Provision)
	if err != nil {
		return fmt.Errorf("rendering verification job: %w", err)
	}
	ctx.Out.YAML("Verification Job Manifest", manifest)
	if err := ctx.Kube.Apply(ctx, "verification job", manifest); err != nil {
		return err
	}

	name := kube.JobName(cfg.Storage, cfg.Provision)
	if err := ctx.Kube.WaitForJob(ctx, name, kube.JobTimeout(cfg.Provision)); err != nil {
		return err
	}

	logs, err := ctx.Kube.JobLogs(ctx, name)
	if err != nil {
		return err
	}
	ctx.Out.Panel("Job Output", logs)
	return nil
}
