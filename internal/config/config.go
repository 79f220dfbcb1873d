// Package config resolves command-line flags into an immutable run
// configuration: storage/provisioning variants, derived Azure resource
// names, the shared-key policy and the set of use cases to run.
package config

import (
	"fmt"
	"strings"

	"github.com/danielscholl/aks-storage-poc/internal/util/naming"
)

// StorageKind selects the Azure storage service backing the volume.
type StorageKind string

const (
	StorageBlob StorageKind = "Blob"
	StorageFile StorageKind = "File"
)

// ProvisionKind selects how the Kubernetes volume is provisioned.
type ProvisionKind string

const (
	// ProvisionPersistent is static provisioning: the volume exists
	// out-of-band and is bound via a pre-declared PersistentVolume.
	ProvisionPersistent ProvisionKind = "Persistent"

	// ProvisionDynamic lets the CSI driver create the backing volume on
	// demand from a claim.
	ProvisionDynamic ProvisionKind = "Dynamic"
)

// ParseStorageKind parses a --storage flag value. Empty input is valid and
// means "not pinned".
func ParseStorageKind(s string) (StorageKind, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "blob":
		return StorageBlob, nil
	case "file":
		return StorageFile, nil
	}
	return "", fmt.Errorf("invalid storage type %q (expected Blob or File)", s)
}

// ParseProvisionKind parses a --provision flag value. Empty input is valid
// and means "not pinned".
func ParseProvisionKind(s string) (ProvisionKind, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "persistent":
		return ProvisionPersistent, nil
	case "dynamic":
		return ProvisionDynamic, nil
	}
	return "", fmt.Errorf("invalid provision type %q (expected Persistent or Dynamic)", s)
}

// Defaults applied when flags are omitted.
const (
	DefaultGroup    = "aks-storage-poc"
	DefaultLocation = "centralus"

	// Names of the objects created inside the storage account.
	BlobContainerName = "mycontainer"
	FileShareName     = "myshare"
)

// Config is the immutable per-run configuration record. Derived names are
// computed once at construction and never change afterwards.
type Config struct {
	Group     string
	Storage   StorageKind
	Provision ProvisionKind
	Location  string
	UniqueID  string

	ResourceGroup  string
	StorageAccount string
	IdentityName   string
	ClusterName    string

	// AllowSharedKeyAccess records whether the storage account permits
	// shared-key authentication. Defaults to false only for Blob storage
	// with static provisioning, the one keyless-eligible combination.
	AllowSharedKeyAccess bool
}

// Params carries optional overrides for NewConfig. Zero values mean
// "derive".
type Params struct {
	Group          string
	Storage        StorageKind
	Provision      ProvisionKind
	Location       string
	UniqueID       string
	ResourceGroup  string
	StorageAccount string

	// AllowSharedKeyAccess overrides the computed default when non-nil.
	AllowSharedKeyAccess *bool
}

// NewConfig builds a Config, generating the unique identifier and deriving
// resource names for anything not explicitly supplied.
func NewConfig(p Params) *Config {
	cfg := &Config{
		Group:     p.Group,
		Storage:   p.Storage,
		Provision: p.Provision,
		Location:  p.Location,
		UniqueID:  p.UniqueID,
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.Storage == "" {
		cfg.Storage = StorageBlob
	}
	if cfg.Provision == "" {
		cfg.Provision = ProvisionPersistent
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if cfg.UniqueID == "" {
		cfg.UniqueID = naming.UniqueID()
	}

	cfg.ResourceGroup = p.ResourceGroup
	if cfg.ResourceGroup == "" {
		cfg.ResourceGroup = naming.ResourceGroup(cfg.Group, cfg.UniqueID)
	}
	cfg.StorageAccount = p.StorageAccount
	if cfg.StorageAccount == "" {
		cfg.StorageAccount = naming.StorageAccount(cfg.Group, cfg.UniqueID)
	}
	cfg.IdentityName = naming.Identity(cfg.Group, cfg.UniqueID)
	cfg.ClusterName = naming.Cluster(cfg.Group, cfg.UniqueID)

	if p.AllowSharedKeyAccess != nil {
		cfg.AllowSharedKeyAccess = *p.AllowSharedKeyAccess
	} else {
		// Azure Files and dynamic Blob provisioning require shared key
		// access; only Blob+Persistent can run keyless.
		cfg.AllowSharedKeyAccess = !(cfg.Storage == StorageBlob && cfg.Provision == ProvisionPersistent)
	}

	return cfg
}

// ContainerOrShare returns the blob container or file share name for the
// configured storage kind.
func (c *Config) ContainerOrShare() string {
	if c.Storage == StorageBlob {
		return BlobContainerName
	}
	return FileShareName
}

// KeylessSupported reports whether a combination supports fully keyless
// access: true iff Blob storage, static provisioning, and shared-key access
// disabled.
func KeylessSupported(storage StorageKind, provision ProvisionKind, allowSharedKey bool) bool {
	return storage == StorageBlob && provision == ProvisionPersistent && !allowSharedKey
}
