package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBothPinnedRunsSingleCase(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", Storage: StorageBlob, Provision: ProvisionPersistent, UniqueID: "a1b2c3"})
	require.NoError(t, err)

	assert.True(t, plan.SingleCase)
	require.Len(t, plan.Cases, 1)
	assert.Equal(t, UseCase{StorageBlob, ProvisionPersistent}, plan.Cases[0])
}

func TestResolveNothingPinnedRunsAllFour(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", UniqueID: "a1b2c3"})
	require.NoError(t, err)

	assert.False(t, plan.SingleCase)
	require.Len(t, plan.Cases, 4)
	assert.Equal(t, "Blob-Static", plan.Cases[0].Name())
	assert.Equal(t, "Blob-Dynamic", plan.Cases[1].Name())
	assert.Equal(t, "File-Static", plan.Cases[2].Name())
	assert.Equal(t, "File-Dynamic", plan.Cases[3].Name())
}

func TestResolveStoragePinnedRunsBothProvisionKinds(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", Storage: StorageFile, UniqueID: "a1b2c3"})
	require.NoError(t, err)

	require.Len(t, plan.Cases, 2)
	for _, c := range plan.Cases {
		assert.Equal(t, StorageFile, c.Storage)
	}
	assert.NotEqual(t, plan.Cases[0].Provision, plan.Cases[1].Provision)
}

func TestResolveProvisionPinnedRunsBothStorageKinds(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", Provision: ProvisionDynamic, UniqueID: "a1b2c3"})
	require.NoError(t, err)

	require.Len(t, plan.Cases, 2)
	for _, c := range plan.Cases {
		assert.Equal(t, ProvisionDynamic, c.Provision)
	}
	assert.NotEqual(t, plan.Cases[0].Storage, plan.Cases[1].Storage)
}

func TestResolveDisableSharedKeyForcesBlobStatic(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", DisableSharedKey: true, UniqueID: "a1b2c3"})
	require.NoError(t, err)

	assert.True(t, plan.SingleCase)
	require.Len(t, plan.Cases, 1)
	assert.Equal(t, UseCase{StorageBlob, ProvisionPersistent}, plan.Cases[0])
	assert.False(t, plan.Base.AllowSharedKeyAccess)
}

func TestResolveDisableSharedKeyRejectsConflicts(t *testing.T) {
	_, err := Resolve(Options{Group: "poc", DisableSharedKey: true, Storage: StorageFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Blob")

	_, err = Resolve(Options{Group: "poc", DisableSharedKey: true, Provision: ProvisionDynamic})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Persistent")
}

func TestResolveDefaultSharedKeyEnabledWithoutFlag(t *testing.T) {
	// The explicit run-level setting wins over the Blob+Persistent computed
	// default: without --disable-shared-key, shared keys stay enabled.
	plan, err := Resolve(Options{Group: "poc", Storage: StorageBlob, Provision: ProvisionPersistent, UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.True(t, plan.Base.AllowSharedKeyAccess)
}

func TestNeedsStorageAccount(t *testing.T) {
	static, err := Resolve(Options{Group: "poc", Provision: ProvisionPersistent, UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.True(t, static.NeedsStorageAccount())

	dynamic, err := Resolve(Options{Group: "poc", Provision: ProvisionDynamic, UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.False(t, dynamic.NeedsStorageAccount())

	all, err := Resolve(Options{Group: "poc", UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.True(t, all.NeedsStorageAccount())
}

func TestCaseConfigInheritsSharedInfrastructure(t *testing.T) {
	plan, err := Resolve(Options{Group: "poc", UniqueID: "a1b2c3"})
	require.NoError(t, err)

	for _, c := range plan.Cases {
		cfg := plan.CaseConfig(c)
		assert.Equal(t, plan.Base.ResourceGroup, cfg.ResourceGroup)
		assert.Equal(t, plan.Base.StorageAccount, cfg.StorageAccount)
		assert.Equal(t, plan.Base.UniqueID, cfg.UniqueID)
		assert.Equal(t, plan.Base.ClusterName, cfg.ClusterName)
		assert.Equal(t, plan.Base.AllowSharedKeyAccess, cfg.AllowSharedKeyAccess)
		assert.Equal(t, c.Storage, cfg.Storage)
		assert.Equal(t, c.Provision, cfg.Provision)
	}
}

func TestTagArgs(t *testing.T) {
	all, err := Resolve(Options{Group: "poc", UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"UseCase1=Blob Storage with Static Provisioning",
		"UseCase2=Blob Storage with Dynamic Provisioning",
		"UseCase3=File Storage with Static Provisioning",
		"UseCase4=File Storage with Dynamic Provisioning",
	}, all.TagArgs())

	keyless, err := Resolve(Options{Group: "poc", DisableSharedKey: true, UniqueID: "a1b2c3"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"UseCase1=Blob Storage with Static Provisioning",
		"KeyAccess=disabled",
	}, keyless.TagArgs())
}
