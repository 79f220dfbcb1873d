package config

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStorageKind(t *testing.T) {
	tests := []struct {
		in      string
		want    StorageKind
		wantErr bool
	}{
		{"", "", false},
		{"Blob", StorageBlob, false},
		{"blob", StorageBlob, false},
		{"FILE", StorageFile, false},
		{"disk", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStorageKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseProvisionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    ProvisionKind
		wantErr bool
	}{
		{"", "", false},
		{"Persistent", ProvisionPersistent, false},
		{"dynamic", ProvisionDynamic, false},
		{"static", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProvisionKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDerivedNamesAreDeterministic(t *testing.T) {
	for _, storage := range []StorageKind{StorageBlob, StorageFile} {
		for _, provision := range []ProvisionKind{ProvisionPersistent, ProvisionDynamic} {
			a := NewConfig(Params{Group: "poc", Storage: storage, Provision: provision, UniqueID: "a1b2c3"})
			b := NewConfig(Params{Group: "poc", Storage: storage, Provision: provision, UniqueID: "a1b2c3"})
			assert.Equal(t, a.ResourceGroup, b.ResourceGroup)
			assert.Equal(t, a.StorageAccount, b.StorageAccount)
			assert.Equal(t, a.IdentityName, b.IdentityName)
			assert.Equal(t, a.ClusterName, b.ClusterName)

			assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{1,24}$`), a.StorageAccount)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig(Params{Group: "poc", UniqueID: "a1b2c3"})

	assert.Equal(t, StorageBlob, cfg.Storage)
	assert.Equal(t, ProvisionPersistent, cfg.Provision)
	assert.Equal(t, "centralus", cfg.Location)
	assert.Equal(t, "poc-a1b2c3-rg", cfg.ResourceGroup)
	assert.Equal(t, "poca1b2c3sa", cfg.StorageAccount)
	assert.Equal(t, "poc-a1b2c3-identity", cfg.IdentityName)
	assert.Equal(t, "poc-a1b2c3-aks", cfg.ClusterName)

	// Blob+Persistent is the keyless-eligible case, so shared-key access
	// defaults to disabled.
	assert.False(t, cfg.AllowSharedKeyAccess)
}

func TestSharedKeyDefaultPerCombination(t *testing.T) {
	tests := []struct {
		storage   StorageKind
		provision ProvisionKind
		allow     bool
	}{
		{StorageBlob, ProvisionPersistent, false},
		{StorageBlob, ProvisionDynamic, true},
		{StorageFile, ProvisionPersistent, true},
		{StorageFile, ProvisionDynamic, true},
	}
	for _, tt := range tests {
		cfg := NewConfig(Params{Group: "poc", Storage: tt.storage, Provision: tt.provision, UniqueID: "a1b2c3"})
		assert.Equal(t, tt.allow, cfg.AllowSharedKeyAccess, "%s/%s", tt.storage, tt.provision)
	}
}

func TestSharedKeyExplicitOverride(t *testing.T) {
	allow := true
	cfg := NewConfig(Params{Group: "poc", Storage: StorageBlob, Provision: ProvisionPersistent, UniqueID: "a1b2c3", AllowSharedKeyAccess: &allow})
	assert.True(t, cfg.AllowSharedKeyAccess)
}

func TestUniqueIDGeneratedWhenUnset(t *testing.T) {
	cfg := NewConfig(Params{Group: "poc"})
	assert.Regexp(t, regexp.MustCompile(`^[a-z0-9]{6}$`), cfg.UniqueID)
}

func TestKeylessSupported(t *testing.T) {
	assert.True(t, KeylessSupported(StorageBlob, ProvisionPersistent, false))

	assert.False(t, KeylessSupported(StorageBlob, ProvisionPersistent, true))
	assert.False(t, KeylessSupported(StorageBlob, ProvisionDynamic, false))
	assert.False(t, KeylessSupported(StorageFile, ProvisionPersistent, false))
	assert.False(t, KeylessSupported(StorageFile, ProvisionDynamic, true))
}

func TestContainerOrShare(t *testing.T) {
	blob := NewConfig(Params{Group: "poc", Storage: StorageBlob, UniqueID: "a1b2c3"})
	file := NewConfig(Params{Group: "poc", Storage: StorageFile, Provision: ProvisionDynamic, UniqueID: "a1b2c3"})
	assert.Equal(t, "mycontainer", blob.ContainerOrShare())
	assert.Equal(t, "myshare", file.ContainerOrShare())
}
