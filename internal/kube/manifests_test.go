package kube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/danielscholl/aks-storage-poc/internal/config"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func dig(t *testing.T, doc map[string]any, path ...string) any {
	t.Helper()
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		require.True(t, ok, "expected map at %q", key)
		cur, ok = m[key]
		require.True(t, ok, "missing key %q", key)
	}
	return cur
}

func TestServiceAccountManifest(t *testing.T) {
	data, err := ServiceAccount("client-1234")
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "v1", doc["apiVersion"])
	assert.Equal(t, "ServiceAccount", doc["kind"])
	assert.Equal(t, "storage-sa", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "client-1234", dig(t, doc, "metadata", "annotations", "azure.workload.identity/client-id"))
}

func TestStaticBlobPersistentVolume(t *testing.T) {
	data, err := StaticPersistentVolume(VolumeParams{
		Storage:          config.StorageBlob,
		ResourceGroup:    "poc-a1b2c3-rg",
		StorageAccount:   "poca1b2c3sa",
		ContainerOrShare: "mycontainer",
		ClientID:         "client-1234",
	})
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "PersistentVolume", doc["kind"])
	assert.Equal(t, "blob-persistent-pv", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "blob.csi.azure.com", dig(t, doc, "metadata", "annotations", "pv.kubernetes.io/provisioned-by"))
	assert.Equal(t, "azureblob-fuse-premium", dig(t, doc, "spec", "storageClassName"))
	assert.Equal(t, "1Pi", dig(t, doc, "spec", "capacity", "storage"))
	assert.Equal(t, "Retain", dig(t, doc, "spec", "persistentVolumeReclaimPolicy"))

	assert.Equal(t, "blob.csi.azure.com", dig(t, doc, "spec", "csi", "driver"))
	assert.Equal(t, "poc-a1b2c3-rg#poca1b2c3sa#mycontainer", dig(t, doc, "spec", "csi", "volumeHandle"))
	assert.Equal(t, "fuse", dig(t, doc, "spec", "csi", "volumeAttributes", "protocol"))
	assert.Equal(t, "client-1234", dig(t, doc, "spec", "csi", "volumeAttributes", "clientID"))
	assert.Equal(t, "mycontainer", dig(t, doc, "spec", "csi", "volumeAttributes", "containerName"))

	mountOptions, ok := dig(t, doc, "spec", "mountOptions").([]any)
	require.True(t, ok)
	assert.Contains(t, mountOptions, "-o allow_other")
}

func TestStaticFilePersistentVolume(t *testing.T) {
	data, err := StaticPersistentVolume(VolumeParams{
		Storage:          config.StorageFile,
		ResourceGroup:    "poc-a1b2c3-rg",
		StorageAccount:   "poca1b2c3sa",
		ContainerOrShare: "myshare",
		ClientID:         "client-1234",
	})
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "file-persistent-pv", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "azurefile-csi", dig(t, doc, "spec", "storageClassName"))
	assert.Equal(t, "10Gi", dig(t, doc, "spec", "capacity", "storage"))
	assert.Equal(t, "file.csi.azure.com", dig(t, doc, "spec", "csi", "driver"))
	assert.Equal(t, "smb", dig(t, doc, "spec", "csi", "volumeAttributes", "protocol"))
	assert.Equal(t, "myshare", dig(t, doc, "spec", "csi", "volumeAttributes", "shareName"))

	mountOptions, ok := dig(t, doc, "spec", "mountOptions").([]any)
	require.True(t, ok)
	assert.Contains(t, mountOptions, "vers=3.0")
}

func TestStaticClaimBindsToVolume(t *testing.T) {
	data, err := StaticPersistentVolumeClaim(config.StorageBlob)
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "blob-persistent-pvc", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "blob-persistent-pv", dig(t, doc, "spec", "volumeName"))
	assert.Equal(t, "azureblob-fuse-premium", dig(t, doc, "spec", "storageClassName"))
	assert.Equal(t, "5Gi", dig(t, doc, "spec", "resources", "requests", "storage"))
}

func TestDynamicClaimHasNoVolumeName(t *testing.T) {
	data, err := DynamicPersistentVolumeClaim(config.StorageFile)
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "file-dynamic-pvc", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "azurefile-csi", dig(t, doc, "spec", "storageClassName"))
	assert.Equal(t, "5Gi", dig(t, doc, "spec", "resources", "requests", "storage"))

	spec, ok := dig(t, doc, "spec").(map[string]any)
	require.True(t, ok)
	_, hasVolumeName := spec["volumeName"]
	assert.False(t, hasVolumeName)
}

func TestVerificationJob(t *testing.T) {
	data, err := VerificationJob(config.StorageBlob, config.ProvisionPersistent)
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "batch/v1", doc["apiVersion"])
	assert.Equal(t, "Job", doc["kind"])
	assert.Equal(t, "static-blob-creator", dig(t, doc, "metadata", "name"))
	assert.Equal(t, "storage-sa", dig(t, doc, "spec", "template", "spec", "serviceAccountName"))
	assert.Equal(t, "Never", dig(t, doc, "spec", "template", "spec", "restartPolicy"))

	containers, ok := dig(t, doc, "spec", "template", "spec", "containers").([]any)
	require.True(t, ok)
	require.Len(t, containers, 1)
	container := containers[0].(map[string]any)
	assert.Equal(t, "blob-creator", container["name"])
	assert.Equal(t, "mcr.microsoft.com/azure-cli", container["image"])

	args := container["args"].([]any)
	require.Len(t, args, 1)
	script := args[0].(string)
	assert.Contains(t, script, "Hello from static provisioning on Blob Storage")
	assert.Contains(t, script, "/mnt/static/test.txt")
}

func TestVerificationJobDynamicFile(t *testing.T) {
	data, err := VerificationJob(config.StorageFile, config.ProvisionDynamic)
	require.NoError(t, err)

	doc := decode(t, data)
	assert.Equal(t, "dynamic-file-creator", dig(t, doc, "metadata", "name"))

	volumes, ok := dig(t, doc, "spec", "template", "spec", "volumes").([]any)
	require.True(t, ok)
	require.Len(t, volumes, 1)
	volume := volumes[0].(map[string]any)
	claim := volume["persistentVolumeClaim"].(map[string]any)
	assert.Equal(t, "file-dynamic-pvc", claim["claimName"])

	containers := dig(t, doc, "spec", "template", "spec", "containers").([]any)
	script := containers[0].(map[string]any)["args"].([]any)[0].(string)
	assert.Contains(t, script, "Hello from dynamic provisioning on Azure Files")
	assert.Contains(t, script, "/mnt/dynamic/test.txt")
}

func TestJobNames(t *testing.T) {
	assert.Equal(t, "static-blob-creator", JobName(config.StorageBlob, config.ProvisionPersistent))
	assert.Equal(t, "dynamic-blob-creator", JobName(config.StorageBlob, config.ProvisionDynamic))
	assert.Equal(t, "static-file-creator", JobName(config.StorageFile, config.ProvisionPersistent))
	assert.Equal(t, "dynamic-file-creator", JobName(config.StorageFile, config.ProvisionDynamic))
}

func TestJobTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, JobTimeout(config.ProvisionPersistent))
	assert.Equal(t, 120*time.Second, JobTimeout(config.ProvisionDynamic))
}
