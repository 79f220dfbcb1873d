package kube

import (
	"fmt"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/danielscholl/aks-storage-poc/internal/config"
)

// Workload identity wiring. The federated credential subject must match the
// service account's namespace and name exactly.
const (
	ServiceAccountName      = "storage-sa"
	FederatedCredentialName = "storage-credential"
	ServiceAccountSubject   = "system:serviceaccount:default:" + ServiceAccountName

	clientIDAnnotation = "azure.workload.identity/client-id"
	provisionedByAnno  = "pv.kubernetes.io/provisioned-by"
)

// CSI drivers and their storage classes.
const (
	BlobCSIDriver = "blob.csi.azure.com"
	FileCSIDriver = "file.csi.azure.com"

	blobStorageClass = "azureblob-fuse-premium"
	fileStorageClass = "azurefile-csi"
)

const verificationImage = "mcr.microsoft.com/azure-cli"

// VolumeParams carries the per-run values interpolated into volume
// manifests.
type VolumeParams struct {
	Storage          config.StorageKind
	ResourceGroup    string
	StorageAccount   string
	ContainerOrShare string
	ClientID         string
}

// PVName returns the static persistent volume name for a storage kind.
func PVName(storage config.StorageKind) string {
	return fmt.Sprintf("%s-persistent-pv", kindToken(storage))
}

// PVCName returns the claim name for a combination.
func PVCName(storage config.StorageKind, provision config.ProvisionKind) string {
	return fmt.Sprintf("%s-%s-pvc", kindToken(storage), provisionToken(provision))
}

// JobName returns the verification job name for a combination, e.g.
// "static-blob-creator".
func JobName(storage config.StorageKind, provision config.ProvisionKind) string {
	mode := "static"
	if provision == config.ProvisionDynamic {
		mode = "dynamic"
	}
	return fmt.Sprintf("%s-%s-creator", mode, kindToken(storage))
}

func kindToken(storage config.StorageKind) string {
	if storage == config.StorageBlob {
		return "blob"
	}
	return "file"
}

func provisionToken(provision config.ProvisionKind) string {
	if provision == config.ProvisionDynamic {
		return "dynamic"
	}
	return "persistent"
}

func storageClass(storage config.StorageKind) string {
	if storage == config.StorageBlob {
		return blobStorageClass
	}
	return fileStorageClass
}

func csiDriver(storage config.StorageKind) string {
	if storage == config.StorageBlob {
		return BlobCSIDriver
	}
	return FileCSIDriver
}

// ServiceAccount renders the workload-identity service account annotated
// with the managed identity's client id.
func ServiceAccount(clientID string) ([]byte, error) {
	sa := corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name: ServiceAccountName,
			Annotations: map[string]string{
				clientIDAnnotation: clientID,
			},
		},
	}
	return yaml.Marshal(&sa)
}

// StaticPersistentVolume renders the pre-declared volume pointing at an
// existing container or share. The volume handle is the CSI driver's
// `<resource-group>#<account>#<container>` triple.
func StaticPersistentVolume(p VolumeParams) ([]byte, error) {
	var (
		capacity     resource.Quantity
		mountOptions []string
		attributes   map[string]string
	)

	if p.Storage == config.StorageBlob {
		capacity = resource.MustParse("1Pi")
		mountOptions = []string{
			"-o allow_other",
			"--file-cache-timeout-in-seconds=120",
			"--use-attr-cache=true",
			"--cancel-list-on-mount-seconds=0",
			"--log-level=LOG_DEBUG",
		}
		attributes = map[string]string{
			"storageaccount": p.StorageAccount,
			"containerName":  p.ContainerOrShare,
			"clientID":       p.ClientID,
			"resourcegroup":  p.ResourceGroup,
			"protocol":       "fuse",
		}
	} else {
		capacity = resource.MustParse("10Gi")
		mountOptions = []string{
			"dir_mode=0777",
			"file_mode=0777",
			"uid=0",
			"gid=0",
			"mfsymlinks",
			"cache=strict",
			"nosharesock",
			"vers=3.0",
			"actimeo=30",
			"noperm",
			"serverino",
		}
		attributes = map[string]string{
			"storageaccount": p.StorageAccount,
			"shareName":      p.ContainerOrShare,
			"clientID":       p.ClientID,
			"resourcegroup":  p.ResourceGroup,
			"protocol":       "smb",
		}
	}

	pv := corev1.PersistentVolume{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolume"},
		ObjectMeta: metav1.ObjectMeta{
			Name: PVName(p.Storage),
			Annotations: map[string]string{
				provisionedByAnno: csiDriver(p.Storage),
			},
		},
		Spec: corev1.PersistentVolumeSpec{
			Capacity: corev1.ResourceList{
				corev1.ResourceStorage: capacity,
			},
			AccessModes:                   []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			PersistentVolumeReclaimPolicy: corev1.PersistentVolumeReclaimRetain,
			StorageClassName:              storageClass(p.Storage),
			MountOptions:                  mountOptions,
			PersistentVolumeSource: corev1.PersistentVolumeSource{
				CSI: &corev1.CSIPersistentVolumeSource{
					Driver:           csiDriver(p.Storage),
					VolumeHandle:     fmt.Sprintf("%s#%s#%s", p.ResourceGroup, p.StorageAccount, p.ContainerOrShare),
					VolumeAttributes: attributes,
				},
			},
		},
	}
	return yaml.Marshal(&pv)
}

// StaticPersistentVolumeClaim renders the claim bound to the static volume.
func StaticPersistentVolumeClaim(storage config.StorageKind) ([]byte, error) {
	request := "5Gi"
	if storage == config.StorageFile {
		request = "10Gi"
	}
	class := storageClass(storage)

	pvc := corev1.PersistentVolumeClaim{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
		ObjectMeta: metav1.ObjectMeta{
			Name: PVCName(storage, config.ProvisionPersistent),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(request),
				},
			},
			VolumeName:       PVName(storage),
			StorageClassName: &class,
		},
	}
	return yaml.Marshal(&pvc)
}

// DynamicPersistentVolumeClaim renders a claim that lets the storage class
// provision the backing volume on demand.
func DynamicPersistentVolumeClaim(storage config.StorageKind) ([]byte, error) {
	class := storageClass(storage)

	pvc := corev1.PersistentVolumeClaim{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "PersistentVolumeClaim"},
		ObjectMeta: metav1.ObjectMeta{
			Name: PVCName(storage, config.ProvisionDynamic),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteMany},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse("5Gi"),
				},
			},
			StorageClassName: &class,
		},
	}
	return yaml.Marshal(&pvc)
}

// VerificationJob renders the job that writes and reads back a file on the
// mounted volume, proving the storage path end to end.
func VerificationJob(storage config.StorageKind, provision config.ProvisionKind) ([]byte, error) {
	mode := provisionMode(provision)
	mountPath := "/mnt/" + mode

	storageLabel := "Blob Storage"
	if storage == config.StorageFile {
		storageLabel = "Azure Files"
	}
	script := fmt.Sprintf(
		"echo \"Hello from %s provisioning on %s\" > %s/test.txt\nls -l %s/test.txt\ncat %s/test.txt\n",
		mode, storageLabel, mountPath, mountPath, mountPath)

	job := batchv1.Job{
		TypeMeta: metav1.TypeMeta{APIVersion: "batch/v1", Kind: "Job"},
		ObjectMeta: metav1.ObjectMeta{
			Name: JobName(storage, provision),
		},
		Spec: batchv1.JobSpec{
			Template: corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					ServiceAccountName: ServiceAccountName,
					RestartPolicy:      corev1.RestartPolicyNever,
					Containers: []corev1.Container{
						{
							Name:    fmt.Sprintf("%s-creator", kindToken(storage)),
							Image:   verificationImage,
							Command: []string{"/bin/bash", "-c"},
							Args:    []string{script},
							VolumeMounts: []corev1.VolumeMount{
								{Name: mode, MountPath: mountPath},
							},
						},
					},
					Volumes: []corev1.Volume{
						{
							Name: mode,
							VolumeSource: corev1.VolumeSource{
								PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
									ClaimName: PVCName(storage, provision),
								},
							},
						},
					},
				},
			},
		},
	}
	return yaml.Marshal(&job)
}

func provisionMode(provision config.ProvisionKind) string {
	if provision == config.ProvisionDynamic {
		return "dynamic"
	}
	return "static"
}

// JobTimeout returns the wait timeout for a provisioning kind.
func JobTimeout(provision config.ProvisionKind) time.Duration {
	if provision == config.ProvisionDynamic {
		return DynamicJobTimeout
	}
	return StaticJobTimeout
}
