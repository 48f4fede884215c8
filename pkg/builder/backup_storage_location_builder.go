package builder

import (
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BackupStorageLocationBuilder builds BackupStorageLocation objects.
type BackupStorageLocationBuilder struct {
	object *velerov1.BackupStorageLocation
}

// ForBackupStorageLocation is the constructor for a BackupStorageLocationBuilder.
func ForBackupStorageLocation(ns, name string) *BackupStorageLocationBuilder {
	return &BackupStorageLocationBuilder{
		object: &velerov1.BackupStorageLocation{
			TypeMeta: metav1.TypeMeta{
				APIVersion: velerov1.SchemeGroupVersion.String(),
				Kind:       "BackupStorageLocation",
			},
			ObjectMeta: metav1.ObjectMeta{
				Namespace: ns,
				Name:      name,
			},
			Spec: velerov1.BackupStorageLocationSpec{
				StorageType: velerov1.StorageType{
					ObjectStorage: &velerov1.ObjectStorageLocation{},
				},
			},
		},
	}
}

// Result returns the built BackupStorageLocation.
func (b *BackupStorageLocationBuilder) Result() *velerov1.BackupStorageLocation {
	return b.object
}

// Provider sets the BackupStorageLocation's provider.
func (b *BackupStorageLocationBuilder) Provider(name string) *BackupStorageLocationBuilder {
	b.object.Spec.Provider = name
	return b
}

// Config sets the BackupStorageLocation's config.
func (b *BackupStorageLocationBuilder) Config(config map[string]string) *BackupStorageLocationBuilder {
	b.object.Spec.Config = config
	return b
}

// Bucket sets the BackupStorageLocation's object storage bucket.
func (b *BackupStorageLocationBuilder) Bucket(bucket string) *BackupStorageLocationBuilder {
	b.object.Spec.StorageType.ObjectStorage.Bucket = bucket
	return b
}

// Prefix sets the BackupStorageLocation's object storage prefix.
func (b *BackupStorageLocationBuilder) Prefix(prefix string) *BackupStorageLocationBuilder {
	b.object.Spec.StorageType.ObjectStorage.Prefix = prefix
	return b
}

// CACert sets the BackupStorageLocation's object storage CACert.
func (b *BackupStorageLocationBuilder) CACert(val []byte) *BackupStorageLocationBuilder {
	b.object.Spec.StorageType.ObjectStorage.CACert = val
	return b
}

// Credential sets the BackupStorageLocation's credential selector.
func (b *BackupStorageLocationBuilder) Credential(secretName, key string) *BackupStorageLocationBuilder {
	b.object.Spec.Credential = &corev1.SecretKeySelector{
		LocalObjectReference: corev1.LocalObjectReference{Name: secretName},
		Key:                  key,
	}
	return b
}
