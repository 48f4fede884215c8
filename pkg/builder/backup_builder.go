package builder

import (
	"time"

	"github.com/velero-ui/velero-ui/pkg/constants"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/pointer"
)

// BackupBuilder builds Backup objects.
type BackupBuilder struct {
	object *velerov1.Backup
}

// ForBackup is the constructor for a BackupBuilder.
func ForBackup(ns, name string) *BackupBuilder {
	return &BackupBuilder{
		object: &velerov1.Backup{
			TypeMeta: metav1.TypeMeta{
				APIVersion: velerov1.SchemeGroupVersion.String(),
				Kind:       "Backup",
			},
			ObjectMeta: metav1.ObjectMeta{
				Namespace: ns,
				Name:      name,
			},
		},
	}
}

// Result returns the built Backup.
func (b *BackupBuilder) Result() *velerov1.Backup {
	return b.object
}

// IncludedNamespaces sets the Backup's included namespaces.
func (b *BackupBuilder) IncludedNamespaces(namespaces ...string) *BackupBuilder {
	b.object.Spec.IncludedNamespaces = append(b.object.Spec.IncludedNamespaces, namespaces...)
	return b
}

// TTL sets the Backup's TTL. A zero TTL leaves the controller default in place.
func (b *BackupBuilder) TTL(ttl time.Duration) *BackupBuilder {
	b.object.Spec.TTL.Duration = ttl
	return b
}

// StorageLocation sets the Backup's storage location.
func (b *BackupBuilder) StorageLocation(location string) *BackupBuilder {
	b.object.Spec.StorageLocation = location
	return b
}

// DefaultVolumesToFsBackup sets the Backup's "DefaultVolumesToFsBackup" flag.
func (b *BackupBuilder) DefaultVolumesToFsBackup(val bool) *BackupBuilder {
	b.object.Spec.DefaultVolumesToFsBackup = pointer.Bool(val)
	return b
}

// MatchLabels sets the Backup's label selector. Empty labels leave the selector unset.
func (b *BackupBuilder) MatchLabels(labels map[string]string) *BackupBuilder {
	if len(labels) > 0 {
		b.object.Spec.LabelSelector = &metav1.LabelSelector{MatchLabels: labels}
	}
	return b
}

// Phase sets the Backup's phase.
func (b *BackupBuilder) Phase(phase velerov1.BackupPhase) *BackupBuilder {
	b.object.Status.Phase = phase
	return b
}

// ForDefaultLocation applies the settings every backup created through the UI carries.
func (b *BackupBuilder) ForDefaultLocation() *BackupBuilder {
	return b.StorageLocation(constants.DefaultS3BackupLocation).DefaultVolumesToFsBackup(true)
}
