package builder

import (
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/pointer"
)

// RestoreBuilder builds Restore objects.
type RestoreBuilder struct {
	object *velerov1.Restore
}

// ForRestore is the constructor for a RestoreBuilder.
func ForRestore(ns, name string) *RestoreBuilder {
	return &RestoreBuilder{
		object: &velerov1.Restore{
			TypeMeta: metav1.TypeMeta{
				APIVersion: velerov1.SchemeGroupVersion.String(),
				Kind:       "Restore",
			},
			ObjectMeta: metav1.ObjectMeta{
				Namespace: ns,
				Name:      name,
			},
		},
	}
}

// Result returns the built Restore.
func (b *RestoreBuilder) Result() *velerov1.Restore {
	return b.object
}

// Backup sets the Restore's backup name.
func (b *RestoreBuilder) Backup(name string) *RestoreBuilder {
	b.object.Spec.BackupName = name
	return b
}

// Schedule sets the Restore's schedule name. Velero restores from the most
// recent successful backup of the schedule.
func (b *RestoreBuilder) Schedule(name string) *RestoreBuilder {
	b.object.Spec.ScheduleName = name
	return b
}

// RestorePVs sets the Restore's restore PVs.
func (b *RestoreBuilder) RestorePVs(val bool) *RestoreBuilder {
	b.object.Spec.RestorePVs = pointer.Bool(val)
	return b
}

// Phase sets the Restore's phase.
func (b *RestoreBuilder) Phase(phase velerov1.RestorePhase) *RestoreBuilder {
	b.object.Status.Phase = phase
	return b
}
