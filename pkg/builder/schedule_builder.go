package builder

import (
	"time"

	"github.com/velero-ui/velero-ui/pkg/constants"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/pointer"
)

// ScheduleBuilder builds Schedule objects.
type ScheduleBuilder struct {
	object *velerov1.Schedule
}

// ForSchedule is the constructor for a ScheduleBuilder.
func ForSchedule(ns, name string) *ScheduleBuilder {
	return &ScheduleBuilder{
		object: &velerov1.Schedule{
			TypeMeta: metav1.TypeMeta{
				APIVersion: velerov1.SchemeGroupVersion.String(),
				Kind:       "Schedule",
			},
			ObjectMeta: metav1.ObjectMeta{
				Namespace: ns,
				Name:      name,
			},
		},
	}
}

// Result returns the built Schedule.
func (b *ScheduleBuilder) Result() *velerov1.Schedule {
	return b.object
}

// CronSchedule sets the Schedule's cron expression.
func (b *ScheduleBuilder) CronSchedule(expression string) *ScheduleBuilder {
	b.object.Spec.Schedule = expression
	return b
}

// IncludedNamespaces sets the included namespaces of the Schedule's backup template.
func (b *ScheduleBuilder) IncludedNamespaces(namespaces ...string) *ScheduleBuilder {
	b.object.Spec.Template.IncludedNamespaces = append(b.object.Spec.Template.IncludedNamespaces, namespaces...)
	return b
}

// TTL sets the TTL of the Schedule's backup template.
func (b *ScheduleBuilder) TTL(ttl time.Duration) *ScheduleBuilder {
	b.object.Spec.Template.TTL.Duration = ttl
	return b
}

// MatchLabels sets the label selector of the Schedule's backup template.
func (b *ScheduleBuilder) MatchLabels(labels map[string]string) *ScheduleBuilder {
	if len(labels) > 0 {
		b.object.Spec.Template.LabelSelector = &metav1.LabelSelector{MatchLabels: labels}
	}
	return b
}

// ForDefaultLocation applies the settings every backup template created through the UI carries.
func (b *ScheduleBuilder) ForDefaultLocation() *ScheduleBuilder {
	b.object.Spec.Template.StorageLocation = constants.DefaultS3BackupLocation
	b.object.Spec.Template.DefaultVolumesToFsBackup = pointer.Bool(true)
	return b
}
