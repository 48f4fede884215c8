package builder

import (
	"github.com/velero-ui/velero-ui/pkg/constants"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DeleteBackupRequestBuilder builds DeleteBackupRequest objects.
type DeleteBackupRequestBuilder struct {
	object *velerov1.DeleteBackupRequest
}

// ForDeleteBackupRequest is the constructor for a DeleteBackupRequestBuilder
// targeting the given backup. The request is named after the backup.
func ForDeleteBackupRequest(ns, backupName string) *DeleteBackupRequestBuilder {
	return &DeleteBackupRequestBuilder{
		object: &velerov1.DeleteBackupRequest{
			TypeMeta: metav1.TypeMeta{
				APIVersion: velerov1.SchemeGroupVersion.String(),
				Kind:       "DeleteBackupRequest",
			},
			ObjectMeta: metav1.ObjectMeta{
				Namespace: ns,
				Name:      backupName + constants.DeleteRequestSuffix,
				Labels: map[string]string{
					velerov1.BackupNameLabel: backupName,
				},
			},
			Spec: velerov1.DeleteBackupRequestSpec{
				BackupName: backupName,
			},
		},
	}
}

// Result returns the built DeleteBackupRequest.
func (b *DeleteBackupRequestBuilder) Result() *velerov1.DeleteBackupRequest {
	return b.object
}
