/*
Copyright 2020 the Velero contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package storagelocation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/constants"
	"github.com/velero-ui/velero-ui/pkg/utils"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Reason names the step at which resolution failed.
type Reason string

const (
	NoStorageConfigured  Reason = "NoStorageConfigured"
	BackupNotFound       Reason = "BackupNotFound"
	LocationNotFound     Reason = "LocationNotFound"
	UnsupportedBackend   Reason = "UnsupportedBackend"
	NoCredential         Reason = "NoCredential"
	CredentialUnreadable Reason = "CredentialUnreadable"
	RemoteFailure        Reason = "RemoteFailure"
)

type ResolutionError struct {
	Reason Reason
	errMsg string
	cause  error
}

func (this *ResolutionError) Error() string {
	if this.cause != nil {
		return fmt.Sprintf("%s: %s: %v", this.Reason, this.errMsg, this.cause)
	}
	return fmt.Sprintf("%s: %s", this.Reason, this.errMsg)
}

func (this *ResolutionError) Cause() error {
	return this.cause
}

func (this *ResolutionError) Unwrap() error {
	return this.cause
}

func newResolutionError(reason Reason, cause error, format string, args ...interface{}) *ResolutionError {
	return &ResolutionError{
		Reason: reason,
		errMsg: fmt.Sprintf(format, args...),
		cause:  cause,
	}
}

// IsReason reports whether err is a ResolutionError with the given reason.
func IsReason(err error, reason Reason) bool {
	resErr, ok := err.(*ResolutionError)
	return ok && resErr.Reason == reason
}

// Location is the object storage a backup was written to, with the credentials to read it.
type Location struct {
	Name                  string
	Endpoint              string
	Bucket                string
	Prefix                string
	Region                string
	S3ForcePathStyle      bool
	InsecureSkipTLSVerify bool
	CACert                []byte
	AccessKey             string
	SecretKey             string
}

// Resolver finds the storage location and credentials of a backup. Nothing is cached.
type Resolver struct {
	logrus.FieldLogger
	accessor   *accessor.Accessor
	kubeClient kubernetes.Interface
}

func NewResolver(accessor *accessor.Accessor, kubeClient kubernetes.Interface, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		FieldLogger: logger,
		accessor:    accessor,
		kubeClient:  kubeClient,
	}
}

// Resolve returns the location of the named backup. Every failure is a *ResolutionError.
func (this *Resolver) Resolve(ctx context.Context, backupName string) (*Location, error) {
	log := this.WithField("backup", backupName)

	locations, err := this.accessor.ListBackupStorageLocations(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list backup storage locations")
		return nil, newResolutionError(RemoteFailure, err, "failed to list backup storage locations")
	}
	if len(locations) == 0 {
		log.Error("No backup storage location is configured")
		return nil, newResolutionError(NoStorageConfigured, nil, "no backup storage location is configured")
	}

	backup, err := this.accessor.GetBackup(ctx, backupName)
	if err != nil {
		if apierrors.IsNotFound(err) {
			log.WithError(err).Error("Backup not found")
			return nil, newResolutionError(BackupNotFound, err, "backup %s not found", backupName)
		}
		log.WithError(err).Error("Failed to get backup")
		return nil, newResolutionError(RemoteFailure, err, "failed to get backup %s", backupName)
	}

	bsl := matchLocation(locations, backup.Spec.StorageLocation)
	if bsl == nil {
		log.Errorf("Backup storage location %q not found", backup.Spec.StorageLocation)
		return nil, newResolutionError(LocationNotFound, nil, "backup storage location %q of backup %s not found",
			backup.Spec.StorageLocation, backupName)
	}
	log = log.WithField("location", bsl.Name)

	location, err := locationFromBSL(bsl)
	if err != nil {
		log.WithError(err).Error("Backup storage location is not supported")
		return nil, err
	}

	secretName, secretKey, err := this.credentialSecret(ctx, bsl)
	if err != nil {
		log.WithError(err).Error("Failed to locate the credential secret")
		return nil, err
	}

	secret, err := this.kubeClient.CoreV1().Secrets(this.accessor.Namespace()).Get(ctx, secretName, metav1.GetOptions{})
	if err != nil {
		log.WithError(err).Errorf("Failed to retrieve the Secret %s", secretName)
		if apierrors.IsNotFound(err) {
			return nil, newResolutionError(NoCredential, err, "credential secret %s not found", secretName)
		}
		return nil, newResolutionError(RemoteFailure, err, "failed to get credential secret %s", secretName)
	}
	data, ok := secret.Data[secretKey]
	if !ok || len(data) == 0 {
		log.Errorf("Secret %s has no key %s", secretName, secretKey)
		return nil, newResolutionError(CredentialUnreadable, nil, "secret %s has no key %s", secretName, secretKey)
	}

	profile := bsl.Spec.Config[constants.ProfileConfigKey]
	location.AccessKey, location.SecretKey, err = utils.ParseCloudCredentials(data, profile, log)
	if err != nil {
		return nil, newResolutionError(CredentialUnreadable, err, "failed to parse credential secret %s", secretName)
	}

	log.Infof("Resolved backup storage location, endpoint=%v, bucket=%v, prefix=%v",
		location.Endpoint, location.Bucket, location.Prefix)
	return location, nil
}

// matchLocation picks the location by name. A backup without a location uses the default one.
func matchLocation(locations []velerov1.BackupStorageLocation, name string) *velerov1.BackupStorageLocation {
	for i := range locations {
		if name == "" && locations[i].Spec.Default {
			return &locations[i]
		}
		if name != "" && locations[i].Name == name {
			return &locations[i]
		}
	}
	return nil
}

func locationFromBSL(bsl *velerov1.BackupStorageLocation) (*Location, error) {
	endpoint := bsl.Spec.Config[constants.S3UrlConfigKey]
	if endpoint == "" {
		return nil, newResolutionError(UnsupportedBackend, nil,
			"backup storage location %s has no %s, only S3 compatible object storage is supported",
			bsl.Name, constants.S3UrlConfigKey)
	}
	if bsl.Spec.ObjectStorage == nil || bsl.Spec.ObjectStorage.Bucket == "" {
		return nil, newResolutionError(UnsupportedBackend, nil, "backup storage location %s has no bucket", bsl.Name)
	}

	region := bsl.Spec.Config[constants.RegionConfigKey]
	if region == "" {
		region = constants.DefaultS3Region
	}

	return &Location{
		Name:                  bsl.Name,
		Endpoint:              endpoint,
		Bucket:                bsl.Spec.ObjectStorage.Bucket,
		Prefix:                bsl.Spec.ObjectStorage.Prefix,
		Region:                region,
		S3ForcePathStyle:      utils.GetBool(bsl.Spec.Config[constants.S3ForcePathStyleConfigKey], true),
		InsecureSkipTLSVerify: utils.GetBool(bsl.Spec.Config[constants.InsecureSkipTLSVerifyConfig], false),
		CACert:                bsl.Spec.ObjectStorage.CACert,
	}, nil
}

/*
 * The credential of a location comes from its own secret key selector when
 * set, otherwise from the secret mounted as the cloud-credentials volume of
 * the Velero deployment.
 */
func (this *Resolver) credentialSecret(ctx context.Context, bsl *velerov1.BackupStorageLocation) (string, string, error) {
	if bsl.Spec.Credential != nil && bsl.Spec.Credential.Name != "" {
		key := bsl.Spec.Credential.Key
		if key == "" {
			key = constants.CloudCredentialSecretKey
		}
		this.Debugf("Using credential %s/%s of backup storage location %s", bsl.Spec.Credential.Name, key, bsl.Name)
		return bsl.Spec.Credential.Name, key, nil
	}

	deployment, err := this.kubeClient.AppsV1().Deployments(this.accessor.Namespace()).
		Get(ctx, constants.VeleroDeployment, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", "", newResolutionError(NoCredential, err, "deployment %s not found", constants.VeleroDeployment)
		}
		return "", "", newResolutionError(RemoteFailure, err, "failed to get deployment %s", constants.VeleroDeployment)
	}

	for _, volume := range deployment.Spec.Template.Spec.Volumes {
		if volume.Name == constants.CloudCredentialVolumeName && volume.Secret != nil {
			return volume.Secret.SecretName, constants.CloudCredentialSecretKey, nil
		}
	}
	return "", "", newResolutionError(NoCredential, nil, "no %s secret volume is mounted on deployment %s",
		constants.CloudCredentialVolumeName, constants.VeleroDeployment)
}
