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

package constants

const (
	// API group and version of the Velero custom resources.
	VeleroGroup   = "velero.io"
	VeleroVersion = "v1"
)

// Plural resource names of the Velero custom resources.
const (
	BackupsResource                = "backups"
	RestoresResource               = "restores"
	SchedulesResource              = "schedules"
	BackupStorageLocationsResource = "backupstoragelocations"
	DeleteBackupRequestsResource   = "deletebackuprequests"
)

const (
	// DefaultNamespace is the Kubernetes namespace that is used by default for
	// the Velero server and API objects.
	DefaultNamespace = "velero"

	// VeleroDeployment is the name of the Velero server deployment.
	VeleroDeployment = "velero"

	// CloudCredentialVolumeName is the volume of the Velero deployment that
	// mounts the object storage credential secret.
	CloudCredentialVolumeName = "cloud-credentials"

	// CloudCredentialSecretKey is the key in the credential secret holding the
	// AWS shared credentials file.
	CloudCredentialSecretKey = "cloud"

	// ServiceAccountNamespaceFile is read to discover the namespace when running in cluster.
	ServiceAccountNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

	// VeleroNamespaceEnv overrides the namespace when not running in cluster.
	VeleroNamespaceEnv = "VELERO_NAMESPACE"
)

// configuration constants for the S3 object store
const (
	DefaultS3BackupLocation  = "default"
	DefaultS3Region          = "us-east-1"
	DefaultCredentialProfile = "default"
	AWS_ACCESS_KEY_ID        = "aws_access_key_id"
	AWS_SECRET_ACCESS_KEY    = "aws_secret_access_key"

	// Keys of the BackupStorageLocation config map.
	S3UrlConfigKey              = "s3Url"
	RegionConfigKey             = "region"
	S3ForcePathStyleConfigKey   = "s3ForcePathStyle"
	InsecureSkipTLSVerifyConfig = "insecureSkipTLSVerify"
	ProfileConfigKey            = "profile"
)

const (
	// Object store directories for the operation logs.
	BackupsDir  = "backups"
	RestoresDir = "restores"
)

const (
	// Minimum velero version number this server is tested with
	VeleroMinVersion = "v1.10.0"
)

const (
	VeleroUI string = "velero-ui"

	// DeleteRequestSuffix is appended to a backup name to name its DeleteBackupRequest.
	DeleteRequestSuffix = "-delete-request"

	// RestoreNameTimeFormat is the timestamp layout appended to generated restore names.
	RestoreNameTimeFormat = "20060102150405"
)

// Keys for components in image
const (
	ImageRepositoryComponent = "Repository"
	ImageContainerComponent  = "Container"
	ImageVersionComponent    = "Version"

	// VeleroImage is matched against container images of the Velero deployment.
	VeleroImage = "velero/velero"
)
