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

package logs

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"path"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/constants"
	"github.com/velero-ui/velero-ui/pkg/storagelocation"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
)

// State classifies the outcome of a log retrieval.
type State string

const (
	// Ready means Text holds the decompressed log.
	Ready State = "Ready"
	// NotReady means the operation has not finished yet.
	NotReady State = "NotReady"
	// Unavailable means the storage location or its credentials could not be resolved.
	Unavailable State = "Unavailable"
	// Missing means the log archive does not exist in the bucket.
	Missing State = "Missing"
	// Failed means the archive could not be fetched or decoded.
	Failed State = "Failed"
)

const unavailableMessage = "Cannot retrieve backup storage location"

type Result struct {
	State State
	Text  string
}

// LocationResolver resolves the storage location of a backup.
type LocationResolver interface {
	Resolve(ctx context.Context, backupName string) (*storagelocation.Location, error)
}

// Retriever fetches the log archive of a backup or restore from object storage.
type Retriever struct {
	logrus.FieldLogger
	accessor       *accessor.Accessor
	resolver       LocationResolver
	newObjectStore ObjectStoreFactory
}

func NewRetriever(accessor *accessor.Accessor, resolver LocationResolver, newObjectStore ObjectStoreFactory,
	logger logrus.FieldLogger) *Retriever {
	if newObjectStore == nil {
		newObjectStore = NewS3ObjectStore
	}
	return &Retriever{
		FieldLogger:    logger,
		accessor:       accessor,
		resolver:       resolver,
		newObjectStore: newObjectStore,
	}
}

// LogKey returns the object key of the log archive of the named backup or restore.
// The prefix is cleaned, so a trailing slash does not produce an empty path segment.
func LogKey(prefix string, kind accessor.Kind, name string) (string, error) {
	var dir, file string
	switch kind {
	case accessor.Backups:
		dir, file = constants.BackupsDir, fmt.Sprintf("%s-logs.gz", name)
	case accessor.Restores:
		dir, file = constants.RestoresDir, fmt.Sprintf("restore-%s-logs.gz", name)
	default:
		return "", errors.Errorf("%s have no logs", kind)
	}
	return path.Join(prefix, dir, name, file), nil
}

/*
 * GetLog returns the log of the named backup or restore. Only the lookup of
 * the owning resource returns an error; every later failure is reported
 * through the State of the Result.
 */
func (this *Retriever) GetLog(ctx context.Context, kind accessor.Kind, name string) (*Result, error) {
	log := this.WithFields(logrus.Fields{"kind": kind, "name": name})

	var phase, backupName, title string
	switch kind {
	case accessor.Backups:
		backup, err := this.accessor.GetBackup(ctx, name)
		if err != nil {
			return nil, err
		}
		phase, backupName, title = string(backup.Status.Phase), name, "Backup"
	case accessor.Restores:
		restore, err := this.accessor.GetRestore(ctx, name)
		if err != nil {
			return nil, err
		}
		phase, backupName, title = string(restore.Status.Phase), restore.Spec.BackupName, "Restore"
	default:
		return nil, errors.Errorf("%s have no logs", kind)
	}

	if !isFinished(phase) {
		if phase == "" {
			phase = string(velerov1.BackupPhaseNew)
		}
		log.Infof("%s is in %s phase, skip log retrieval", title, phase)
		return &Result{
			State: NotReady,
			Text: fmt.Sprintf("%s is in %s phase. Please wait until the %s is finished to retrieve log again",
				title, phase, kindNoun(kind)),
		}, nil
	}

	if backupName == "" {
		log.Error("No backup is recorded for the restore")
		return &Result{State: Unavailable, Text: unavailableMessage}, nil
	}
	location, err := this.resolver.Resolve(ctx, backupName)
	if err != nil {
		log.WithError(err).Error("Failed to resolve the backup storage location")
		return &Result{State: Unavailable, Text: unavailableMessage}, nil
	}

	key, err := LogKey(location.Prefix, kind, name)
	if err != nil {
		return nil, err
	}
	log = log.WithFields(logrus.Fields{"bucket": location.Bucket, "key": key})
	failed := &Result{
		State: Failed,
		Text:  fmt.Sprintf("Failed to retrieve file %s in %s", key, location.Endpoint),
	}

	store, err := this.newObjectStore(location, log)
	if err != nil {
		log.WithError(err).Error("Failed to create the object store client")
		return failed, nil
	}

	_, err = store.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(location.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			log.Warn("Log archive not found")
			return &Result{State: Missing}, nil
		}
		log.WithError(err).Error("Failed to check the log archive")
		return failed, nil
	}

	text, err := this.download(ctx, store, location.Bucket, key)
	if err != nil {
		log.WithError(err).Error("Failed to download the log archive")
		return failed, nil
	}
	log.Debugf("Retrieved %d bytes of log", len(text))
	return &Result{State: Ready, Text: text}, nil
}

func (this *Retriever) download(ctx context.Context, store s3iface.S3API, bucket, key string) (string, error) {
	output, err := store.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", err
	}
	defer output.Body.Close()

	gzr, err := gzip.NewReader(output.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to open gzip stream")
	}
	defer gzr.Close()

	data, err := ioutil.ReadAll(gzr)
	if err != nil {
		return "", errors.Wrap(err, "failed to decompress")
	}
	if !utf8.Valid(data) {
		return "", errors.New("log is not valid UTF-8 text")
	}
	return string(data), nil
}

func isFinished(phase string) bool {
	switch phase {
	case "", string(velerov1.BackupPhaseNew), string(velerov1.BackupPhaseInProgress):
		return false
	}
	return true
}

func isNotFound(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return true
		}
	}
	return false
}

func kindNoun(kind accessor.Kind) string {
	if kind == accessor.Restores {
		return "restore"
	}
	return "backup"
}
