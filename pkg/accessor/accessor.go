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

package accessor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/constants"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// Kind is the plural resource name of a Velero custom resource collection.
type Kind string

const (
	Backups                Kind = constants.BackupsResource
	Restores               Kind = constants.RestoresResource
	Schedules              Kind = constants.SchedulesResource
	BackupStorageLocations Kind = constants.BackupStorageLocationsResource
	DeleteBackupRequests   Kind = constants.DeleteBackupRequestsResource
)

// GroupVersionResource returns the velero.io/v1 resource of the kind.
func (k Kind) GroupVersionResource() schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    constants.VeleroGroup,
		Version:  constants.VeleroVersion,
		Resource: string(k),
	}
}

// Outcome is the result of a mutating call. Message carries the remote error text on failure.
type Outcome struct {
	Success bool
	Message string
}

// Accessor reads and writes Velero custom resources in a single namespace.
type Accessor struct {
	logrus.FieldLogger
	client    dynamic.Interface
	namespace string
}

func NewAccessor(client dynamic.Interface, namespace string, logger logrus.FieldLogger) *Accessor {
	return &Accessor{
		FieldLogger: logger,
		client:      client,
		namespace:   namespace,
	}
}

// Namespace returns the namespace every call is scoped to.
func (this *Accessor) Namespace() string {
	return this.namespace
}

func (this *Accessor) resource(kind Kind) dynamic.ResourceInterface {
	return this.client.Resource(kind.GroupVersionResource()).Namespace(this.namespace)
}

// List returns every resource of the kind. An empty collection is not an error.
func (this *Accessor) List(ctx context.Context, kind Kind) ([]unstructured.Unstructured, error) {
	list, err := this.resource(kind).List(ctx, metav1.ListOptions{})
	if err != nil {
		this.WithError(err).WithField("kind", kind).Error("Failed to list resources")
		return nil, errors.Wrapf(err, "failed to list %s in namespace %s", kind, this.namespace)
	}
	if list == nil || len(list.Items) == 0 {
		return []unstructured.Unstructured{}, nil
	}
	return list.Items, nil
}

// Get returns the named resource. A missing resource yields an error satisfying apierrors.IsNotFound.
func (this *Accessor) Get(ctx context.Context, kind Kind, name string) (*unstructured.Unstructured, error) {
	return this.resource(kind).Get(ctx, name, metav1.GetOptions{})
}

// Create submits obj as a new resource of the kind in the accessor's namespace.
func (this *Accessor) Create(ctx context.Context, kind Kind, obj runtime.Object) Outcome {
	log := this.WithField("kind", kind)

	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		log.WithError(err).Error("Failed to convert resource")
		return Outcome{Message: err.Error()}
	}
	u := &unstructured.Unstructured{Object: content}
	u.SetNamespace(this.namespace)
	log = log.WithField("name", u.GetName())

	if _, err := this.resource(kind).Create(ctx, u, metav1.CreateOptions{}); err != nil {
		log.WithError(err).Error("Failed to create resource")
		return Outcome{Message: err.Error()}
	}
	log.Info("Created resource")
	return Outcome{Success: true}
}

// Delete removes the named resource of the kind.
func (this *Accessor) Delete(ctx context.Context, kind Kind, name string) Outcome {
	log := this.WithFields(logrus.Fields{"kind": kind, "name": name})

	if err := this.resource(kind).Delete(ctx, name, metav1.DeleteOptions{}); err != nil {
		log.WithError(err).Error("Failed to delete resource")
		return Outcome{Message: err.Error()}
	}
	log.Info("Deleted resource")
	return Outcome{Success: true}
}

// GetBackup returns the typed view of the named backup.
func (this *Accessor) GetBackup(ctx context.Context, name string) (*velerov1.Backup, error) {
	u, err := this.Get(ctx, Backups, name)
	if err != nil {
		return nil, err
	}
	backup := &velerov1.Backup{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.UnstructuredContent(), backup); err != nil {
		return nil, errors.Wrapf(err, "failed to decode backup %s", name)
	}
	return backup, nil
}

// GetRestore returns the typed view of the named restore.
func (this *Accessor) GetRestore(ctx context.Context, name string) (*velerov1.Restore, error) {
	u, err := this.Get(ctx, Restores, name)
	if err != nil {
		return nil, err
	}
	restore := &velerov1.Restore{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.UnstructuredContent(), restore); err != nil {
		return nil, errors.Wrapf(err, "failed to decode restore %s", name)
	}
	return restore, nil
}

// ListBackupStorageLocations returns the typed views of every storage location.
func (this *Accessor) ListBackupStorageLocations(ctx context.Context) ([]velerov1.BackupStorageLocation, error) {
	items, err := this.List(ctx, BackupStorageLocations)
	if err != nil {
		return nil, err
	}
	locations := make([]velerov1.BackupStorageLocation, 0, len(items))
	for _, item := range items {
		var bsl velerov1.BackupStorageLocation
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(item.UnstructuredContent(), &bsl); err != nil {
			return nil, errors.Wrapf(err, "failed to decode backup storage location %s", item.GetName())
		}
		locations = append(locations, bsl)
	}
	return locations, nil
}
