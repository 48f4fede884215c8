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
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

// ListKinds maps every Velero resource to its list kind, as required by the fake dynamic client.
func ListKinds() map[schema.GroupVersionResource]string {
	return map[schema.GroupVersionResource]string{
		Backups.GroupVersionResource():                "BackupList",
		Restores.GroupVersionResource():               "RestoreList",
		Schedules.GroupVersionResource():              "ScheduleList",
		BackupStorageLocations.GroupVersionResource(): "BackupStorageLocationList",
		DeleteBackupRequests.GroupVersionResource():   "DeleteBackupRequestList",
	}
}

// NewFakeDynamicClient returns a fake dynamic client seeded with objs, which
// may be typed Velero objects or unstructured documents.
func NewFakeDynamicClient(objs ...runtime.Object) *dynamicfake.FakeDynamicClient {
	scheme := runtime.NewScheme()
	if err := velerov1.AddToScheme(scheme); err != nil {
		panic(err)
	}
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, ListKinds(), objs...)
}
