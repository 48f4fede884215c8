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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velero-ui/velero-ui/pkg/builder"
	veleroplugintest "github.com/velero-ui/velero-ui/pkg/test"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

func TestNewFakeDynamicClient(t *testing.T) {
	seeded := &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "velero.io/v1",
		"kind":       "Backup",
		"metadata":   map[string]interface{}{"namespace": testNamespace, "name": "b2"},
	}}
	client := NewFakeDynamicClient(
		builder.ForBackup(testNamespace, "b1").Result(),
		seeded,
		builder.ForRestore(testNamespace, "r1").Backup("b1").Result(),
		builder.ForSchedule(testNamespace, "daily").Result(),
		builder.ForBackupStorageLocation(testNamespace, "default").Bucket("velero").Result(),
		builder.ForDeleteBackupRequest(testNamespace, "b1").Result(),
	)
	a := NewAccessor(client, testNamespace, veleroplugintest.NewLogger())

	tests := []struct {
		kind          Kind
		expectedNames []string
	}{
		{Backups, []string{"b1", "b2"}},
		{Restores, []string{"r1"}},
		{Schedules, []string{"daily"}},
		{BackupStorageLocations, []string{"default"}},
		{DeleteBackupRequests, []string{"b1-delete-request"}},
	}
	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			items, err := a.List(context.TODO(), test.kind)
			require.NoError(t, err)
			names := []string{}
			for _, item := range items {
				names = append(names, item.GetName())
			}
			assert.ElementsMatch(t, test.expectedNames, names)
		})
	}

	backup, err := a.GetBackup(context.TODO(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", backup.Name)

	var objects []runtime.Object
	assert.NotPanics(t, func() { NewFakeDynamicClient(objects...) })
}
