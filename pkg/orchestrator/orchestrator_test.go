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

package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/builder"
	"github.com/velero-ui/velero-ui/pkg/logs"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/storagelocation"
	veleroplugintest "github.com/velero-ui/velero-ui/pkg/test"
	velerov1 "github.com/vmware-tanzu/velero/pkg/apis/velero/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	clienttesting "k8s.io/client-go/testing"
	clocktesting "k8s.io/utils/clock/testing"
)

const testNamespace = "velero"

var testTime = time.Date(2023, time.March, 1, 10, 0, 0, 0, time.UTC)

type unresolvable struct{}

func (unresolvable) Resolve(ctx context.Context, backupName string) (*storagelocation.Location, error) {
	return nil, errors.New("no storage location")
}

func newTestOrchestrator(objects ...runtime.Object) (*Orchestrator, *dynamicfake.FakeDynamicClient) {
	logger := veleroplugintest.NewLogger()
	client := accessor.NewFakeDynamicClient(objects...)
	a := accessor.NewAccessor(client, testNamespace, logger)
	o := NewOrchestrator(a, logs.NewRetriever(a, unresolvable{}, nil, logger), metrics.NewServerMetrics(), logger)
	o.clock = clocktesting.NewFakeClock(testTime)
	return o, client
}

func createActions(client *dynamicfake.FakeDynamicClient) []clienttesting.Action {
	var actions []clienttesting.Action
	for _, action := range client.Actions() {
		if action.GetVerb() == "create" {
			actions = append(actions, action)
		}
	}
	return actions
}

func message(msg string) map[string]string {
	return map[string]string{"message": msg}
}

func TestCreateBackup(t *testing.T) {
	o, _ := newTestOrchestrator()

	response := o.CreateBackup(context.TODO(), BackupRequest{
		Name:               "nightly-1",
		IncludedNamespaces: []string{"ns-a"},
		TTL:                "720h0m0s",
		Labels:             []string{"env=prod"},
	})
	assert.Equal(t, Response{Status: http.StatusOK, Body: message("Backup nightly-1 created successfully")}, response)

	backup, err := o.accessor.GetBackup(context.TODO(), "nightly-1")
	require.NoError(t, err)
	assert.Equal(t, testNamespace, backup.Namespace)
	assert.Equal(t, []string{"ns-a"}, backup.Spec.IncludedNamespaces)
	assert.Equal(t, 720*time.Hour, backup.Spec.TTL.Duration)
	assert.Equal(t, "default", backup.Spec.StorageLocation)
	require.NotNil(t, backup.Spec.DefaultVolumesToFsBackup)
	assert.True(t, *backup.Spec.DefaultVolumesToFsBackup)
	require.NotNil(t, backup.Spec.LabelSelector)
	assert.Equal(t, map[string]string{"env": "prod"}, backup.Spec.LabelSelector.MatchLabels)
}

func TestCreateBackupWithoutLabels(t *testing.T) {
	o, _ := newTestOrchestrator()

	response := o.CreateBackup(context.TODO(), BackupRequest{Name: "b1", Labels: []string{""}})
	assert.Equal(t, http.StatusOK, response.Status)

	backup, err := o.accessor.GetBackup(context.TODO(), "b1")
	require.NoError(t, err)
	assert.Nil(t, backup.Spec.LabelSelector)
	assert.Equal(t, time.Duration(0), backup.Spec.TTL.Duration)
}

func TestCreateBackupValidation(t *testing.T) {
	tests := []struct {
		name     string
		request  BackupRequest
		expected string
	}{
		{
			name:     "Label without separator",
			request:  BackupRequest{Name: "b1", Labels: []string{"env=prod", "novalue"}},
			expected: "Failed to create backup. Labels are not following the format <key>=<value>,<key>=<value>...",
		},
		{
			name:     "Label with empty key",
			request:  BackupRequest{Name: "b1", Labels: []string{"=prod"}},
			expected: "Failed to create backup. Labels are not following the format <key>=<value>. Key cannot be empty",
		},
		{
			name:     "Missing name",
			request:  BackupRequest{Labels: []string{"env=prod"}},
			expected: "Failed to create backup. metadata_name is required",
		},
		{
			name:     "Malformed ttl",
			request:  BackupRequest{Name: "b1", TTL: "30 days"},
			expected: "Failed to create backup. invalid ttl \"30 days\"",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o, client := newTestOrchestrator()

			response := o.CreateBackup(context.TODO(), test.request)
			assert.Equal(t, http.StatusInternalServerError, response.Status)
			assert.Contains(t, response.Body.(map[string]string)["message"], test.expected)
			assert.Empty(t, createActions(client))
		})
	}
}

func TestCreateBackupRemoteFailure(t *testing.T) {
	o, client := newTestOrchestrator()
	client.PrependReactor("create", "backups", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("forbidden")
	})

	response := o.CreateBackup(context.TODO(), BackupRequest{Name: "b1"})
	assert.Equal(t, Response{Status: http.StatusInternalServerError, Body: message("Failed to create backup. forbidden")}, response)
}

func TestDeleteBackup(t *testing.T) {
	o, _ := newTestOrchestrator(builder.ForBackup(testNamespace, "b1").Result())

	response := o.DeleteBackup(context.TODO(), "b1")
	assert.Equal(t, Response{Status: http.StatusOK, Body: message("Backup b1 deleted successfully")}, response)

	// The backup itself is left for Velero to remove.
	_, err := o.accessor.GetBackup(context.TODO(), "b1")
	require.NoError(t, err)

	request, err := o.accessor.Get(context.TODO(), accessor.DeleteBackupRequests, "b1-delete-request")
	require.NoError(t, err)
	assert.Equal(t, "b1", request.GetLabels()[velerov1.BackupNameLabel])
	backupName, _, _ := unstructured.NestedString(request.Object, "spec", "backupName")
	assert.Equal(t, "b1", backupName)

	response = o.DeleteBackup(context.TODO(), "b1")
	assert.Equal(t, http.StatusInternalServerError, response.Status)
	assert.Contains(t, response.Body.(map[string]string)["message"], "Backup b1 failed to delete. ")

	assert.Equal(t, http.StatusBadRequest, o.DeleteBackup(context.TODO(), "").Status)
}

func TestDeleteRestore(t *testing.T) {
	tests := []struct {
		name     string
		reactErr error
		expected Response
	}{
		{
			name:     "Restore is deleted",
			expected: Response{Status: http.StatusOK, Body: message("Restore r1 deleted successfully")},
		},
		{
			name:     "Remote failure",
			reactErr: errors.New("forbidden"),
			expected: Response{Status: http.StatusInternalServerError, Body: message("Restore r1 failed to delete. forbidden")},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o, client := newTestOrchestrator(builder.ForRestore(testNamespace, "r1").Result())
			if test.reactErr != nil {
				client.PrependReactor("delete", "restores", func(action clienttesting.Action) (bool, runtime.Object, error) {
					return true, nil, test.reactErr
				})
			}
			assert.Equal(t, test.expected, o.DeleteRestore(context.TODO(), "r1"))
		})
	}
}

func TestDeleteSchedule(t *testing.T) {
	o, _ := newTestOrchestrator(builder.ForSchedule(testNamespace, "daily").Result())

	assert.Equal(t, Response{Status: http.StatusOK, Body: message("Schedule daily deleted successfully")},
		o.DeleteSchedule(context.TODO(), "daily"))
	assert.Equal(t, Response{Status: http.StatusBadRequest, Body: message("Schedule name is required as a query parameter")},
		o.DeleteSchedule(context.TODO(), ""))
}

func TestCreateRestore(t *testing.T) {
	tests := []struct {
		name             string
		request          RestoreRequest
		expected         Response
		expectedName     string
		expectedBackup   string
		expectedSchedule string
	}{
		{
			name:    "Both sources",
			request: RestoreRequest{BackupName: "b1", ScheduleName: "daily"},
			expected: Response{Status: http.StatusBadRequest, Body: map[string]string{
				"error": "Invalid request. You can only provide either backupName or scheduleName.",
			}},
		},
		{
			name: "No source",
			expected: Response{Status: http.StatusBadRequest, Body: map[string]string{
				"error": "Invalid request. Please provide either backupName or scheduleName.",
			}},
		},
		{
			name:           "From backup",
			request:        RestoreRequest{BackupName: "b1"},
			expected:       Response{Status: http.StatusOK, Body: message("Restore from backup b1 created successfully")},
			expectedName:   "b1-20230301100000",
			expectedBackup: "b1",
		},
		{
			name:             "From schedule",
			request:          RestoreRequest{ScheduleName: "daily"},
			expected:         Response{Status: http.StatusOK, Body: message("Restore from schedule daily created successfully")},
			expectedName:     "daily-20230301100000",
			expectedSchedule: "daily",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o, client := newTestOrchestrator()

			assert.Equal(t, test.expected, o.CreateRestore(context.TODO(), test.request))
			if test.expectedName == "" {
				assert.Empty(t, createActions(client))
				return
			}
			restore, err := o.accessor.GetRestore(context.TODO(), test.expectedName)
			require.NoError(t, err)
			assert.Equal(t, test.expectedBackup, restore.Spec.BackupName)
			assert.Equal(t, test.expectedSchedule, restore.Spec.ScheduleName)
			require.NotNil(t, restore.Spec.RestorePVs)
			assert.True(t, *restore.Spec.RestorePVs)
		})
	}
}

func TestCreateSchedule(t *testing.T) {
	o, _ := newTestOrchestrator()

	response := o.CreateSchedule(context.TODO(), ScheduleRequest{
		BackupRequest: BackupRequest{
			Name:               "daily",
			IncludedNamespaces: []string{"ns-a", "ns-b"},
			TTL:                "168h",
		},
		Schedule: "0 1 * * *",
	})
	assert.Equal(t, Response{Status: http.StatusOK, Body: message("Schedule daily created successfully")}, response)

	u, err := o.accessor.Get(context.TODO(), accessor.Schedules, "daily")
	require.NoError(t, err)
	schedule := &velerov1.Schedule{}
	require.NoError(t, runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, schedule))
	assert.Equal(t, "0 1 * * *", schedule.Spec.Schedule)
	assert.Equal(t, []string{"ns-a", "ns-b"}, schedule.Spec.Template.IncludedNamespaces)
	assert.Equal(t, 168*time.Hour, schedule.Spec.Template.TTL.Duration)
	assert.Equal(t, "default", schedule.Spec.Template.StorageLocation)
	assert.Nil(t, schedule.Spec.Template.LabelSelector)
}

func TestCreateScheduleValidation(t *testing.T) {
	tests := []struct {
		name    string
		request ScheduleRequest
	}{
		{
			name:    "Malformed cron expression",
			request: ScheduleRequest{BackupRequest: BackupRequest{Name: "daily"}, Schedule: "every day"},
		},
		{
			name:    "Missing cron expression",
			request: ScheduleRequest{BackupRequest: BackupRequest{Name: "daily"}},
		},
		{
			name: "Malformed label",
			request: ScheduleRequest{
				BackupRequest: BackupRequest{Name: "daily", Labels: []string{"app"}},
				Schedule:      "@daily",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o, client := newTestOrchestrator()

			response := o.CreateSchedule(context.TODO(), test.request)
			assert.Equal(t, http.StatusInternalServerError, response.Status)
			assert.Contains(t, response.Body.(map[string]string)["message"], "Failed to create schedule. ")
			assert.Empty(t, createActions(client))
		})
	}
}

func TestLogs(t *testing.T) {
	o, _ := newTestOrchestrator(
		builder.ForBackup(testNamespace, "b1").Phase(velerov1.BackupPhaseInProgress).Result(),
		builder.ForBackup(testNamespace, "b2").Phase(velerov1.BackupPhaseCompleted).Result(),
	)

	assert.Equal(t, Response{Status: http.StatusOK, Body: map[string]string{
		"logs": "Backup is in InProgress phase. Please wait until the backup is finished to retrieve log again",
	}}, o.BackupLogs(context.TODO(), "b1"))
	assert.Equal(t, Response{Status: http.StatusOK, Body: map[string]string{
		"logs": "Cannot retrieve backup storage location",
	}}, o.BackupLogs(context.TODO(), "b2"))
	assert.Equal(t, Response{Status: http.StatusNotFound, Body: message("Restore r1 not found")},
		o.RestoreLogs(context.TODO(), "r1"))
	assert.Equal(t, Response{Status: http.StatusBadRequest, Body: message("Backup name is required as a query parameter")},
		o.BackupLogs(context.TODO(), ""))
}

func TestLogsMetrics(t *testing.T) {
	o, client := newTestOrchestrator(
		builder.ForBackup(testNamespace, "b1").Phase(velerov1.BackupPhaseInProgress).Result(),
	)
	registry := prometheus.NewRegistry()
	require.NoError(t, o.metrics.RegisterAllMetrics(registry))

	assert.Equal(t, http.StatusOK, o.BackupLogs(context.TODO(), "b1").Status)
	assert.Equal(t, http.StatusNotFound, o.RestoreLogs(context.TODO(), "r1").Status)

	client.PrependReactor("get", "backups", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("timeout")
	})
	assert.Equal(t, http.StatusInternalServerError, o.BackupLogs(context.TODO(), "b1").Status)

	expected := `
# HELP velero_ui_log_retrieval_total Total number of log retrievals by outcome
# TYPE velero_ui_log_retrieval_total counter
velero_ui_log_retrieval_total{kind="backups",state="Error"} 1
velero_ui_log_retrieval_total{kind="backups",state="NotReady"} 1
velero_ui_log_retrieval_total{kind="restores",state="NotFound"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "velero_ui_log_retrieval_total"))
}

func TestDescribe(t *testing.T) {
	o, _ := newTestOrchestrator(
		builder.ForSchedule(testNamespace, "weekly").CronSchedule("@weekly").Result(),
		builder.ForRestore(testNamespace, "r1").Backup("b1").Result(),
	)

	assert.Equal(t, Response{Status: http.StatusOK, Body: map[string]string{"logs": ""}},
		o.DescribeSchedule(context.TODO(), "daily"))

	response := o.DescribeRestore(context.TODO(), "r1")
	assert.Equal(t, http.StatusOK, response.Status)
	assert.Contains(t, response.Body.(map[string]string)["logs"], "  backupName: b1\n")

	assert.Equal(t, http.StatusBadRequest, o.DescribeBackup(context.TODO(), "").Status)
}

func TestList(t *testing.T) {
	o, client := newTestOrchestrator(
		builder.ForBackup(testNamespace, "b1").Result(),
		builder.ForBackupStorageLocation(testNamespace, "default").Bucket("velero").Result(),
	)

	response := o.ListBackups(context.TODO())
	require.Equal(t, http.StatusOK, response.Status)
	items := response.Body.(map[string]interface{})["items"].([]map[string]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "b1", items[0]["metadata"].(map[string]interface{})["name"])

	response = o.ListRestores(context.TODO())
	require.Equal(t, http.StatusOK, response.Status)
	assert.Empty(t, response.Body.(map[string]interface{})["items"])

	response = o.ListStorages(context.TODO())
	require.Equal(t, http.StatusOK, response.Status)
	assert.Len(t, response.Body.(map[string]interface{})["items"], 1)

	client.PrependReactor("list", "schedules", func(action clienttesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("timeout")
	})
	response = o.ListSchedules(context.TODO())
	assert.Equal(t, http.StatusInternalServerError, response.Status)
}
