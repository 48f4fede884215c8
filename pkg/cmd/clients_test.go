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

package cmd

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/builder"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/orchestrator"
	veleroplugintest "github.com/velero-ui/velero-ui/pkg/test"
	kubeclientfake "k8s.io/client-go/kubernetes/fake"
)

func TestPrintResponse(t *testing.T) {
	clients := &Clients{
		Kube:    kubeclientfake.NewSimpleClientset(),
		Dynamic: accessor.NewFakeDynamicClient(builder.ForBackup("velero", "b1").Result()),
	}
	o := NewOrchestrator(clients, "velero", metrics.NewServerMetrics(), veleroplugintest.NewLogger())

	tests := []struct {
		name        string
		response    orchestrator.Response
		expected    string
		expectedErr string
	}{
		{
			name:     "Logs are printed as text",
			response: o.BackupLogs(context.TODO(), "b1"),
			expected: "Backup is in New phase. Please wait until the backup is finished to retrieve log again\n",
		},
		{
			name:     "Describe of a missing object prints an empty line",
			response: o.DescribeSchedule(context.TODO(), "daily"),
			expected: "\n",
		},
		{
			name:        "Failed responses are errors",
			response:    o.RestoreLogs(context.TODO(), "r1"),
			expectedErr: "Restore r1 not found",
		},
		{
			name:     "Lists are printed as JSON",
			response: o.ListRestores(context.TODO()),
			expected: "{\n  \"items\": []\n}\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			err := PrintResponse(out, test.response)
			if test.expectedErr != "" {
				assert.EqualError(t, err, test.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, out.String())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "velero-ui-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "velero-ui.conf")
	require.NoError(t, ioutil.WriteFile(path, []byte("[Global]\nnamespace = backup-system\n"), 0644))

	c := &cobra.Command{}
	c.Flags().String(ConfigFlag, "", "")

	cfg, err := LoadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Global.Namespace)

	require.NoError(t, c.Flags().Set(ConfigFlag, path))
	cfg, err = LoadConfig(c)
	require.NoError(t, err)
	assert.Equal(t, "backup-system", cfg.Global.Namespace)
}
