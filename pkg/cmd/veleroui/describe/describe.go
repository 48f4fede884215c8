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

package describe

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/velero-ui/velero-ui/pkg/cmd"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/orchestrator"
	"github.com/vmware-tanzu/velero/pkg/client"
)

func NewCommand(f client.Factory) *cobra.Command {
	c := &cobra.Command{
		Use:   "describe",
		Short: "Describe a backup, restore or schedule",
	}
	c.AddCommand(
		newKindCommand(f, "backup", (*orchestrator.Orchestrator).DescribeBackup),
		newKindCommand(f, "restore", (*orchestrator.Orchestrator).DescribeRestore),
		newKindCommand(f, "schedule", (*orchestrator.Orchestrator).DescribeSchedule),
	)
	return c
}

func newKindCommand(f client.Factory, kind string,
	call func(*orchestrator.Orchestrator, context.Context, string) orchestrator.Response) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " NAME",
		Short: "Describe a " + kind,
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			o, err := cmd.NewCLIOrchestrator(c, f, metrics.NewServerMetrics())
			cmd.CheckError(err)
			cmd.CheckError(cmd.PrintResponse(os.Stdout, call(o, context.Background(), args[0])))
		},
	}
}
