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

package veleroui

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/velero-ui/velero-ui/pkg/cmd"
	"github.com/velero-ui/velero-ui/pkg/cmd/veleroui/describe"
	"github.com/velero-ui/velero-ui/pkg/cmd/veleroui/logs"
	"github.com/velero-ui/velero-ui/pkg/cmd/veleroui/server"
	"github.com/velero-ui/velero-ui/pkg/cmd/veleroui/version"
	"github.com/vmware-tanzu/velero/pkg/client"
	"k8s.io/klog"
)

func NewCommand(name string) *cobra.Command {
	// Load the Velero client config so that the namespace and kubeconfig defaults follow the velero CLI.
	config, err := client.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Error reading config file: %v\n", err)
	}

	c := &cobra.Command{
		Use:   name,
		Short: "Manage Velero backups, restores and schedules over HTTP.",
		Long: `velero-ui serves a JSON API in front of a Velero installation. It lists,
creates and deletes backups, restores and schedules, describes them, and
fetches the logs of finished backups and restores from object storage.

The same operations are available as one-shot commands, for example
'velero-ui logs backup NAME' or 'velero-ui describe schedule NAME'.`,
	}

	f := client.NewFactory(name, config)
	f.BindFlags(c.PersistentFlags())

	c.PersistentFlags().String(cmd.ConfigFlag, "", "Path to an optional configuration file. Command line flags take precedence over its values.")

	c.AddCommand(
		server.NewCommand(f),
		logs.NewCommand(f),
		describe.NewCommand(f),
		version.NewCommand(f),
	)

	// init and add the klog flags
	klog.InitFlags(flag.CommandLine)
	c.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	return c
}
