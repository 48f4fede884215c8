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

package version

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/velero-ui/velero-ui/pkg/buildinfo"
	"github.com/velero-ui/velero-ui/pkg/cmd"
	"github.com/vmware-tanzu/velero/pkg/client"
	"k8s.io/client-go/kubernetes"
)

func NewCommand(f client.Factory) *cobra.Command {
	clientOnly := false

	c := &cobra.Command{
		Use:   "version",
		Short: "Print the velero-ui version and the Velero server version",
		Run: func(c *cobra.Command, args []string) {
			var kubeClient kubernetes.Interface
			namespace := ""
			if !clientOnly {
				var err error
				kubeClient, err = f.KubeClient()
				cmd.CheckError(err)
				fileConfig, err := cmd.LoadConfig(c)
				cmd.CheckError(err)
				namespace = cmd.ResolveNamespace(c.Flags(), f, fileConfig, cmd.CLILogger())
			}
			printVersion(os.Stdout, kubeClient, namespace)
		},
	}

	c.Flags().BoolVar(&clientOnly, "client-only", clientOnly, "only print the velero-ui version")

	return c
}

func printVersion(w io.Writer, kubeClient kubernetes.Interface, namespace string) {
	fmt.Fprintln(w, "velero-ui:")
	fmt.Fprintf(w, "\tVersion: %s\n", buildinfo.Version)
	fmt.Fprintf(w, "\tGit commit: %s\n", buildinfo.FormattedGitSHA())

	if kubeClient == nil {
		return
	}

	fmt.Fprintln(w, "Velero server:")
	version, err := cmd.GetVeleroVersion(context.Background(), kubeClient, namespace)
	switch {
	case err != nil:
		fmt.Fprintf(w, "\t<error getting server version: %s>\n", err)
	case version == "":
		fmt.Fprintln(w, "\tVersion: <unknown>")
	default:
		fmt.Fprintf(w, "\tVersion: %s\n", version)
	}
}
