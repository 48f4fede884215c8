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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/velero-ui/velero-ui/pkg/accessor"
	"github.com/velero-ui/velero-ui/pkg/common/config"
	"github.com/velero-ui/velero-ui/pkg/logs"
	"github.com/velero-ui/velero-ui/pkg/metrics"
	"github.com/velero-ui/velero-ui/pkg/orchestrator"
	"github.com/velero-ui/velero-ui/pkg/storagelocation"
	"github.com/vmware-tanzu/velero/pkg/client"
	"github.com/vmware-tanzu/velero/pkg/util/logging"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// ConfigFlag is the persistent flag naming the optional configuration file.
const ConfigFlag = "config"

// Clients are the Kubernetes clients shared by the commands.
type Clients struct {
	Config        *rest.Config
	Kube          kubernetes.Interface
	Dynamic       dynamic.Interface
	APIExtensions apiextensionsclient.Interface
}

func NewClients(clientConfig *rest.Config, qps float32, burst int) (*Clients, error) {
	clientConfig.QPS = qps
	clientConfig.Burst = burst

	kubeClient, err := kubernetes.NewForConfig(clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes client")
	}
	dynamicClient, err := dynamic.NewForConfig(clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dynamic client")
	}
	apiExtensionsClient, err := apiextensionsclient.NewForConfig(clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create apiextensions client")
	}
	return &Clients{
		Config:        clientConfig,
		Kube:          kubeClient,
		Dynamic:       dynamicClient,
		APIExtensions: apiExtensionsClient,
	}, nil
}

// NewOrchestrator wires the accessor, the storage location resolver and the
// log retriever of namespace into an orchestrator.
func NewOrchestrator(clients *Clients, namespace string, serverMetrics *metrics.ServerMetrics, logger logrus.FieldLogger) *orchestrator.Orchestrator {
	a := accessor.NewAccessor(clients.Dynamic, namespace, logger)
	resolver := storagelocation.NewResolver(a, clients.Kube, logger)
	retriever := logs.NewRetriever(a, resolver, nil, logger)
	return orchestrator.NewOrchestrator(a, retriever, serverMetrics, logger)
}

// LoadConfig reads the file named by the --config flag of c, if any.
func LoadConfig(c *cobra.Command) (*config.Config, error) {
	path, _ := c.Flags().GetString(ConfigFlag)
	return config.ReadConfigFile(path)
}

// CLILogger logs warnings to stderr so command output on stdout stays clean.
func CLILogger() *logrus.Logger {
	logger := logging.DefaultLogger(logrus.WarnLevel, logging.FormatText)
	logger.SetOutput(os.Stderr)
	return logger
}

// NewCLIOrchestrator builds an orchestrator for a one-shot command, honoring
// the configuration file and the client flags of c.
func NewCLIOrchestrator(c *cobra.Command, f client.Factory, serverMetrics *metrics.ServerMetrics) (*orchestrator.Orchestrator, error) {
	fileConfig, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	kubeConfig := fileConfig.Global.Kubeconfig
	if flag := c.Flags().Lookup("kubeconfig"); flag != nil && flag.Changed {
		kubeConfig = flag.Value.String()
	}
	clientConfig, err := BuildConfig(fileConfig.Global.Master, kubeConfig, f)
	if err != nil {
		return nil, err
	}
	clients, err := NewClients(clientConfig, DefaultClientQPS, DefaultClientBurst)
	if err != nil {
		return nil, err
	}
	logger := CLILogger()
	return NewOrchestrator(clients, ResolveNamespace(c.Flags(), f, fileConfig, logger), serverMetrics, logger), nil
}

// PrintResponse writes the text of an orchestrator response to out. Responses
// other than 200 are returned as errors.
func PrintResponse(out io.Writer, response orchestrator.Response) error {
	if body, ok := response.Body.(map[string]string); ok {
		for _, key := range []string{"logs", "message", "error"} {
			text, found := body[key]
			if !found {
				continue
			}
			if response.Status != http.StatusOK {
				return errors.New(text)
			}
			_, err := fmt.Fprintln(out, text)
			return err
		}
	}
	if response.Status != http.StatusOK {
		return errors.Errorf("request failed with status %d", response.Status)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response.Body)
}
