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
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/velero-ui/velero-ui/pkg/common/config"
	"github.com/velero-ui/velero-ui/pkg/constants"
	"github.com/velero-ui/velero-ui/pkg/utils"
	"github.com/vmware-tanzu/velero/pkg/client"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	// the address the API is served on
	DefaultAddress = ":8080"
	// the port where prometheus metrics are exposed
	DefaultMetricsAddress = ":8085"
	// server's client default qps and burst
	DefaultClientQPS   float32 = 20.0
	DefaultClientBurst int     = 30

	DefaultProfilerAddress = "localhost:6060"
)

// CheckError prints err to stderr and exits with code 1 if err is not nil. Otherwise, it is a
// no-op.
func CheckError(err error) {
	if err != nil {
		if err != context.Canceled {
			fmt.Fprintf(os.Stderr, "An error occurred: %v\n", err)
		}
		os.Exit(1)
	}
}

// Exit prints msg (with optional args), plus a newline, to stderr and exits with code 1.
func Exit(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

// GetVeleroVersion returns the version of the Velero server deployment in namespace, in the format vX.Y.Z.
func GetVeleroVersion(ctx context.Context, kubeClient kubernetes.Interface, namespace string) (string, error) {
	deployment, err := kubeClient.AppsV1().Deployments(namespace).Get(ctx, constants.VeleroDeployment, metav1.GetOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "failed to get deployment %s/%s", namespace, constants.VeleroDeployment)
	}
	return utils.GetVersionFromImage(deployment.Spec.Template.Spec.Containers, constants.VeleroImage), nil
}

// CheckVeleroVersion warns when the Velero server is older than the minimum version this server is tested with.
func CheckVeleroVersion(ctx context.Context, kubeClient kubernetes.Interface, namespace string, logger logrus.FieldLogger) {
	version, err := GetVeleroVersion(ctx, kubeClient, namespace)
	if err != nil {
		logger.WithError(err).Warn("Failed to get the Velero server version")
		return
	}
	if utils.CompareVersion(version, constants.VeleroMinVersion) < 0 {
		logger.Warnf("Velero server version %s is older than the minimum version %s", version, constants.VeleroMinVersion)
		return
	}
	logger.Infof("Velero server version %s", version)
}

// BuildConfig returns the client config of master or kubeConfig when either is set, and the factory's otherwise.
func BuildConfig(master, kubeConfig string, f client.Factory) (*rest.Config, error) {
	var config *rest.Config
	var err error
	if master != "" || kubeConfig != "" {
		config, err = clientcmd.BuildConfigFromFlags(master, kubeConfig)
	} else {
		config, err = f.ClientConfig()
	}
	if err != nil {
		return nil, errors.Errorf("failed to create config: %v", err)
	}
	return config, nil
}

// ResolveNamespace picks the namespace of the Velero resources. An explicit
// --namespace flag wins over the config file, which wins over the environment
// and the in-cluster namespace.
func ResolveNamespace(flags *pflag.FlagSet, f client.Factory, cfg *config.Config, logger logrus.FieldLogger) string {
	if flag := flags.Lookup("namespace"); flag != nil && flag.Changed {
		return f.Namespace()
	}
	if cfg != nil && cfg.Global.Namespace != "" {
		return cfg.Global.Namespace
	}
	return utils.GetVeleroNamespace(logger)
}
