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

package utils

import (
	"context"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/constants"
	k8sv1 "k8s.io/api/core/v1"
	apiextensionsclient "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// VeleroCRDs are the custom resource definitions the server reads and writes.
var VeleroCRDs = []string{
	constants.BackupsResource + "." + constants.VeleroGroup,
	constants.RestoresResource + "." + constants.VeleroGroup,
	constants.SchedulesResource + "." + constants.VeleroGroup,
	constants.BackupStorageLocationsResource + "." + constants.VeleroGroup,
	constants.DeleteBackupRequestsResource + "." + constants.VeleroGroup,
}

func GetKubeClientConfig() (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	// if you want to change the loading rules (which files in which order), you can do so here

	configOverrides := &clientcmd.ConfigOverrides{}
	// if you want to change override values or bind them to flags, there are methods to help you

	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)
	clientConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, errors.Wrap(err, "Error finding Kubernetes API server config in $KUBECONFIG, or in-cluster configuration")
	}

	return clientConfig, nil
}

/*
 * Discover the namespace Velero runs in. The VELERO_NAMESPACE env variable
 * wins, then the service account namespace file when running in cluster, then
 * the Velero default namespace.
 */
func GetVeleroNamespace(logger logrus.FieldLogger) string {
	return getVeleroNamespace(constants.ServiceAccountNamespaceFile, logger)
}

func getVeleroNamespace(saFile string, logger logrus.FieldLogger) string {
	if ns, exist := os.LookupEnv(constants.VeleroNamespaceEnv); exist && ns != "" {
		logger.Debugf("Using namespace %s from env %s", ns, constants.VeleroNamespaceEnv)
		return ns
	}
	if data, err := ioutil.ReadFile(saFile); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			logger.Debugf("Using namespace %s from %s", ns, saFile)
			return ns
		}
	}
	return constants.DefaultNamespace
}

/*
 * Parse an AWS shared credentials file, as stored in the Velero cloud
 * credential secret, and return the key pair of the given profile.
 */
func ParseCloudCredentials(data []byte, profile string, logger logrus.FieldLogger) (string, string, error) {
	if profile == "" {
		profile = constants.DefaultCredentialProfile
	}
	tmpfile, err := ioutil.TempFile("", "temp-aws-cred")
	if err != nil {
		return "", "", errors.Wrap(err, "Failed to create temp file to extract aws credentials")
	}
	// Cleanup
	defer os.Remove(tmpfile.Name())

	// The file is in a non-standard format, aws APIs recognize the format.
	if _, err := tmpfile.Write(data); err != nil {
		tmpfile.Close()
		return "", "", errors.Wrap(err, "Failed to write aws credentials into temp file.")
	}
	if err := tmpfile.Close(); err != nil {
		return "", "", errors.Wrap(err, "Failed to close into temp file.")
	}

	awsCredentials := credentials.NewSharedCredentials(tmpfile.Name(), profile)
	awsPlainCred, err := awsCredentials.Get()
	if err != nil {
		logger.WithError(err).Errorf("Failed to extract credentials for profile :%s", profile)
		return "", "", errors.Wrapf(err, "Failed to extract credentials for profile %s", profile)
	}
	return awsPlainCred.AccessKeyID, awsPlainCred.SecretAccessKey, nil
}

func GetBool(str string, defValue bool) bool {
	if str == "" {
		return defValue
	}

	res, err := strconv.ParseBool(str)
	if err != nil {
		res = defValue
	}

	return res
}

/*
 * Make sure the Velero custom resource definitions are installed. The
 * server can run without them but every request would fail.
 */
func CheckVeleroCRDs(ctx context.Context, client apiextensionsclient.Interface, logger logrus.FieldLogger) error {
	var missing []string
	for _, name := range VeleroCRDs {
		_, err := client.ApiextensionsV1().CustomResourceDefinitions().Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			logger.WithError(err).Warnf("Velero CRD %s is not available", name)
			missing = append(missing, name)
			continue
		}
		logger.Debugf("Found Velero CRD %s", name)
	}
	if len(missing) > 0 {
		return errors.Errorf("Velero CRDs not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

func GetComponentsFromImage(image string) map[string]string {
	components := make(map[string]string)

	if image == "" {
		return components
	}

	var taggedContainer string
	lastIndex := strings.LastIndex(image, "/")
	if lastIndex < 0 {
		taggedContainer = image
	} else {
		components[constants.ImageRepositoryComponent] = image[:lastIndex]
		taggedContainer = image[lastIndex+1:]
	}

	parts := strings.SplitN(taggedContainer, ":", 2)
	if len(parts) == 2 {
		components[constants.ImageVersionComponent] = parts[1]
	}
	components[constants.ImageContainerComponent] = parts[0]

	return components
}

// Return version in the format: vX.Y.Z
func GetVersionFromImage(containers []k8sv1.Container, imageName string) string {
	var tag = ""
	for _, container := range containers {
		if strings.Contains(container.Image, imageName) {
			tag = GetComponentsFromImage(container.Image)[constants.ImageVersionComponent]
			break
		}
	}
	if tag == "" {
		return ""
	}
	if strings.Contains(tag, "-") {
		return strings.Split(tag, "-")[0]
	}
	return tag
}

// If currentVersion < minVersion, return -1
// If currentVersion == minVersion, return 0
// If currentVersion > minVersion, return 1
// Invalid versions compare as lower.
func CompareVersion(currentVersion string, minVersion string) int {
	current, _ := version.NewVersion(currentVersion)
	minimum, _ := version.NewVersion(minVersion)

	if current == nil || minimum == nil {
		return -1
	}
	return current.Compare(minimum)
}
