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

package logs

import (
	"bytes"
	"crypto/tls"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/velero-ui/velero-ui/pkg/storagelocation"
)

// ObjectStoreFactory returns an S3 client for a resolved storage location.
type ObjectStoreFactory func(location *storagelocation.Location, logger logrus.FieldLogger) (s3iface.S3API, error)

// NewS3ObjectStore is the ObjectStoreFactory used outside of tests.
func NewS3ObjectStore(location *storagelocation.Location, logger logrus.FieldLogger) (s3iface.S3API, error) {
	sessionOptions := GetS3SessionOptions(location, logger)
	sess, err := session.NewSessionWithOptions(sessionOptions)
	if err != nil {
		logger.WithError(err).Error("Failed to create s3 session")
		return nil, errors.Wrapf(err, "failed to create s3 session for %s", location.Endpoint)
	}
	return s3.New(sess), nil
}

// GetS3SessionOptions builds session options with the static credentials of the location.
func GetS3SessionOptions(location *storagelocation.Location, logger logrus.FieldLogger) session.Options {
	sessionOptions := session.Options{Config: aws.Config{
		Region:           aws.String(location.Region),
		Endpoint:         aws.String(location.Endpoint),
		S3ForcePathStyle: aws.Bool(location.S3ForcePathStyle),
		Credentials:      credentials.NewStaticCredentials(location.AccessKey, location.SecretKey, ""),
	}}
	if location.InsecureSkipTLSVerify {
		logger.Warnf("TLS verification is disabled for %s", location.Endpoint)
		sessionOptions.Config.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	if len(location.CACert) > 0 {
		sessionOptions.CustomCABundle = bytes.NewReader(location.CACert)
	}
	return sessionOptions
}
