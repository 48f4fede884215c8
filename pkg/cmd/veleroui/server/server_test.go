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

package server

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velero-ui/velero-ui/pkg/cmd"
	"github.com/velero-ui/velero-ui/pkg/common/config"
	"github.com/vmware-tanzu/velero/pkg/util/logging"
)

func newServerConfig() (*serverConfig, *pflag.FlagSet) {
	sc := &serverConfig{
		address:         cmd.DefaultAddress,
		metricsAddress:  cmd.DefaultMetricsAddress,
		clientQPS:       cmd.DefaultClientQPS,
		clientBurst:     cmd.DefaultClientBurst,
		profilerAddress: cmd.DefaultProfilerAddress,
		logLevelFlag:    logging.LogLevelFlag(logrus.InfoLevel),
		formatFlag:      logging.NewFormatFlag(),
	}
	flags := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flags.StringVar(&sc.address, "address", sc.address, "")
	flags.StringVar(&sc.metricsAddress, "metrics-address", sc.metricsAddress, "")
	flags.Float32Var(&sc.clientQPS, "client-qps", sc.clientQPS, "")
	flags.Var(sc.logLevelFlag, "log-level", "")
	return sc, flags
}

func TestApplyFileConfig(t *testing.T) {
	fileConfig, err := config.ReadConfig(`
[Global]
master = https://10.0.0.1:6443

[Server]
address = :9090
metrics-address = :9091
client-qps = 50
client-burst = 80

[Logging]
level = debug
format = json
`)
	require.NoError(t, err)

	t.Run("File values fill unset flags", func(t *testing.T) {
		sc, flags := newServerConfig()
		require.NoError(t, flags.Parse(nil))
		require.NoError(t, applyFileConfig(flags, fileConfig, sc))

		assert.Equal(t, "https://10.0.0.1:6443", sc.master)
		assert.Equal(t, ":9090", sc.address)
		assert.Equal(t, ":9091", sc.metricsAddress)
		assert.Equal(t, cmd.DefaultProfilerAddress, sc.profilerAddress)
		assert.Equal(t, float32(50), sc.clientQPS)
		assert.Equal(t, 80, sc.clientBurst)
		assert.Equal(t, logrus.DebugLevel, sc.logLevelFlag.Parse())
		assert.Equal(t, logging.FormatJSON, sc.formatFlag.Parse())
	})

	t.Run("Flags win over the file", func(t *testing.T) {
		sc, flags := newServerConfig()
		require.NoError(t, flags.Parse([]string{"--address=:7070", "--client-qps=5", "--log-level=warning"}))
		require.NoError(t, applyFileConfig(flags, fileConfig, sc))

		assert.Equal(t, ":7070", sc.address)
		assert.Equal(t, ":9091", sc.metricsAddress)
		assert.Equal(t, float32(5), sc.clientQPS)
		assert.Equal(t, logrus.WarnLevel, sc.logLevelFlag.Parse())
	})

	t.Run("Invalid log level", func(t *testing.T) {
		badConfig := &config.Config{}
		badConfig.Logging.Level = "verbose"
		sc, flags := newServerConfig()
		require.NoError(t, flags.Parse(nil))
		assert.Error(t, applyFileConfig(flags, badConfig, sc))
	})
}
