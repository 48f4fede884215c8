package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[Global]
namespace = backup-system
kubeconfig = /etc/velero-ui/kubeconfig

[Server]
address = :9090
metrics-address = :9091
client-qps = 5.5
client-burst = 10

[Logging]
level = debug
format = json
`

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "backup-system", cfg.Global.Namespace)
	assert.Equal(t, "/etc/velero-ui/kubeconfig", cfg.Global.Kubeconfig)
	assert.Equal(t, "", cfg.Global.Master)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, ":9091", cfg.Server.MetricsAddress)
	assert.Equal(t, float32(5.5), cfg.Server.ClientQPS)
	assert.Equal(t, 10, cfg.Server.ClientBurst)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReadConfigInvalid(t *testing.T) {
	_, err := ReadConfig("[Server]\nunknown-key = 1\n")
	assert.Error(t, err)

	_, err = ReadConfig("[Server]\nclient-burst = many\n")
	assert.Error(t, err)
}

func TestReadConfigFile(t *testing.T) {
	cfg, err := ReadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	dir, err := ioutil.TempDir("", "velero-ui-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "velero-ui.conf")
	require.NoError(t, ioutil.WriteFile(path, []byte(sampleConfig), 0600))

	cfg, err = ReadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "backup-system", cfg.Global.Namespace)

	_, err = ReadConfigFile(filepath.Join(dir, "missing.conf"))
	assert.Error(t, err)
}
