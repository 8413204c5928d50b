package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allape/snapcat/config"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultConfigPath)
	require.NoError(t, os.WriteFile(path, []byte("[device]\nserial = \"from-file\"\ntag = \"file-tag\"\n"), 0644))

	flagConfigFilePath = path
	flagSerial = "from-flag"
	flagDir = "flag-dir"
	t.Cleanup(func() {
		flagConfigFilePath, flagSerial, flagTag, flagDir = "", "", "", ""
	})

	conf, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "from-flag", conf.Device.Serial)
	require.Equal(t, "file-tag", conf.Device.Tag)
	require.Equal(t, "flag-dir", conf.Save.Dir)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	flagConfigFilePath = filepath.Join(t.TempDir(), "missing.toml")
	t.Cleanup(func() {
		flagConfigFilePath = ""
	})

	_, err := loadConfig()
	require.Error(t, err)
}
