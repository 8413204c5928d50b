package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigPath)
	err := os.WriteFile(path, []byte(`
[device]
serial = "emulator-5554"
tag = "paparazzo"
quiet_period_ms = 250
setup_commands = ["logcat -c"]

[save]
dir = "/tmp/shots"
annotate = true

[web]
enabled = true
addr = "127.0.0.1:9000"
cors = true

[serialport]
enabled = true
src = "/dev/ttyACM0"
ext = 'baud:"115200"'
`), 0644)
	require.NoError(t, err)

	conf, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "emulator-5554", conf.Device.Serial)
	require.Equal(t, "paparazzo", conf.Device.Tag)
	require.Equal(t, "main", conf.Device.Buffer)
	require.Equal(t, "adb", conf.Device.Adb)
	require.Equal(t, 250*time.Millisecond, conf.Device.QuietPeriod())
	require.Equal(t, []string{"logcat -c"}, conf.Device.SetupCommands)

	require.True(t, conf.Save.Enabled)
	require.True(t, conf.Save.Annotate)
	require.Equal(t, "/tmp/shots", conf.Save.Dir)
	require.Equal(t, "name", conf.Save.NameKey)

	require.True(t, conf.Web.Enabled)
	require.Equal(t, "/ws", conf.Web.Path)

	baud, err := conf.SerialPort.Ext.GetInt("baud", 9600)
	require.NoError(t, err)
	require.Equal(t, 115200, baud)
}

func TestLoadMissing(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.Equal(t, Default(), conf)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[device\nserial ="), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestTagString(t *testing.T) {
	ext := TagString(`baud:"abc" parity:"none"`)

	_, err := ext.GetInt("baud", 9600)
	require.Error(t, err)

	v, err := ext.GetInt("stop", 1)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	require.Equal(t, "none", ext.Get("parity"))
}
