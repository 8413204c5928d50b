package factory

import (
	"testing"
	"time"

	"github.com/allape/snapcat/config"
	"github.com/allape/snapcat/snap/processor"
	"github.com/stretchr/testify/require"
)

func names(ps []processor.Processor) []string {
	var ns []string
	for _, p := range ps {
		ns = append(ns, processor.Name(p))
	}
	return ns
}

func TestProcessorsFromConfig(t *testing.T) {
	conf := config.Default()
	conf.Save.Dir = "shots"
	conf.Save.Annotate = true
	conf.Web.Enabled = true
	conf.SerialPort.Enabled = true
	conf.SerialPort.Src = "/dev/ttyACM0"
	conf.SerialPort.Ext = `baud:"115200"`

	ps, err := ProcessorsFromConfig(conf)
	require.NoError(t, err)
	require.NotNil(t, ps.Web)
	require.Equal(t, []string{"annotate>save:shots", "web", "serialport:/dev/ttyACM0"}, names(ps.List))
}

func TestProcessorsFromConfigInvalidBaud(t *testing.T) {
	conf := config.Default()
	conf.SerialPort.Enabled = true
	conf.SerialPort.Ext = `baud:"fast"`

	_, err := ProcessorsFromConfig(conf)
	require.Error(t, err)
}

func TestProcessorsFromConfigNone(t *testing.T) {
	conf := config.Default()
	conf.Save.Enabled = false

	ps, err := ProcessorsFromConfig(conf)
	require.NoError(t, err)
	require.Empty(t, ps.List)
	require.Nil(t, ps.Web)
}

func TestDeviceFromConfig(t *testing.T) {
	conf := config.Default()
	conf.Device.Serial = "emulator-5554"
	conf.Device.Tag = "paparazzo"
	conf.Device.QuietPeriodMs = 100

	require.Equal(t, "emulator-5554", DeviceFromConfig(conf).Serial())

	options := ServiceOptionsFromConfig(conf)
	require.Equal(t, "logcat -v raw -b main paparazzo:D *:S", options.Command)
	require.Equal(t, 100*time.Millisecond, options.QuietPeriod)
}
