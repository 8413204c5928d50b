package factory

import (
	"github.com/allape/snapcat/config"
	"github.com/allape/snapcat/snap"
	"github.com/allape/snapcat/snap/device/adb"
)

func DeviceFromConfig(conf config.Config) *adb.Device {
	if conf.Device.Serial == "" {
		l.Warn().Println("device serial is empty, adb picks the only connected device")
	} else {
		l.Info().Println("device is", conf.Device.Serial)
	}

	return adb.NewDevice(conf.Device.Serial, &adb.Options{
		Adb:           conf.Device.Adb,
		SetupCommands: conf.Device.SetupCommands,
	})
}

func ServiceOptionsFromConfig(conf config.Config) *snap.Options {
	return &snap.Options{
		Command:     snap.LogcatCommand(conf.Device.Buffer, conf.Device.Tag, conf.Device.Level),
		QuietPeriod: conf.Device.QuietPeriod(),
	}
}
