package config

import (
	"os"
	"time"

	"github.com/allape/gogger"
	"github.com/pelletier/go-toml/v2"
)

var l = gogger.New("config")

const DefaultConfigPath = "snapcat.toml"

type Device struct {
	Serial        string   `toml:"serial"`
	Adb           string   `toml:"adb"`
	Buffer        string   `toml:"buffer"`
	Tag           string   `toml:"tag"`
	Level         string   `toml:"level"`
	QuietPeriodMs int      `toml:"quiet_period_ms"`
	SetupCommands []string `toml:"setup_commands"`
}

func (d Device) QuietPeriod() time.Duration {
	return time.Duration(d.QuietPeriodMs) * time.Millisecond
}

type Save struct {
	Enabled  bool   `toml:"enabled"`
	Dir      string `toml:"dir"`
	NameKey  string `toml:"name_key"`
	Annotate bool   `toml:"annotate"`
}

type Web struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Path     string `toml:"path"`
	Cors     bool   `toml:"cors"`
	Annotate bool   `toml:"annotate"`
}

type SerialPort struct {
	Enabled bool      `toml:"enabled"`
	Src     string    `toml:"src"`
	Ext     TagString `toml:"ext"`
}

type Annotate struct {
	FontSize float64 `toml:"font_size"`
}

type Config struct {
	Device     Device     `toml:"device"`
	Save       Save       `toml:"save"`
	Web        Web        `toml:"web"`
	SerialPort SerialPort `toml:"serialport"`
	Annotate   Annotate   `toml:"annotate"`
}

func Default() Config {
	return Config{
		Device: Device{
			Adb:           "adb",
			Buffer:        "main",
			Tag:           "screenshot_request",
			Level:         "D",
			QuietPeriodMs: 500,
		},
		Save: Save{
			Enabled: true,
			Dir:     "screenshots",
			NameKey: "name",
		},
		Web: Web{
			Enabled: false,
			Addr:    ":8080",
			Path:    "/ws",
		},
		SerialPort: SerialPort{
			Enabled: false,
		},
		Annotate: Annotate{
			FontSize: 24,
		},
	}
}

// Load reads the toml file at path over the defaults.
// The defaults are returned along with the error when the file can not be read.
func Load(path string) (Config, error) {
	config := Default()

	l.Info().Println("reading config file:", path)

	configData, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	err = toml.Unmarshal(configData, &config)
	if err != nil {
		return config, err
	}

	l.Verbose().Println("use config:", config)

	return config, nil
}
