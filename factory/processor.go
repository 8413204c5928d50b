package factory

import (
	"github.com/allape/snapcat/config"
	"github.com/allape/snapcat/snap/processor"
	"github.com/allape/snapcat/snap/processor/annotate"
	"github.com/allape/snapcat/snap/processor/save"
	"github.com/allape/snapcat/snap/processor/serialport"
	"github.com/allape/snapcat/snap/processor/web"
)

type Processors struct {
	List []processor.Processor
	// Web is set when the web processor is enabled, its server has to be run by the caller.
	Web *web.Processor
}

func annotated(conf config.Config, enabled bool, p processor.Processor) processor.Processor {
	if !enabled {
		return p
	}
	return annotate.New(p, &annotate.Options{FontSize: conf.Annotate.FontSize})
}

func ProcessorsFromConfig(conf config.Config) (*Processors, error) {
	ps := &Processors{}

	if conf.Save.Enabled {
		l.Info().Println("saving screenshots to", conf.Save.Dir)
		p := save.New(conf.Save.Dir)
		if conf.Save.NameKey != "" {
			p.NameKey = conf.Save.NameKey
		}
		ps.List = append(ps.List, annotated(conf, conf.Save.Annotate, p))
	}

	if conf.Web.Enabled {
		l.Info().Println("serving screenshots on", conf.Web.Addr)
		ps.Web = web.New(&web.Options{
			Cors:          conf.Web.Cors,
			WebsocketPath: conf.Web.Path,
		})
		ps.List = append(ps.List, annotated(conf, conf.Web.Annotate, ps.Web))
	}

	if conf.SerialPort.Enabled {
		l.Info().Println("announcing screenshots on serial port", conf.SerialPort.Src)
		baud, err := conf.SerialPort.Ext.GetInt("baud", serialport.DefaultBaud)
		if err != nil {
			return nil, err
		}
		ps.List = append(ps.List, serialport.New(conf.SerialPort.Src, baud))
	}

	if len(ps.List) == 0 {
		l.Warn().Println("no processor enabled, screenshots are taken and dropped")
	}

	return ps, nil
}
