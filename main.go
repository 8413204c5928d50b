package main

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/allape/snapcat/config"
	"github.com/allape/snapcat/factory"
	"github.com/allape/snapcat/logger"
	"github.com/allape/snapcat/snap"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var log = logger.New("[main]")
var vlog = logger.NewVerboseLogger("[main]")

var (
	flagConfigFilePath string
	flagSerial         string
	flagTag            string
	flagDir            string
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFilePath, "config", "c", "", "config file to load, default is "+config.DefaultConfigPath+" in current directory")
	rootCmd.PersistentFlags().StringVarP(&flagSerial, "serial", "s", "", "serial of the device to watch, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&flagTag, "tag", "", "log tag carrying screenshot requests, overrides the config file")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "directory screenshots are saved to, overrides the config file")

	rootCmd.AddCommand(shootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

var rootCmd = &cobra.Command{
	Use:          "snapcat",
	Short:        "Take screenshots of an Android device whenever it asks for one in its log",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         doRun,
}

var shootCmd = &cobra.Command{
	Use:   "shoot [marker]",
	Short: "Take one screenshot right now, marker is a line like {name=home}",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doShoot,
}

func loadConfig() (config.Config, error) {
	path := flagConfigFilePath
	if path == "" {
		path = config.DefaultConfigPath
	}

	conf, err := config.Load(path)
	if err != nil {
		if flagConfigFilePath != "" || !errors.Is(err, fs.ErrNotExist) {
			return conf, err
		}
		log.Println("no", path, "found, using defaults")
	}

	if flagSerial != "" {
		conf.Device.Serial = flagSerial
	}
	if flagTag != "" {
		conf.Device.Tag = flagTag
	}
	if flagDir != "" {
		conf.Save.Dir = flagDir
	}

	vlog.Println("config:", conf)

	return conf, nil
}

func doRun(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	processors, err := factory.ProcessorsFromConfig(conf)
	if err != nil {
		return err
	}

	dev := factory.DeviceFromConfig(conf)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = dev.Setup(ctx)
	if err != nil {
		return err
	}

	service := snap.New(dev, factory.ServiceOptionsFromConfig(conf), processors.List...)

	g, gctx := errgroup.WithContext(ctx)

	if processors.Web != nil {
		g.Go(func() error {
			return processors.Web.ListenAndServe(gctx, conf.Web.Addr)
		})
	}

	g.Go(func() error {
		err := service.Start(gctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		log.Println("started, waiting for requests from", dev.Serial())

		select {
		case <-gctx.Done():
			return nil
		case <-service.Done():
			log.Println("lost the log of", dev.Serial(), "no more screenshots until restarted")
		}

		<-gctx.Done()
		return nil
	})

	err = g.Wait()

	log.Println("exiting")

	return errors.Join(err, service.Finish())
}

func doShoot(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	processors, err := factory.ProcessorsFromConfig(conf)
	if err != nil {
		return err
	}
	if processors.Web != nil {
		log.Println("web processor keeps the screenshot in memory only, nothing is served in shoot mode")
	}

	line := "{}"
	if len(args) == 1 {
		line = args[0]
	}

	dispatcher := snap.NewDispatcher(factory.DeviceFromConfig(conf), processors.List...)

	err = dispatcher.Dispatch(cmd.Context(), line)
	if err != nil {
		_ = dispatcher.Finish()
		return err
	}

	return dispatcher.Finish()
}
