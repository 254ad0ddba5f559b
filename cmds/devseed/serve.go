package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dza1/devseed/plugins/device"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored devices over HTTP and NATS",
	Long: `Serve the device API on http.address. When nats.host is set the NATS
request/reply controller is started as well. When redis.address is set the
device list is cached in redis for redis.ttl.

Changes to the local config file, or to the consul key when --consul is set,
update the log level without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deviceService, err := device.NewService(ctx, config)
	if err != nil {
		return err
	}
	defer closeService(deviceService)

	if config.NATSConfig.Host != "" {
		nc, err := device.ConnectNATS(config.NATSConfig.Host)
		if err != nil {
			return err
		}
		defer nc.Close()
		if err := device.NewNATSController(nc, deviceService).Subscribe(); err != nil {
			return err
		}
		log.Infof("NATS controller subscribed on %s", config.NATSConfig.Host)
	}

	onChange := func(c device.Config) {
		if err := device.SetLogLevel(c.LoggingConfig.LogLevel); err != nil {
			log.Errorf("apply log level %q: %v", c.LoggingConfig.LogLevel, err)
		}
	}
	if consulAddress != "" {
		go configManager.WatchRemoteConfig(ctx)
	}
	if err := configManager.WatchLocalConfig(ctx, onChange); err != nil {
		log.Warnf("Config reload disabled: %v", err)
	}

	app := device.NewApp(deviceService, device.NewSNMPChecker(config.SNMPConfig))
	errc := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", config.HTTPConfig.Address)
		errc <- app.Listen(config.HTTPConfig.Address)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down")
		return app.Shutdown()
	}
}
