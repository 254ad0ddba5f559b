package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dza1/devseed/plugins/device"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the fixture devices",
	Long: `Insert the three fixture devices (Router1, Switch1, Firewall1) into the
device_info collection with a single bulk insert.

Existing documents are left untouched, running seed twice stores every
fixture device twice.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deviceService, err := device.NewService(ctx, config)
	if err != nil {
		return err
	}
	defer closeService(deviceService)

	inserted, err := device.Seed(ctx, deviceService)
	if err != nil {
		return err
	}
	log.Infof("Seed complete, %d devices inserted", inserted)
	return nil
}

func closeService(deviceService device.IDeviceService) {
	if err := deviceService.Close(context.Background()); err != nil {
		log.Warnf("close device store: %v", err)
	}
}
