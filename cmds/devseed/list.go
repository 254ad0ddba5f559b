package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dza1/devseed/plugins/device"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored devices",
	Long:    `List every document of the device_info collection with its id, name and IP address.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json or yaml")
}

func runList(cmd *cobra.Command, args []string) error {
	deviceService, err := device.NewService(cmd.Context(), config)
	if err != nil {
		return err
	}
	defer closeService(deviceService)

	devices, err := deviceService.FindAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("find all devices: %w", err)
	}
	log.Debugf("Found %d devices", len(devices))
	return writeDevices(os.Stdout, outputFormat, devices)
}

func writeDevices(w io.Writer, format string, devices []*device.Device) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(devices); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(devices) == 0 {
			_, err := fmt.Fprintln(w, "No devices found.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tIP ADDRESS")
		fmt.Fprintln(tw, "--\t----\t----------")
		for _, d := range devices {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", d.ID, d.Name, d.IPAddress)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
