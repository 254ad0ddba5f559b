package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and distribute the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", " ")
		return enc.Encode(config)
	},
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective configuration to config.json in --config-path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configManager.WriteLocalConfig()
	},
}

var configPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload config.json to the consul KV store",
	Long: `Upload config.json from --config-path to the consul key
<node-id>/device_config. Requires --consul.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configManager.WriteRemoteConfig(); err != nil {
			return err
		}
		log.Infof("Pushed config to %s", consulAddress)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configWriteCmd)
	configCmd.AddCommand(configPushCmd)
}
