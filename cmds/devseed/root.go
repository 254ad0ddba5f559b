package main

import (
	"fmt"
	"io"

	"github.com/dza1/devseed/plugins/device"
	"github.com/hashicorp/consul/api"
	"github.com/spf13/cobra"
)

var (
	configManager *device.ConfigManager
	config        device.Config
	logFile       io.Closer

	// CLI flags
	configPath    string
	consulAddress string
	nodeID        string
)

var rootCmd = &cobra.Command{
	Use:   "devseed",
	Short: "Seed and serve the device inventory",
	Long: `devseed loads the device fixture into the devices database and serves
the stored devices over HTTP and NATS.

Configuration is read from config.json in --config-path, DEVSEED_* environment
variables and flags, in increasing order of precedence. With --consul the
config is read from the consul KV key <node-id>/device_config instead.

Examples:
  devseed seed                          Insert the three fixture devices
  devseed list --output yaml            Print stored devices
  devseed serve                         Run the HTTP API and NATS controller`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return loadConfig(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config-path", ".", "Directory containing config.json")
	flags.StringVar(&consulAddress, "consul", "", "Consul address to read remote config from")
	flags.StringVar(&nodeID, "node-id", "devseed", "Node id used as consul key prefix")
	flags.String("store", "", "Device store: mongo or sqlite")
	flags.String("mongo-uri", "", "MongoDB connection URI")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig(cmd *cobra.Command) error {
	var kv *api.KV
	if consulAddress != "" {
		consulConfig := api.DefaultConfig()
		consulConfig.Address = consulAddress
		client, err := api.NewClient(consulConfig)
		if err != nil {
			return fmt.Errorf("consul client %s: %w", consulAddress, err)
		}
		kv = client.KV()
	}

	configManager = device.NewConfigManager(kv, configPath, consulAddress, nodeID)
	if err := configManager.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	// push uploads the local file, so it never reads the remote copy
	if consulAddress != "" && cmd != configPushCmd {
		if err := configManager.ReadRemoteConfig(); err != nil {
			return err
		}
	} else if err := configManager.ReadLocalConfig(); err != nil {
		return err
	}

	var err error
	config, err = configManager.Load()
	if err != nil {
		return err
	}
	logFile, err = device.InitLogger(config.LoggingConfig)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
