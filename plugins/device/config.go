package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/consul/api"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
)

type Config struct {
	Store         string        `mapstructure:"store" json:"store"`
	LoggingConfig LoggingConfig `mapstructure:"logging" json:"logging"`
	MongoConfig   MongoConfig   `mapstructure:"mongo" json:"mongo"`
	SQLiteConfig  SQLiteConfig  `mapstructure:"sqlite" json:"sqlite"`
	NATSConfig    NATSConfig    `mapstructure:"nats" json:"nats"`
	HTTPConfig    HTTPConfig    `mapstructure:"http" json:"http"`
	SNMPConfig    SNMPConfig    `mapstructure:"snmp" json:"snmp"`
	RedisConfig   RedisConfig   `mapstructure:"redis" json:"redis"`
}

type LoggingConfig struct {
	LogLevel   string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	// Quiet drops stdout/stderr output when a log file is configured.
	Quiet      bool
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type SQLiteConfig struct {
	Filename string
}

type NATSConfig struct {
	Host string
}

type HTTPConfig struct {
	Address string
}

type SNMPConfig struct {
	Community string
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// RedisConfig enables the device list cache when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"store":     "store",
	"mongo-uri": "mongo.uri",
	"log-level": "logging.loglevel",
}

type ConfigManager struct {
	// mu serializes access to v between the watchers and callers.
	mu            sync.Mutex
	v             *viper.Viper
	kv            *api.KV
	key           string
	filename      string
	configPath    string
	consulAddress string
	nodeID        string
}

// NewConfigManager builds a manager for config.json in configPath. kv and
// consulAddress may be empty when no remote config is used.
func NewConfigManager(kv *api.KV, configPath string, consulAddress string, nodeID string) *ConfigManager {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(configEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &ConfigManager{
		v:             v,
		kv:            kv,
		key:           strings.Join([]string{nodeID, configKey}, "/"),
		filename:      filepath.Join(configPath, configFile),
		configPath:    configPath,
		consulAddress: consulAddress,
		nodeID:        nodeID,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreMongo)
	v.SetDefault("logging.loglevel", "info")
	v.SetDefault("logging.filename", "")
	v.SetDefault("logging.maxsize", 10)
	v.SetDefault("logging.maxbackups", 3)
	v.SetDefault("logging.maxage", 28)
	v.SetDefault("logging.compress", false)
	v.SetDefault("logging.quiet", false)
	v.SetDefault("mongo.uri", defaultMongoURI)
	v.SetDefault("mongo.database", DatabaseName)
	v.SetDefault("mongo.collection", CollectionName)
	v.SetDefault("mongo.timeout", defaultMongoTimeout)
	v.SetDefault("sqlite.filename", defaultSQLiteFile)
	v.SetDefault("nats.host", "")
	v.SetDefault("http.address", defaultHTTPAddress)
	v.SetDefault("snmp.community", "public")
	v.SetDefault("snmp.port", defaultSNMPPort)
	v.SetDefault("snmp.timeout", defaultSNMPTimeout)
	v.SetDefault("snmp.retries", 1)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", defaultCacheTTL)
}

// BindFlags lets the given flags override file and environment values.
// Flags that are not present in fs are skipped.
func (c *ConfigManager) BindFlags(fs *pflag.FlagSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ReadLocalConfig reads config.json. A missing file is not an error, the
// defaults and environment still apply.
func (c *ConfigManager) ReadLocalConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.SetConfigType(configType)
	c.v.SetConfigName(configName)
	c.v.AddConfigPath(c.configPath)
	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Infof("No %s in %s, using defaults", configFile, c.configPath)
			return nil
		}
		return fmt.Errorf("read local config file: %w", err)
	}
	log.Infof("Using config file %s", c.v.ConfigFileUsed())
	return nil
}

func (c *ConfigManager) ReadRemoteConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.SetConfigType(configType)
	err := c.v.AddRemoteProvider(configProvider, c.consulAddress, c.key)
	if err != nil {
		return fmt.Errorf("add remote provider %s: %w", c.consulAddress, err)
	}
	if err := c.v.ReadRemoteConfig(); err != nil {
		return fmt.Errorf("read remote config: %w", err)
	}
	return nil
}

func (c *ConfigManager) WriteRemoteConfig() error {
	if c.kv == nil {
		return errors.New("no consul client configured")
	}
	file, err := os.ReadFile(c.filename)
	if err != nil {
		return fmt.Errorf("read file %s: %w", c.filename, err)
	}
	p := &api.KVPair{Key: c.key, Value: file}
	_, err = c.kv.Put(p, nil)
	if err != nil {
		return fmt.Errorf("put key %s with value of file %s: %w", c.key, c.filename, err)
	}
	return nil
}

// WatchRemoteConfig polls consul until ctx is done and mirrors every
// successful read into the local config file.
func (c *ConfigManager) WatchRemoteConfig(ctx context.Context) {
	ticker := time.NewTicker(configSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		c.mu.Lock()
		err := c.v.WatchRemoteConfig()
		c.mu.Unlock()
		if err != nil {
			log.Errorf("watch remote config: %v", err)
			continue
		}
		if err := c.WriteLocalConfig(); err != nil {
			log.Errorf("write local config: %v", err)
		}
	}
}

// WatchLocalConfig calls onChange with the reloaded config whenever the
// local file is written, until ctx is done. The directory is watched so that
// files replaced by rename are picked up too.
func (c *ConfigManager) WatchLocalConfig(ctx context.Context, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new file watch: %w", err)
	}
	if err := watcher.Add(c.configPath); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config path %s: %w", c.configPath, err)
	}

	filename := filepath.Clean(c.filename)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filename {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				log.Infof("Config file %s changed (%s)", event.Name, event.Op)
				config, err := c.reloadLocalConfig()
				if err != nil {
					log.Errorf("reload config: %v", err)
					continue
				}
				onChange(config)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("watch config path %s: %v", c.configPath, err)
			}
		}
	}()
	return nil
}

func (c *ConfigManager) reloadLocalConfig() (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.SetConfigType(configType)
	c.v.SetConfigFile(c.filename)
	if err := c.v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read local config file: %w", err)
	}
	return c.load()
}

func (c *ConfigManager) WriteLocalConfig() error {
	config, err := c.Load()
	if err != nil {
		return err
	}
	configJSON, err := json.MarshalIndent(config, "", " ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.filename, configJSON, 0644); err != nil {
		return fmt.Errorf("write config as %s: %w", configFile, err)
	}
	return nil
}

func (c *ConfigManager) Load() (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *ConfigManager) load() (Config, error) {
	var config Config
	if err := c.v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, nil
}
