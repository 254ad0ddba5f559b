package device

import "time"

const (
	FindAllTopic  = "device.findAll"
	FindByIDTopic = "device.findByID"
	CountTopic    = "device.count"
	SeedTopic     = "device.seed"
)

const (
	DatabaseName   = "devices"
	CollectionName = "device_info"
)

const (
	defaultMongoURI     = "mongodb://mongodb:27017/"
	defaultMongoTimeout = 3 * time.Second
	defaultSQLiteFile   = "devices.db"
	defaultHTTPAddress  = ":8000"
	defaultSNMPPort     = 161
	defaultSNMPTimeout  = 2 * time.Second
	defaultCacheTTL     = 300 * time.Second
	queryTimeout        = 3 * time.Second
)

// cacheKey holds the JSON encoded device list in redis.
const cacheKey = CollectionName

const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

const (
	configType         = "json"
	configProvider     = "consul"
	configName         = "config"
	configFile         = "config.json"
	configKey          = "device_config"
	configEnvPrefix    = "DEVSEED"
	configSyncInterval = 5 * time.Second
)
