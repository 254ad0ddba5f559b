package device

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	manager := NewConfigManager(nil, t.TempDir(), "", "node")
	require.NoError(t, manager.ReadLocalConfig())

	config, err := manager.Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMongo, config.Store)
	assert.Equal(t, defaultMongoURI, config.MongoConfig.URI)
	assert.Equal(t, DatabaseName, config.MongoConfig.Database)
	assert.Equal(t, CollectionName, config.MongoConfig.Collection)
	assert.Equal(t, 3*time.Second, config.MongoConfig.Timeout)
	assert.Equal(t, "info", config.LoggingConfig.LogLevel)
	assert.False(t, config.LoggingConfig.Quiet)
	assert.EqualValues(t, defaultSNMPPort, config.SNMPConfig.Port)
	assert.Empty(t, config.RedisConfig.Address)
	assert.Equal(t, 300*time.Second, config.RedisConfig.TTL)
	assert.Equal(t, "node/"+configKey, manager.key)
}

func TestReadLocalConfig(t *testing.T) {
	dir := t.TempDir()
	content := `{
 "store": "sqlite",
 "sqlite": {"filename": "/tmp/devices.db"},
 "mongo": {"uri": "mongodb://localhost:27017/", "timeout": "5s"},
 "logging": {"loglevel": "debug", "filename": "/var/log/devseed.log", "quiet": true},
 "redis": {"address": "redis:6379", "ttl": "60s"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(content), 0644))

	manager := NewConfigManager(nil, dir, "", "node")
	require.NoError(t, manager.ReadLocalConfig())
	config, err := manager.Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, config.Store)
	assert.Equal(t, "/tmp/devices.db", config.SQLiteConfig.Filename)
	assert.Equal(t, "mongodb://localhost:27017/", config.MongoConfig.URI)
	assert.Equal(t, 5*time.Second, config.MongoConfig.Timeout)
	assert.Equal(t, DatabaseName, config.MongoConfig.Database)
	assert.Equal(t, "debug", config.LoggingConfig.LogLevel)
	assert.True(t, config.LoggingConfig.Quiet)
	assert.Equal(t, "redis:6379", config.RedisConfig.Address)
	assert.Equal(t, time.Minute, config.RedisConfig.TTL)
}

func TestReadLocalConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(`{"store":`), 0644))
	assert.Error(t, NewConfigManager(nil, dir, "", "node").ReadLocalConfig())
}

func TestConfigEnvAndFlags(t *testing.T) {
	t.Setenv("DEVSEED_MONGO_DATABASE", "inventory")
	t.Setenv("DEVSEED_STORE", "sqlite")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("store", "", "")
	fs.String("mongo-uri", "", "")
	require.NoError(t, fs.Parse([]string{"--mongo-uri", "mongodb://db:27017/"}))

	manager := NewConfigManager(nil, t.TempDir(), "", "node")
	require.NoError(t, manager.BindFlags(fs))
	require.NoError(t, manager.ReadLocalConfig())
	config, err := manager.Load()
	require.NoError(t, err)

	assert.Equal(t, "inventory", config.MongoConfig.Database)
	assert.Equal(t, StoreSQLite, config.Store)
	assert.Equal(t, "mongodb://db:27017/", config.MongoConfig.URI)
}

func TestWriteLocalConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVSEED_NATS_HOST", "nats://nats:4222")

	manager := NewConfigManager(nil, dir, "", "node")
	require.NoError(t, manager.WriteLocalConfig())
	want, err := manager.Load()
	require.NoError(t, err)

	os.Unsetenv("DEVSEED_NATS_HOST")
	reread := NewConfigManager(nil, dir, "", "node")
	require.NoError(t, reread.ReadLocalConfig())
	got, err := reread.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "nats://nats:4222", got.NATSConfig.Host)
}

func TestWriteRemoteConfigWithoutConsul(t *testing.T) {
	assert.Error(t, NewConfigManager(nil, t.TempDir(), "", "node").WriteRemoteConfig())
}

func TestWatchLocalConfig(t *testing.T) {
	dir := t.TempDir()
	manager := NewConfigManager(nil, dir, "", "node")
	require.NoError(t, manager.ReadLocalConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan Config, 16)
	require.NoError(t, manager.WatchLocalConfig(ctx, func(c Config) { changes <- c }))

	content := `{"logging": {"loglevel": "debug"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFile), []byte(content), 0644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case config := <-changes:
			if config.LoggingConfig.LogLevel == "debug" {
				return
			}
		case <-timeout:
			t.Fatal("no reload after writing config file")
		}
	}
}

func TestWatchLocalConfigMissingPath(t *testing.T) {
	manager := NewConfigManager(nil, filepath.Join(t.TempDir(), "missing"), "", "node")
	assert.Error(t, manager.WatchLocalConfig(context.Background(), func(Config) {}))
}

// Runs the file watcher reload, Load and WriteLocalConfig side by side; with
// -race any unserialized viper access fails the test.
func TestConfigManagerConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	manager := NewConfigManager(nil, dir, "", "node")
	require.NoError(t, manager.ReadLocalConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, manager.WatchLocalConfig(ctx, func(Config) {}))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, manager.WriteLocalConfig())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := manager.Load()
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
