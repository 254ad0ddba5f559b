package device

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownStore = errors.New("unknown store")

// NewService opens the store selected by config.Store. When redis.address is
// set and reachable, FindAll is served through the redis cache.
func NewService(ctx context.Context, config Config) (IDeviceService, error) {
	service, err := openStore(ctx, config)
	if err != nil {
		return nil, err
	}
	if config.RedisConfig.Address == "" {
		return service, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	client, err := DialRedis(dialCtx, config.RedisConfig)
	if err != nil {
		log.Warnf("Device cache disabled: %v", err)
		return service, nil
	}
	log.Infof("Caching devices in redis %s for %s", config.RedisConfig.Address, config.RedisConfig.TTL)
	return NewCachedService(service, client, config.RedisConfig.TTL), nil
}

func openStore(ctx context.Context, config Config) (IDeviceService, error) {
	switch config.Store {
	case StoreMongo, "":
		service, err := DialMongo(ctx, config.MongoConfig)
		if err != nil {
			return nil, err
		}
		return service, nil
	case StoreSQLite:
		log.Infof("Opening sqlite database %s", config.SQLiteConfig.Filename)
		service, err := OpenSqlite3(config.SQLiteConfig.Filename)
		if err != nil {
			return nil, err
		}
		return service, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, config.Store)
	}
}
