package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedService keeps the FindAll result in redis for ttl. Every other call
// goes to the wrapped store. Redis errors are logged and the store answers.
type CachedService struct {
	IDeviceService
	client *redis.Client
	ttl    time.Duration
}

func NewCachedService(deviceService IDeviceService, client *redis.Client, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedService{
		IDeviceService: deviceService,
		client:         client,
		ttl:            ttl,
	}
}

// DialRedis connects to redisConfig.Address and checks it answers PING.
func DialRedis(ctx context.Context, redisConfig RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Address,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", redisConfig.Address, err)
	}
	return client, nil
}

func (s *CachedService) FindAll(ctx context.Context) ([]*Device, error) {
	cached, err := s.client.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var devices []*Device
		if err := json.Unmarshal(cached, &devices); err == nil {
			log.Debugf("Cache hit for %s", cacheKey)
			return devices, nil
		}
		log.Warnf("Discarding unreadable cache entry %s", cacheKey)
	case errors.Is(err, redis.Nil):
		log.Debugf("Cache miss for %s", cacheKey)
	default:
		log.Errorf("read cache %s: %v", cacheKey, err)
	}

	devices, err := s.IDeviceService.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(devices)
	if err != nil {
		return nil, fmt.Errorf("marshal devices: %w", err)
	}
	if err := s.client.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
		log.Errorf("write cache %s: %v", cacheKey, err)
	}
	return devices, nil
}

// InsertMany drops the cached list so the next FindAll sees the new rows.
func (s *CachedService) InsertMany(ctx context.Context, devices []*Device) error {
	if err := s.IDeviceService.InsertMany(ctx, devices); err != nil {
		return err
	}
	if err := s.client.Del(ctx, cacheKey).Err(); err != nil {
		log.Errorf("invalidate cache %s: %v", cacheKey, err)
	}
	return nil
}

func (s *CachedService) Close(ctx context.Context) error {
	cacheErr := s.client.Close()
	if err := s.IDeviceService.Close(ctx); err != nil {
		return err
	}
	return cacheErr
}
