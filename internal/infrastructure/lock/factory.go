package lock

import (
	"fmt"

	"github.com/donhauser001/order-engine/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// FromConfig builds the keyed lock backend selected by configuration.
// The memory backend serializes within one process only; redis is
// required when several processes create versions for the same orders.
func FromConfig(lockCfg config.LockConfig, redisCfg config.RedisConfig) (Keyed, error) {
	switch lockCfg.Backend {
	case "memory":
		return NewMutex(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		return NewRedisLock(client, lockCfg.KeyPrefix,
			WithTTL(lockCfg.TTL),
			WithRetryInterval(lockCfg.RetryInterval),
		), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", lockCfg.Backend)
	}
}
