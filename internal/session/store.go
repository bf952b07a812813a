package session

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/swiftbrowser/internal/cache"
	"github.com/andresuchdata/swiftbrowser/internal/config"
)

// NewStore picks the store named by SESSION_STORE
func NewStore(sessionCfg config.SessionConfig, cacheCfg config.CacheConfig) (Store, error) {
	switch sessionCfg.Store {
	case "", "memory":
		return NewMemoryStore(sessionCfg.TTL), nil
	case "redis":
		client, err := cache.NewRedisClient(cacheCfg)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		log.Info().Msg("using redis session store")
		return NewRedisStore(client, sessionCfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", sessionCfg.Store)
	}
}
