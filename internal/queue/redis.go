package queue

import (
	"strings"

	"github.com/hibiken/asynq"

	"linkedin-content-platform/internal/config"
)

// ConnOpt builds the asynq Redis connection options from config, accepting
// either a redis:// URL or a plain host:port address.
func ConnOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	if strings.HasPrefix(cfg.RedisURL, "redis://") || strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return asynq.ParseRedisURI(cfg.RedisURL)
	}
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
