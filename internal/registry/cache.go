// internal/registry/cache.go
package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/models"
)

const openJobsKey = "jobs:open"

// Cache holds the open-jobs listing in Redis for a short TTL. The
// listing is read-only and tolerates short staleness; admission never
// reads it. A nil *Cache disables caching entirely.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "registry-cache"}),
	}
}

// GetOpenJobs returns the cached listing and whether it was present.
// Cache failures degrade to a miss.
func (c *Cache) GetOpenJobs(ctx context.Context) ([]models.Job, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, openJobsKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}

	var jobs []models.Job
	if err := json.Unmarshal([]byte(payload), &jobs); err != nil {
		c.logger.Warn("cache payload corrupt, dropping", map[string]interface{}{"error": err})
		_ = c.client.Del(ctx, openJobsKey).Err()
		return nil, false
	}

	return jobs, true
}

// SetOpenJobs stores the listing; failures are logged and ignored.
func (c *Cache) SetOpenJobs(ctx context.Context, jobs []models.Job) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(jobs)
	if err != nil {
		c.logger.Warn("cache marshal failed", map[string]interface{}{"error": err})
		return
	}

	if err := c.client.Set(ctx, openJobsKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"error": err})
	}
}

// Invalidate drops the listing after any job mutation.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, openJobsKey).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{"error": err})
	}
}
