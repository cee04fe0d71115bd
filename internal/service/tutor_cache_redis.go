package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
)

const (
	redisTutorCachePrefix = "users:tutors:v2:"
	redisTutorGenKey      = "users:tutors:gen"
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// redisTutorCache falla abierto: cualquier error de Redis es un miss.
type redisTutorCache struct {
	client  redisKV
	ttl     time.Duration
	prefix  string
	genKey  string
	timeout time.Duration
	logger  *zap.Logger
}

func NewRedisTutorCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) TutorCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisTutorCache{
		client:  client,
		ttl:     ttl,
		prefix:  redisTutorCachePrefix,
		genKey:  redisTutorGenKey,
		timeout: 500 * time.Millisecond,
		logger:  logger,
	}
}

// Generation devuelve la generacion actual; sin clave es 0. Con Redis caido
// devuelve false y el listado no se cachea.
func (c *redisTutorCache) Generation(ctx context.Context) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	gen, err := c.client.Get(ctx, c.genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		c.logger.Warn("tutor cache generation failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

func (c *redisTutorCache) Get(ctx context.Context, gen int64) ([]domain.TutorListing, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(gen)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("tutor cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var tutors []domain.TutorListing
	if err := json.Unmarshal(raw, &tutors); err != nil {
		c.logger.Warn("tutor cache decode failed", zap.Error(err))
		return nil, false
	}
	return tutors, true
}

func (c *redisTutorCache) Set(ctx context.Context, gen int64, tutors []domain.TutorListing) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(tutors)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, c.key(gen), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("tutor cache set failed", zap.Error(err))
	}
}

func (c *redisTutorCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Incr(ctx, c.genKey).Err(); err != nil {
		// sin avance de generacion el listado queda viejo hasta que venza el TTL
		c.logger.Warn("tutor cache invalidate failed", zap.Error(err))
	}
}

func (c *redisTutorCache) key(gen int64) string {
	return c.prefix + strconv.FormatInt(gen, 10)
}
