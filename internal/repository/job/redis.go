package job

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"moviegen/internal/model/movie"
	"moviegen/internal/pkg/cache"
)

// RedisStore 基于 Redis 的任务仓库
// 每个任务一个 JSON key，带 TTL，服务重启后可恢复轮询
type RedisStore struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewRedisStore 创建 Redis 任务仓库
func NewRedisStore(c *cache.RedisCache) *RedisStore {
	return &RedisStore{cache: c, ttl: cache.JobCacheTTL}
}

// Create 插入默认任务记录
func (s *RedisStore) Create(ctx context.Context, id string) (*movie.Job, error) {
	now := time.Now()
	j := &movie.Job{
		ID:        id,
		Status:    movie.JobStatusQueued,
		Progress:  0,
		Step:      "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cache.Set(ctx, cache.JobCacheKey(id), j, s.ttl); err != nil {
		return nil, err
	}
	return j, nil
}

// Update 读改写合并；id 不存在时记日志后 no-op
// 单个任务只被它自己的流水线协程更新，读改写无并发冲突
func (s *RedisStore) Update(ctx context.Context, id string, update *movie.JobUpdate) error {
	var j movie.Job
	err := s.cache.Get(ctx, cache.JobCacheKey(id), &j)
	if errors.Is(err, redis.Nil) {
		log.Warn().Str("job_id", id).Msg("update for unknown job ignored")
		return nil
	}
	if err != nil {
		return err
	}
	update.Apply(&j)
	return s.cache.Set(ctx, cache.JobCacheKey(id), &j, s.ttl)
}

// Get 获取任务，不存在时返回 ErrNotFound
func (s *RedisStore) Get(ctx context.Context, id string) (*movie.Job, error) {
	var j movie.Job
	err := s.cache.Get(ctx, cache.JobCacheKey(id), &j)
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Exists 查询任务是否存在
func (s *RedisStore) Exists(ctx context.Context, id string) (bool, error) {
	return s.cache.Exists(ctx, cache.JobCacheKey(id))
}

// Delete 删除任务记录
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, cache.JobCacheKey(id))
}
