package job

import (
	"fmt"

	"moviegen/internal/config"
	"moviegen/internal/pkg/cache"
	"moviegen/internal/pkg/mongodb"
)

// NewStore 根据配置创建任务仓库
// memory 无外部依赖；redis / mongo 在 serve 启动时建立连接
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.Jobs.Store {
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		c, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisStore(c), nil
	case "mongo":
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		if err := mongodb.EnsureIndexes(client.Database()); err != nil {
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return NewMongoStore(client.Database()), nil
	default:
		return nil, fmt.Errorf("unsupported jobs store: %s", cfg.Jobs.Store)
	}
}
