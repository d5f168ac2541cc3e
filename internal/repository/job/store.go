package job

import (
	"context"
	"errors"

	"moviegen/internal/model/movie"
)

// ErrNotFound 任务不存在
var ErrNotFound = errors.New("job not found")

// Store 任务状态仓库接口（供 service 层依赖）
// Update 对不存在的 id 是 no-op；Get 返回独立快照，调用方改动不会影响仓库
type Store interface {
	Create(ctx context.Context, id string) (*movie.Job, error)
	Update(ctx context.Context, id string, update *movie.JobUpdate) error
	Get(ctx context.Context, id string) (*movie.Job, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
