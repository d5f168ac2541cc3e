package job

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"moviegen/internal/model/movie"
)

// MemoryStore 内存任务仓库
// 单把互斥锁保护整个 map；操作频率远低于流水线时长，粗粒度足够
type MemoryStore struct {
	mu   sync.Mutex
	jobs map[string]*movie.Job
}

// NewMemoryStore 创建内存任务仓库
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*movie.Job)}
}

// Create 插入默认任务记录（queued / progress 0）
func (s *MemoryStore) Create(ctx context.Context, id string) (*movie.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	j := &movie.Job{
		ID:        id,
		Status:    movie.JobStatusQueued,
		Progress:  0,
		Step:      "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[id] = j
	return snapshot(j), nil
}

// Update 合并非 nil 字段；id 不存在时记日志后 no-op
func (s *MemoryStore) Update(ctx context.Context, id string, update *movie.JobUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		log.Warn().Str("job_id", id).Msg("update for unknown job ignored")
		return nil
	}
	update.Apply(j)
	return nil
}

// Get 返回独立快照，不存在时返回 ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*movie.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(j), nil
}

// Exists 查询任务是否存在
func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.jobs[id]
	return ok, nil
}

// Delete 删除任务记录；不存在时 no-op
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, id)
	return nil
}

func snapshot(j *movie.Job) *movie.Job {
	cp := *j
	return &cp
}
