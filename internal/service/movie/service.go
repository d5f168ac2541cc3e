package movie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"moviegen/internal/config"
	"moviegen/internal/model/movie"
	"moviegen/internal/pkg/id"
	jobrepo "moviegen/internal/repository/job"
)

// ErrJobNotFound 任务不存在
var ErrJobNotFound = jobrepo.ErrNotFound

// ErrInvalidSubmission 提交参数非法（如事件列表为空）
var ErrInvalidSubmission = errors.New("invalid submission")

// EventInput 单个事件的提交内容
type EventInput struct {
	Title   string
	Caption string
	Photos  []*multipart.FileHeader

	// PhotoPaths 照片落盘后的绝对路径，由 SubmitJob 填充
	PhotoPaths []string
}

// SubmitInput 一次生成任务的提交内容
type SubmitInput struct {
	StoryTitle string
	Events     []*EventInput

	// Characters 可选，为空时从角色参考图目录推断
	Characters []string
}

// Service 故事成片服务接口
type Service interface {
	// SubmitJob 创建任务并在后台启动 pipeline
	SubmitJob(ctx context.Context, input *SubmitInput) (*movie.Job, error)

	// GetJob 查询任务状态
	GetJob(ctx context.Context, jobID string) (*movie.Job, error)

	// DeleteJob 删除任务记录并清理工作目录
	DeleteJob(ctx context.Context, jobID string) error

	// RunJob 同步执行一次 pipeline，供 run 子命令使用
	RunJob(ctx context.Context, input *SubmitInput, opts RunOptions) (*movie.Job, error)
}

type movieService struct {
	cfg  *config.Config
	jobs jobrepo.Store

	// bundle 懒初始化。并发提交时必须串行构建，
	// provider 客户端只建一份，失败则留给下一次提交重试
	bundleMu sync.Mutex
	bundle   *Bundle
}

// NewService 创建故事成片服务
func NewService(cfg *config.Config, jobs jobrepo.Store) Service {
	return &movieService{
		cfg:  cfg,
		jobs: jobs,
	}
}

func (s *movieService) getBundle(ctx context.Context) (*Bundle, error) {
	s.bundleMu.Lock()
	defer s.bundleMu.Unlock()
	if s.bundle != nil {
		return s.bundle, nil
	}
	b, err := NewBundle(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.bundle = b
	return b, nil
}

func (s *movieService) SubmitJob(ctx context.Context, input *SubmitInput) (*movie.Job, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	bundle, err := s.getBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化生成依赖失败: %w", err)
	}

	jobID := id.New()
	job, err := s.jobs.Create(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}

	if err := s.saveEventPhotos(jobID, input); err != nil {
		// 落盘失败时任务还没开始跑，直接标记失败
		if uerr := s.jobs.Update(ctx, jobID, &movie.JobUpdate{
			Status: movie.StatusPtr(movie.JobStatusError),
			Error:  movie.StrPtr(err.Error()),
		}); uerr != nil {
			log.Warn().Err(uerr).Str("job_id", jobID).Msg("更新任务失败状态失败")
		}
		return nil, fmt.Errorf("保存事件照片失败: %w", err)
	}

	runner := newPipeline(s.cfg, s.jobs, bundle, jobID, RunOptions{
		Crossfade: s.cfg.Pipeline.Crossfade,
		FinalName: s.cfg.Pipeline.FinalName,
	})

	// 后台执行，不随请求 ctx 取消
	go func() {
		if err := runner.Run(context.Background(), input); err != nil {
			log.Error().Err(err).Str("job_id", jobID).Msg("pipeline 执行失败")
		}
	}()

	log.Info().Str("job_id", jobID).Str("story_title", input.StoryTitle).Int("events", len(input.Events)).Msg("任务已提交")
	return job, nil
}

func (s *movieService) GetJob(ctx context.Context, jobID string) (*movie.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

// DeleteJob 尽力而为且幂等：目录清理失败只记日志，重复删除同样成功
func (s *movieService) DeleteJob(ctx context.Context, jobID string) error {
	jobDir := filepath.Join(s.cfg.Pipeline.JobsDir, jobID)
	if err := os.RemoveAll(jobDir); err != nil {
		log.Warn().Err(err).Str("job_dir", jobDir).Msg("清理任务工作目录失败")
	}
	return s.jobs.Delete(ctx, jobID)
}

func (s *movieService) RunJob(ctx context.Context, input *SubmitInput, opts RunOptions) (*movie.Job, error) {
	// 续跑/只拼接/已有剧本梗概时不需要事件输入
	if !opts.ResumeFromShots && !opts.OnlyFinal && opts.SynopsisPath == "" {
		if err := validateSubmission(input); err != nil {
			return nil, err
		}
	}

	bundle, err := s.getBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化生成依赖失败: %w", err)
	}

	// 续跑时复用原任务目录，其余情况生成新任务
	jobID := opts.JobID
	if jobID == "" {
		jobID = id.New()
	}
	if _, err := s.jobs.Create(ctx, jobID); err != nil {
		return nil, fmt.Errorf("创建任务失败: %w", err)
	}
	if input != nil {
		if err := s.saveEventPhotos(jobID, input); err != nil {
			return nil, fmt.Errorf("保存事件照片失败: %w", err)
		}
	}

	runner := newPipeline(s.cfg, s.jobs, bundle, jobID, opts)
	if err := runner.Run(ctx, input); err != nil {
		return nil, err
	}
	return s.jobs.Get(ctx, jobID)
}

// validateSubmission 同步校验提交参数
func validateSubmission(input *SubmitInput) error {
	if input == nil || strings.TrimSpace(input.StoryTitle) == "" {
		return fmt.Errorf("%w: story_title 不能为空", ErrInvalidSubmission)
	}
	if len(input.Events) == 0 {
		return fmt.Errorf("%w: 事件列表不能为空", ErrInvalidSubmission)
	}
	for i, ev := range input.Events {
		if ev == nil || strings.TrimSpace(ev.Title) == "" {
			return fmt.Errorf("%w: 第 %d 个事件缺少标题", ErrInvalidSubmission, i+1)
		}
	}
	return nil
}

// saveEventPhotos 把上传的事件照片写到任务目录，并回填 PhotoPaths
func (s *movieService) saveEventPhotos(jobID string, input *SubmitInput) error {
	jobDir := filepath.Join(s.cfg.Pipeline.JobsDir, jobID)
	for i, ev := range input.Events {
		// run 子命令直接给本地路径，没有要落盘的上传文件
		if len(ev.Photos) == 0 {
			continue
		}
		var saved []string
		for j, fh := range ev.Photos {
			if fh == nil || fh.Filename == "" {
				continue
			}
			ext := filepath.Ext(fh.Filename)
			if ext == "" {
				ext = ".jpg"
			}
			dest := filepath.Join(jobDir, "events", fmt.Sprintf("%d", i), fmt.Sprintf("%04d%s", j, ext))
			if err := saveMultipartFile(fh, dest); err != nil {
				return err
			}
			saved = append(saved, dest)
		}
		ev.PhotoPaths = saved
	}
	return nil
}

func saveMultipartFile(fh *multipart.FileHeader, dest string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
