package movie

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"moviegen/internal/config"
	"moviegen/internal/model/movie"
	jobrepo "moviegen/internal/repository/job"
)

// 任务失败时写入 error 字段的最大长度
const maxErrorLen = 3000

// RunOptions 控制一次 pipeline 运行的行为，主要供 run 子命令使用
type RunOptions struct {
	ResumeFromShots       bool    // 复用已有 Step_3 分镜结果，跳过三个规划阶段
	SkipExistingKeyframes bool    // 关键帧已存在时跳过生成，视频缺失则只补图生视频
	OnlyFirstScene        bool    // 只渲染第一个 Scene 就停止
	OnlyPlanning          bool    // 只跑三个规划阶段，不生成关键帧与视频
	OnlyFinal             bool    // 只做拼接与上传，要求片段已存在
	Crossfade             float64 // 相邻片段叠化时长（秒），<= 0 表示直接拼接
	FinalName             string  // 成片文件名（不含扩展名）
	JobID                 string  // 续跑时复用的任务 ID，为空则新建
	SynopsisPath          string  // 已有剧本梗概文件，跳过事件到剧本阶段，走 ScriptBreak LLM 拆分
}

// pipeline 单个 job 的完整流水线
// 每个 job 创建一个实例，goroutine 内串行执行各阶段
type pipeline struct {
	cfg    *config.Config
	jobs   jobrepo.Store
	bundle *Bundle
	opts   RunOptions

	jobID  string
	jobDir string

	// sleep 可注入，单测里替换掉真实等待
	sleep func(ctx context.Context, d time.Duration) error
}

func newPipeline(cfg *config.Config, jobs jobrepo.Store, bundle *Bundle, jobID string, opts RunOptions) *pipeline {
	if opts.FinalName == "" {
		opts.FinalName = cfg.Pipeline.FinalName
	}
	return &pipeline{
		cfg:    cfg,
		jobs:   jobs,
		bundle: bundle,
		opts:   opts,
		jobID:  jobID,
		jobDir: filepath.Join(cfg.Pipeline.JobsDir, jobID),
		sleep:  sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (p *pipeline) resultsDir() string { return filepath.Join(p.jobDir, "results") }
func (p *pipeline) videoDir() string   { return filepath.Join(p.jobDir, "video") }

func (p *pipeline) subScriptPath() string {
	return filepath.Join(p.resultsDir(), "Step_1_script_results.json")
}

func (p *pipeline) scenePath() string {
	return filepath.Join(p.resultsDir(), "Step_2_scene_results.json")
}

func (p *pipeline) shotPath() string {
	return filepath.Join(p.resultsDir(), "Step_3_shot_results.json")
}
func (p *pipeline) storyConfigPath() string {
	return filepath.Join(p.jobDir, "story_config.json")
}
func (p *pipeline) synopsisPath() string {
	return filepath.Join(p.jobDir, "script_synopsis.json")
}
func (p *pipeline) eventsDetailPath() string {
	return filepath.Join(p.jobDir, "events_detail.json")
}

// Run 执行完整流水线。任何阶段失败都会把 job 置为 error 并返回。
func (p *pipeline) Run(ctx context.Context, input *SubmitInput) (err error) {
	defer func() {
		// 阶段实现里的 panic 不能带崩整个进程，收敛为 job error
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
			log.Error().Str("job_id", p.jobID).Interface("panic", r).Msg("pipeline panic")
		}
		if err != nil {
			p.fail(err)
		}
	}()

	if err = os.MkdirAll(p.videoDir(), 0o755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}
	if err = os.MkdirAll(p.resultsDir(), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	// ── 1. 推断角色 ──────────────────────────────────────────────
	p.update(movie.JobStatusRunning, 5, "initializing")
	var characters []string
	if input != nil {
		characters = input.Characters
	}
	if len(characters) == 0 {
		characters = inferCharacters(p.cfg.Pipeline.CharacterRoot)
	}

	var breakdown *movie.ScriptBreakdown
	if p.opts.ResumeFromShots || p.opts.OnlyFinal {
		// 复用历史分镜结果
		if !p.opts.OnlyFinal {
			breakdown, err = p.loadBreakdown(p.shotPath())
			if err != nil {
				return err
			}
			log.Info().Str("job_id", p.jobID).Msg("使用已有分镜结果，跳过规划阶段")
		}
	} else {
		var synopsis *movie.ScriptSynopsis
		var detail *movie.EventsDetail

		if p.opts.SynopsisPath != "" {
			// 已有剧本梗概：直接读入，跳过事件到剧本阶段
			synopsis, err = loadSynopsis(p.opts.SynopsisPath)
			if err != nil {
				return err
			}
			if len(synopsis.Characters) > 0 {
				characters = synopsis.Characters
			}
			detail = &movie.EventsDetail{}
		} else {
			// ── 2. 写 story_config.json ─────────────────────────
			p.update(movie.JobStatusRunning, 10, "building story config")
			storyConfig := buildStoryConfig(input, characters)
			if err = p.writeJSON(p.storyConfigPath(), storyConfig); err != nil {
				return err
			}

			// ── 3. 剧本梗概：每个事件 看图 -> 导演稿 -> 拼接 ─────
			p.update(movie.JobStatusRunning, 15, "generating script synopsis")
			synopsis, detail, err = p.buildScriptSynopsis(ctx, input, characters)
			if err != nil {
				return err
			}
			if err = p.writeJSON(p.synopsisPath(), synopsis); err != nil {
				return err
			}
			if len(detail.Events) > 0 {
				if err = p.writeJSON(p.eventsDetailPath(), detail); err != nil {
					return err
				}
			}
		}

		// ── 4. Step_1：有事件明细则直接构造，否则走 ScriptBreak LLM ──
		p.update(movie.JobStatusRunning, 25, "planning scenes & shots")
		p.update(movie.JobStatusRunning, 30, "building sub-scripts")
		if len(detail.Events) > 0 {
			breakdown = buildBreakdownFromEvents(detail, synopsis.Characters)
			if err = p.writeJSON(p.subScriptPath(), breakdown); err != nil {
				return err
			}
		} else {
			breakdown, err = p.scriptBreak(ctx, synopsis)
			if err != nil {
				return err
			}
		}

		// ── 5. 场景与分镜规划 ───────────────────────────────────
		p.update(movie.JobStatusRunning, 45, "ScenePlanning")
		if err = p.scenePlanning(ctx, breakdown); err != nil {
			return err
		}

		p.update(movie.JobStatusRunning, 55, "ShotPlotCreate")
		if err = p.shotPlotCreate(ctx, breakdown); err != nil {
			return err
		}
	}

	if p.opts.OnlyPlanning {
		p.update(movie.JobStatusDone, 100, "planning complete")
		return nil
	}

	// ── 6. 逐镜生成关键帧与视频片段 ─────────────────────────────
	if !p.opts.OnlyFinal {
		p.update(movie.JobStatusRunning, 65, "generating keyframes & video")
		if err = p.renderShots(ctx, breakdown); err != nil {
			return err
		}
	}

	// ── 7. 拼接成片 ─────────────────────────────────────────────
	p.update(movie.JobStatusRunning, 90, "concatenating clips")
	finalPath, err := p.assembleClips(ctx)
	if err != nil {
		return err
	}

	// ── 8. 上传并生成下载链接 ───────────────────────────────────
	p.update(movie.JobStatusRunning, 95, "uploading")
	videoURL, err := p.uploadFinal(ctx, finalPath)
	if err != nil {
		return err
	}

	if uerr := p.jobs.Update(context.Background(), p.jobID, &movie.JobUpdate{
		Status:   movie.StatusPtr(movie.JobStatusDone),
		Progress: movie.IntPtr(100),
		Step:     movie.StrPtr("done"),
		VideoURL: movie.StrPtr(videoURL),
	}); uerr != nil {
		log.Warn().Err(uerr).Str("job_id", p.jobID).Msg("更新任务完成状态失败")
	}
	log.Info().Str("job_id", p.jobID).Str("video_url", videoURL).Msg("任务完成")
	return nil
}

// update 更新任务进度，存储层失败只记日志，不打断 pipeline
func (p *pipeline) update(status movie.JobStatus, progress int, step string) {
	err := p.jobs.Update(context.Background(), p.jobID, &movie.JobUpdate{
		Status:   movie.StatusPtr(status),
		Progress: movie.IntPtr(progress),
		Step:     movie.StrPtr(step),
	})
	if err != nil {
		log.Warn().Err(err).Str("job_id", p.jobID).Int("progress", progress).Msg("更新任务进度失败")
	}
}

// fail 把 job 置为 error，错误信息只保留末尾约 maxErrorLen 字节
func (p *pipeline) fail(cause error) {
	msg := cause.Error()
	if len(msg) > maxErrorLen {
		cut := len(msg) - maxErrorLen
		// 错误文本常含中文，截断点不能落在多字节字符中间
		for cut < len(msg) && !utf8.RuneStart(msg[cut]) {
			cut++
		}
		msg = msg[cut:]
	}
	err := p.jobs.Update(context.Background(), p.jobID, &movie.JobUpdate{
		Status: movie.StatusPtr(movie.JobStatusError),
		Error:  movie.StrPtr(msg),
	})
	if err != nil {
		log.Warn().Err(err).Str("job_id", p.jobID).Msg("更新任务失败状态失败")
	}
	log.Error().Err(cause).Str("job_id", p.jobID).Msg("任务失败")
}

// inferCharacters 从角色参考图根目录推断角色名（每个子目录一个角色）
func inferCharacters(characterRoot string) []string {
	entries, err := os.ReadDir(characterRoot)
	if err != nil {
		log.Warn().Err(err).Str("character_root", characterRoot).Msg("读取角色目录失败，使用默认角色")
		return []string{"Character 1", "Character 2"}
	}
	var characters []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			characters = append(characters, e.Name())
		}
	}
	if len(characters) == 0 {
		return []string{"Character 1", "Character 2"}
	}
	// 严格字典序，与角色解析时的目录顺序一致，Character N 才能按序号对上
	sort.Strings(characters)
	return characters
}

// buildStoryConfig 组装落盘的故事配置
func buildStoryConfig(input *SubmitInput, characters []string) *movie.StoryConfig {
	events := make([]*movie.Event, 0, len(input.Events))
	for _, ev := range input.Events {
		events = append(events, &movie.Event{
			Title:      ev.Title,
			Caption:    ev.Caption,
			ImagePaths: ev.PhotoPaths,
		})
	}
	return &movie.StoryConfig{
		StoryTitle: input.StoryTitle,
		Characters: characters,
		Events:     events,
	}
}

// buildBreakdownFromEvents 从事件明细直接构造 Step_1，绕开 ScriptBreak LLM。
// 一个事件对应一个 Sub-Script，Plot 取该事件的导演稿。
func buildBreakdownFromEvents(detail *movie.EventsDetail, characters []string) *movie.ScriptBreakdown {
	subScripts := make(map[string]*movie.SubScript, len(detail.Events))
	for i, ev := range detail.Events {
		plot := ev.DirectorScript
		if plot == "" {
			plot = ev.EventTitle
		}
		subScripts[fmt.Sprintf("Sub-Script %d", i+1)] = &movie.SubScript{
			Plot:                plot,
			InvolvingCharacters: characters,
			Timeline:            ev.EventTitle,
			ReasonForDivision:   fmt.Sprintf("Event %d: %s", i+1, ev.EventTitle),
		}
	}

	relationships := map[string]string{}
	if len(characters) >= 2 {
		relationships[fmt.Sprintf("%s - %s", characters[0], characters[1])] = "Friends"
	}
	return &movie.ScriptBreakdown{
		Relationships: relationships,
		SubScripts:    subScripts,
	}
}

// loadSynopsis 读取已有的剧本梗概文件
func loadSynopsis(path string) (*movie.ScriptSynopsis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingArtifactError{Path: path}
		}
		return nil, fmt.Errorf("read synopsis: %w", err)
	}
	var synopsis movie.ScriptSynopsis
	if err := json.Unmarshal(data, &synopsis); err != nil {
		return nil, fmt.Errorf("unmarshal synopsis %s: %w", path, err)
	}
	return &synopsis, nil
}

// loadBreakdown 读取历史分镜结果
func (p *pipeline) loadBreakdown(path string) (*movie.ScriptBreakdown, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingArtifactError{Path: path}
		}
		return nil, fmt.Errorf("read breakdown: %w", err)
	}
	var breakdown movie.ScriptBreakdown
	if err := json.Unmarshal(data, &breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown %s: %w", path, err)
	}
	return &breakdown, nil
}

// writeJSON 原样落盘中间产物，供审阅与续跑
func (p *pipeline) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
