package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"moviegen/internal/model/movie"
	jobrepo "moviegen/internal/repository/job"
	moviesvc "moviegen/internal/service/movie"
)

var runFlags struct {
	title     string
	events    []string
	photosDir string

	synopsis          string
	jobID             string
	resumeFromShots   bool
	skipExistingKeyfr bool
	onlyFirstScene    bool
	onlyPlanning      bool
	onlyFinal         bool
	crossfade         float64
	finalName         string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generation pipeline once and exit",
	Long: `Run the full story-to-video pipeline in the foreground without
starting the API server. Useful for batch jobs and for resuming a
previously planned job from its saved artifacts.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	// Story input
	flags.StringVar(&runFlags.title, "title", "", "story title")
	flags.StringArrayVar(&runFlags.events, "event", nil, "event title, repeatable; use 'title|caption' to attach a caption")
	flags.StringVar(&runFlags.photosDir, "photos-dir", "", "directory with one numbered subdirectory of photos per event (0, 1, ...)")

	// Pipeline control
	flags.StringVar(&runFlags.synopsis, "synopsis", "", "path to an existing script synopsis JSON, skips synopsis generation")
	flags.StringVar(&runFlags.jobID, "job-id", "", "reuse an existing job directory instead of creating a new one")
	flags.BoolVar(&runFlags.resumeFromShots, "resume-from-shots", false, "resume from saved shot planning results")
	flags.BoolVar(&runFlags.skipExistingKeyfr, "skip-existing-keyframes", false, "skip shots whose keyframe or clip already exists")
	flags.BoolVar(&runFlags.onlyFirstScene, "only-first-scene", false, "render only the first scene, for quick iteration")
	flags.BoolVar(&runFlags.onlyPlanning, "only-planning", false, "stop after planning, render nothing")
	flags.BoolVar(&runFlags.onlyFinal, "only-final", false, "only assemble and upload from existing clips")
	flags.Float64Var(&runFlags.crossfade, "crossfade", 0, "crossfade duration in seconds between clips (0 = hard cut)")
	flags.StringVar(&runFlags.finalName, "final-name", "", "final video file name without extension")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	opts := moviesvc.RunOptions{
		SynopsisPath:          runFlags.synopsis,
		JobID:                 runFlags.jobID,
		ResumeFromShots:       runFlags.resumeFromShots,
		SkipExistingKeyframes: runFlags.skipExistingKeyfr,
		OnlyFirstScene:        runFlags.onlyFirstScene,
		OnlyPlanning:          runFlags.onlyPlanning,
		OnlyFinal:             runFlags.onlyFinal,
		Crossfade:             runFlags.crossfade,
		FinalName:             runFlags.finalName,
	}

	input, err := buildRunInput(opts)
	if err != nil {
		return err
	}

	// run 子命令总是用内存任务仓库，进度直接打到日志
	svc := moviesvc.NewService(cfg, jobrepo.NewMemoryStore())

	job, err := svc.RunJob(cmd.Context(), input, opts)
	if err != nil {
		return err
	}

	if job.Status == movie.JobStatusError {
		return fmt.Errorf("pipeline failed: %s", job.Error)
	}

	log.Info().Str("job_id", job.ID).Str("video_url", job.VideoURL).Msg("pipeline finished")
	fmt.Println(job.VideoURL)
	return nil
}

// buildRunInput 把命令行参数组装成提交内容
// 续跑/只拼接/已有梗概的模式不需要事件输入
func buildRunInput(opts moviesvc.RunOptions) (*moviesvc.SubmitInput, error) {
	if opts.ResumeFromShots || opts.OnlyFinal || opts.SynopsisPath != "" {
		return nil, nil
	}

	if runFlags.title == "" {
		return nil, fmt.Errorf("--title is required")
	}
	if len(runFlags.events) == 0 {
		return nil, fmt.Errorf("at least one --event is required")
	}

	input := &moviesvc.SubmitInput{StoryTitle: runFlags.title}
	for i, ev := range runFlags.events {
		title, caption, _ := strings.Cut(ev, "|")
		event := &moviesvc.EventInput{Title: title, Caption: caption}
		if runFlags.photosDir != "" {
			photos, err := collectEventPhotos(runFlags.photosDir, i)
			if err != nil {
				return nil, err
			}
			event.PhotoPaths = photos
		}
		input.Events = append(input.Events, event)
	}
	return input, nil
}

func collectEventPhotos(root string, index int) ([]string, error) {
	dir := filepath.Join(root, fmt.Sprintf("%d", index))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read photos dir: %w", err)
	}

	var photos []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png", ".webp":
			photos = append(photos, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(photos)
	return photos, nil
}
