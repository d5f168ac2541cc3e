package movie

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"moviegen/internal/pkg/movietools"
)

// 成片下载链接有效期
const finalVideoURLTTL = 24 * time.Hour

// assembleClips 把 video 目录下的片段按自然序拼接为成片
func (p *pipeline) assembleClips(ctx context.Context) (string, error) {
	finalName := p.opts.FinalName
	finalPath := filepath.Join(p.videoDir(), finalName+".mp4")

	entries, err := os.ReadDir(p.videoDir())
	if err != nil {
		return "", fmt.Errorf("read video dir: %w", err)
	}

	var clips []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".mp4") {
			continue
		}
		// 跳过历史成片，避免重跑时把上一次结果拼进来
		if strings.HasPrefix(name, "final_") || name == finalName+".mp4" {
			continue
		}
		clips = append(clips, filepath.Join(p.videoDir(), name))
	}
	if len(clips) == 0 {
		return "", &MissingArtifactError{Path: filepath.Join(p.videoDir(), "*.mp4")}
	}
	movietools.NatSort(clips)

	crossfade := p.opts.Crossfade
	if crossfade == 0 {
		crossfade = p.cfg.Pipeline.Crossfade
	}

	log.Info().
		Str("job_id", p.jobID).
		Int("clips", len(clips)).
		Float64("crossfade", crossfade).
		Msg("拼接片段")

	if err := p.bundle.Concat.ConcatWithCrossfade(ctx, clips, finalPath, crossfade); err != nil {
		return "", fmt.Errorf("concat clips: %w", err)
	}
	if !fileExists(finalPath) {
		return "", &MissingArtifactError{Path: finalPath}
	}
	return finalPath, nil
}

// uploadFinal 上传成片并返回带限时签名的下载链接
func (p *pipeline) uploadFinal(ctx context.Context, finalPath string) (string, error) {
	f, err := os.Open(finalPath)
	if err != nil {
		return "", fmt.Errorf("open final video: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("jobs/%s/final.mp4", p.jobID)
	if _, err := p.bundle.Storage.Upload(ctx, key, f, "video/mp4"); err != nil {
		return "", fmt.Errorf("upload final video: %w", err)
	}

	url, err := p.bundle.Storage.GetPresignedDownloadURL(ctx, key, finalVideoURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign final video: %w", err)
	}
	return url, nil
}
