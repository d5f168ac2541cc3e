package providers

import (
	"context"

	"moviegen/internal/config"
	"moviegen/internal/pkg/ark"
	"moviegen/internal/pkg/movietools"
)

// ArkVideoProvider 基于 Ark 异步任务 API 的图生视频提供者
type ArkVideoProvider struct {
	client *ark.VideoClient
}

func newArkVideoProvider(_ context.Context, cfg *config.Config) (movietools.VideoProvider, error) {
	client, err := ark.NewVideoClient(&ark.VideoConfig{
		APIKey:       cfg.Video.APIKey,
		BaseURL:      cfg.Video.BaseURL,
		Model:        cfg.Video.Model,
		Ratio:        cfg.Video.Ratio,
		PollInterval: cfg.Video.PollInterval,
	})
	if err != nil {
		return nil, err
	}
	return &ArkVideoProvider{client: client}, nil
}

// GenerateVideoFromImage 从关键帧生成视频片段，同步等待任务完成
func (p *ArkVideoProvider) GenerateVideoFromImage(ctx context.Context, imageDataURL string, duration int, prompt string) ([]byte, error) {
	return p.client.GenerateVideoFromImage(ctx, imageDataURL, duration, prompt)
}
