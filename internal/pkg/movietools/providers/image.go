package providers

import (
	"context"

	"moviegen/internal/config"
	"moviegen/internal/pkg/ark"
	"moviegen/internal/pkg/movietools"
)

// ArkImageProvider 基于 Ark 的关键帧生成提供者
type ArkImageProvider struct {
	client      *ark.ImageClient
	defaultSize string
}

func newArkImageProvider(_ context.Context, cfg *config.Config) (movietools.ImageProvider, error) {
	client, err := ark.NewImageClient(&ark.ImageConfig{
		APIKey:  cfg.Image.APIKey,
		BaseURL: cfg.Image.BaseURL,
		Model:   cfg.Image.Model,
	})
	if err != nil {
		return nil, err
	}
	return &ArkImageProvider{
		client:      client,
		defaultSize: cfg.Image.Size,
	}, nil
}

// GenerateKeyframe 生成分镜关键帧，带参考图走图生图，否则走文生图
func (p *ArkImageProvider) GenerateKeyframe(ctx context.Context, prompt string, refDataURLs []string, size string) ([]byte, error) {
	if size == "" {
		size = p.defaultSize
	}
	return p.client.GenerateImageWithRefs(ctx, prompt, refDataURLs, size)
}
