package movie

import (
	"context"
	"fmt"

	"moviegen/internal/config"
	"moviegen/internal/pkg/ffmpeg"
	"moviegen/internal/pkg/movietools"
	"moviegen/internal/pkg/movietools/providers"
	"moviegen/internal/pkg/storage"
	"moviegen/internal/pkg/storagefactory"
)

// Concatenator 片段拼接接口，由 ffmpeg.Client 实现
type Concatenator interface {
	ConcatWithCrossfade(ctx context.Context, videoPaths []string, outputPath string, crossfade float64) error
}

// Bundle 一次 pipeline 运行所需的全部外部依赖
// 在服务启动时一次性创建，之后各 job 共享，不再变更
type Bundle struct {
	Text    movietools.TextProvider
	Vision  movietools.VisionProvider // 文本提供者不支持多模态时为 nil，事件图片描述退化为仅用标题
	Image   movietools.ImageProvider
	Video   movietools.VideoProvider
	Concat  Concatenator
	Storage storage.Storage
}

// NewBundle 按配置创建依赖集合
func NewBundle(ctx context.Context, cfg *config.Config) (*Bundle, error) {
	textProvider, err := providers.NewTextProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化文本生成 Provider 失败: %w", err)
	}

	imageProvider, err := providers.NewImageProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化关键帧生成 Provider 失败: %w", err)
	}

	videoProvider, err := providers.NewVideoProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化图生视频 Provider 失败: %w", err)
	}

	store, err := storagefactory.NewStorage(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("初始化存储失败: %w", err)
	}

	b := &Bundle{
		Text:    textProvider,
		Image:   imageProvider,
		Video:   videoProvider,
		Concat:  ffmpeg.NewClient(),
		Storage: store,
	}

	if vision, ok := textProvider.(movietools.VisionProvider); ok {
		b.Vision = vision
	}
	return b, nil
}
