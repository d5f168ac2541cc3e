package providers

import (
	"context"
	"fmt"
	"sync"

	"moviegen/internal/config"
	"moviegen/internal/pkg/movietools"
)

// Kind 生成能力类型
type Kind string

const (
	KindText  Kind = "text"  // 剧本/分镜文本生成
	KindImage Kind = "image" // 关键帧生成
	KindVideo Kind = "video" // 图生视频
)

// 各能力的构造函数签名，按 provider 名注册
// 新增 provider 只需注册构造函数，编排逻辑不感知具体实现
type (
	TextConstructor  func(ctx context.Context, cfg *config.Config) (movietools.TextProvider, error)
	ImageConstructor func(ctx context.Context, cfg *config.Config) (movietools.ImageProvider, error)
	VideoConstructor func(ctx context.Context, cfg *config.Config) (movietools.VideoProvider, error)
)

var (
	registryOnce      sync.Once
	textConstructors  map[string]TextConstructor
	imageConstructors map[string]ImageConstructor
	videoConstructors map[string]VideoConstructor
)

func ensureDefaults() {
	registryOnce.Do(func() {
		textConstructors = map[string]TextConstructor{
			"openai": newEinoTextProvider,
			"azure":  newEinoTextProvider,
			"ark":    newEinoTextProvider,
		}
		imageConstructors = map[string]ImageConstructor{
			"ark": newArkImageProvider,
		}
		videoConstructors = map[string]VideoConstructor{
			"ark": newArkVideoProvider,
		}
	})
}

// RegisterText 注册文本生成构造函数
func RegisterText(name string, c TextConstructor) {
	ensureDefaults()
	textConstructors[name] = c
}

// RegisterImage 注册关键帧生成构造函数
func RegisterImage(name string, c ImageConstructor) {
	ensureDefaults()
	imageConstructors[name] = c
}

// RegisterVideo 注册图生视频构造函数
func RegisterVideo(name string, c VideoConstructor) {
	ensureDefaults()
	videoConstructors[name] = c
}

// NewTextProvider 按 cfg.AI.Provider 创建文本生成提供者
func NewTextProvider(ctx context.Context, cfg *config.Config) (movietools.TextProvider, error) {
	ensureDefaults()
	name := cfg.AI.Provider
	if name == "" {
		name = "openai"
	}
	c, ok := textConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported %s provider: %s", KindText, name)
	}
	return c(ctx, cfg)
}

// NewImageProvider 按 cfg.Image.Provider 创建关键帧生成提供者
func NewImageProvider(ctx context.Context, cfg *config.Config) (movietools.ImageProvider, error) {
	ensureDefaults()
	name := cfg.Image.Provider
	if name == "" {
		name = "ark"
	}
	c, ok := imageConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported %s provider: %s", KindImage, name)
	}
	return c(ctx, cfg)
}

// NewVideoProvider 按 cfg.Video.Provider 创建图生视频提供者
func NewVideoProvider(ctx context.Context, cfg *config.Config) (movietools.VideoProvider, error) {
	ensureDefaults()
	name := cfg.Video.Provider
	if name == "" {
		name = "ark"
	}
	c, ok := videoConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unsupported %s provider: %s", KindVideo, name)
	}
	return c(ctx, cfg)
}
