package movietools

import (
	"context"
)

// TextProvider 文本生成接口
// 「如何调用大模型」由调用方注入，方便单测和替换实现
type TextProvider interface {
	// Generate 单轮生成，systemPrompt 可为空
	Generate(ctx context.Context, systemPrompt, query string) (string, error)
}

// VisionProvider 看图生成文本的接口
// 用于事件照片的图片描述，文本提供者支持多模态时可一并实现
type VisionProvider interface {
	// DescribeImage 根据提示词描述单张图片
	DescribeImage(ctx context.Context, prompt string, imageDataURL string) (string, error)
}

// ImageProvider 关键帧生成接口
type ImageProvider interface {
	// GenerateKeyframe 生成关键帧
	//
	// Args:
	//   - ctx: 上下文
	//   - prompt: 画面描述（角色名已替换为占位标签）
	//   - refDataURLs: 角色参考图 data URL，按角色顺序，最多 8 张；可为空
	//   - size: 输出尺寸，如 "1024x512"
	//
	// Returns:
	//   - imageData: 图片二进制数据
	//   - err: 错误信息
	GenerateKeyframe(ctx context.Context, prompt string, refDataURLs []string, size string) ([]byte, error)
}

// VideoProvider 图生视频接口
type VideoProvider interface {
	// GenerateVideoFromImage 从关键帧生成视频片段
	//
	// Args:
	//   - ctx: 上下文
	//   - imageDataURL: 关键帧的 data URL（base64）
	//   - duration: 片段时长（秒）
	//   - prompt: 原始画面描述，不带画风改写
	//
	// Returns:
	//   - videoData: 视频二进制数据
	//   - err: 错误信息
	GenerateVideoFromImage(ctx context.Context, imageDataURL string, duration int, prompt string) ([]byte, error)
}
