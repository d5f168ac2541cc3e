package ark

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// VideoConfig Ark 视频生成配置
type VideoConfig struct {
	APIKey       string        // API Key（必需）
	BaseURL      string        // API 基础 URL（可选）
	Model        string        // 模型名称
	Ratio        string        // 视频比例，如 "16:9"，默认 "16:9"
	PollInterval time.Duration // 任务状态轮询间隔，默认 6s
	MaxWait      time.Duration // 任务最大等待时长，默认 30min
}

// VideoClient Ark 图生视频客户端
// 走异步任务 API：创建任务 -> 轮询状态 -> 下载视频
// 参考官方文档: https://www.volcengine.com/docs/82379/1520757
type VideoClient struct {
	model        string
	baseURL      string
	apiKey       string
	ratio        string
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewVideoClient 创建 Ark 图生视频客户端
func NewVideoClient(config *VideoConfig) (*VideoClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	ratio := config.Ratio
	if ratio == "" {
		ratio = "16:9"
	}
	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = 6 * time.Second
	}
	maxWait := config.MaxWait
	if maxWait <= 0 {
		maxWait = 30 * time.Minute
	}

	return &VideoClient{
		model:        config.Model,
		baseURL:      baseURL,
		apiKey:       config.APIKey,
		ratio:        ratio,
		pollInterval: pollInterval,
		maxWait:      maxWait,
	}, nil
}

// GenerateVideoFromImage 从单张关键帧生成视频（同步等待）
//
// 实现流程：
//  1. 提交任务（异步 API，返回 task_id）
//  2. 按固定间隔轮询任务状态直到终态
//  3. 下载视频数据并返回
//
// imageDataURL 为关键帧的 data URL（data:image/jpeg;base64,...），
// prompt 应使用分镜的原始画面描述，不要带画风改写
func (c *VideoClient) GenerateVideoFromImage(ctx context.Context, imageDataURL string, duration int, prompt string) ([]byte, error) {
	if duration > 12 {
		log.Warn().Int("original", duration).Msg("视频时长超过限制，已调整为 12 秒")
		duration = 12
	}
	if prompt == "" {
		prompt = "画面有明显的动态效果，镜头缓慢推进，人物有自然的动作和表情变化，背景有轻微的运动感，整体画面流畅自然，动作幅度适中"
	}

	taskID, err := c.createVideoTask(ctx, imageDataURL, prompt, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create video task: %w", err)
	}
	log.Info().Str("task_id", taskID).Msg("视频生成任务提交成功")

	startTime := time.Now()
	for {
		if time.Since(startTime) > c.maxWait {
			return nil, fmt.Errorf("video generation timeout after %v", c.maxWait)
		}

		status, videoURL, err := c.getTaskStatus(ctx, taskID)
		if err != nil {
			return nil, fmt.Errorf("failed to get task status: %w", err)
		}

		switch status {
		case "succeeded", "completed":
			if videoURL == "" {
				return nil, fmt.Errorf("video URL is empty")
			}
			videoData, err := c.downloadVideo(ctx, videoURL)
			if err != nil {
				return nil, fmt.Errorf("failed to download video: %w", err)
			}
			log.Info().Str("task_id", taskID).Int("size", len(videoData)).Msg("视频生成成功并下载完成")
			return videoData, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("video generation task %s: task_id=%s", status, taskID)
		}

		log.Debug().Str("task_id", taskID).Str("status", status).Msg("视频生成中，继续等待...")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// createVideoTask 创建视频生成任务
// POST {baseURL}/contents/generations/tasks
func (c *VideoClient) createVideoTask(ctx context.Context, imageDataURL string, prompt string, duration int) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.model,
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": prompt,
			},
			{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": imageDataURL,
				},
			},
		},
		"ratio":     c.ratio,
		"duration":  duration,
		"watermark": false,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/contents/generations/tasks", baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Str("prompt", prompt).
		Msg("创建视频生成任务")

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	// 带 base64 关键帧的请求体较大，服务器处理时间较长
	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("API 请求失败")
		return "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.ID == "" {
		return "", fmt.Errorf("task ID is empty in response")
	}
	return apiResp.ID, nil
}

// getTaskStatus 查询任务状态
// GET {baseURL}/contents/generations/tasks/{task_id}
func (c *VideoClient) getTaskStatus(ctx context.Context, taskID string) (status string, videoURL string, err error) {
	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/contents/generations/tasks/%s", baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("task_id", taskID).
			Str("response_body", string(body)).
			Msg("查询任务状态失败")
		return "", "", fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Status  string `json:"status"`
		Content struct {
			VideoURL string `json:"video_url"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	return apiResp.Status, apiResp.Content.VideoURL, nil
}

// downloadVideo 下载视频
func (c *VideoClient) downloadVideo(ctx context.Context, videoURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download video: status code %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ConvertImageToDataURL 将图片数据转换为 data URL
func ConvertImageToDataURL(imageData []byte, mimeType string) string {
	base64Data := base64.StdEncoding.EncodeToString(imageData)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}
