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

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

const defaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// ImageConfig Ark 图片生成配置
type ImageConfig struct {
	APIKey  string // API Key（必需）
	BaseURL string // API 基础 URL（可选，默认: https://ark.cn-beijing.volces.com/api/v3）
	Model   string // 模型名称
}

// ImageClient Ark 图片生成客户端
// 文生图走 SDK：volcengine-go-sdk arkruntime.GenerateImages()
// 参考图生图走 HTTP：SDK 请求结构暂不支持 image 参数
type ImageClient struct {
	client  *arkruntime.Client
	model   string
	baseURL string
	apiKey  string
}

// NewImageClient 创建 Ark 图片生成客户端
func NewImageClient(config *ImageConfig) (*ImageClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ark api key is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var opts []arkruntime.ConfigOption
	opts = append(opts, arkruntime.WithBaseUrl(baseURL))
	arkClient := arkruntime.NewClientWithApiKey(config.APIKey, opts...)

	return &ImageClient{
		client:  arkClient,
		model:   config.Model,
		baseURL: baseURL,
		apiKey:  config.APIKey,
	}, nil
}

// GenerateImage 文生图（同步接口）
func (c *ImageClient) GenerateImage(ctx context.Context, prompt string, size string) ([]byte, error) {
	if size == "" {
		size = "1024x512"
	}

	responseFormat := "b64_json"
	watermark := false

	input := model.GenerateImagesRequest{
		Model:          c.model,
		Prompt:         prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := c.client.GenerateImages(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}
	firstImage := output.Data[0]
	if firstImage.B64Json == nil {
		return nil, fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*firstImage.B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}
	return imageData, nil
}

// GenerateImageWithRefs 参考图生图（同步接口）
// refDataURLs 为角色参考图的 data URL 列表，按角色顺序传入，
// 模型据此保持角色长相/服装一致
func (c *ImageClient) GenerateImageWithRefs(ctx context.Context, prompt string, refDataURLs []string, size string) ([]byte, error) {
	if len(refDataURLs) == 0 {
		return c.GenerateImage(ctx, prompt, size)
	}
	if size == "" {
		size = "1024x512"
	}

	requestBody := map[string]interface{}{
		"model":           c.model,
		"prompt":          prompt,
		"image":           refDataURLs,
		"size":            size,
		"response_format": "b64_json",
		"watermark":       false,
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	baseURL := strings.TrimSuffix(c.baseURL, "/")
	apiURL := fmt.Sprintf("%s/images/generations", baseURL)

	log.Debug().
		Str("api_url", apiURL).
		Str("model", c.model).
		Int("ref_images", len(refDataURLs)).
		Msg("创建参考图生图请求")

	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	// 带多张 base64 参考图的请求体较大，服务器处理也更慢
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error().
			Int("status_code", resp.StatusCode).
			Str("url", apiURL).
			Str("response_body", string(body)).
			Msg("参考图生图请求失败")
		return nil, fmt.Errorf("API request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) == 0 || apiResp.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("no image data in response")
	}

	imageData, err := base64.StdEncoding.DecodeString(apiResp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}
	return imageData, nil
}
