package providers

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"moviegen/internal/ai/component"
	"moviegen/internal/config"
	"moviegen/internal/pkg/movietools"
)

// EinoTextProvider 基于 eino ChatModel 的文本生成提供者
// openai / azure / ark 均走这一实现，由 component.NewChatModel 分发
type EinoTextProvider struct {
	chatModel model.ChatModel
}

func newEinoTextProvider(ctx context.Context, cfg *config.Config) (movietools.TextProvider, error) {
	chatModel, err := component.NewChatModel(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return &EinoTextProvider{chatModel: chatModel}, nil
}

// Generate 单轮生成
func (p *EinoTextProvider) Generate(ctx context.Context, systemPrompt, query string) (string, error) {
	var messages []*schema.Message
	if systemPrompt != "" {
		messages = append(messages, schema.SystemMessage(systemPrompt))
	}
	messages = append(messages, schema.UserMessage(query))

	msg, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	return msg.Content, nil
}

// DescribeImage 看图生成描述，走多模态消息
func (p *EinoTextProvider) DescribeImage(ctx context.Context, prompt string, imageDataURL string) (string, error) {
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{
				Type: schema.ChatMessagePartTypeText,
				Text: prompt,
			},
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL: imageDataURL,
				},
			},
		},
	}
	resp, err := p.chatModel.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", fmt.Errorf("chat model describe image: %w", err)
	}
	return resp.Content, nil
}
