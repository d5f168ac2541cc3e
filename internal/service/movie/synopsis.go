package movie

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"moviegen/internal/model/movie"
)

// buildScriptSynopsis 把「故事标题 + 事件（标题/说明/照片）」转为整部剧本。
//
// 每个事件依次做两步：
//  1. 看图：对事件的每张照片生成一两句描述（需要多模态能力，没有则退化为仅用 caption/标题）
//  2. 导演稿：根据标题 + 图片描述生成该事件的编剧导演稿（角色动作、运镜）
//
// 所有事件的导演稿按顺序拼成 MovieScript，同时返回每个事件的明细。
func (p *pipeline) buildScriptSynopsis(ctx context.Context, input *SubmitInput, characters []string) (*movie.ScriptSynopsis, *movie.EventsDetail, error) {
	var directorParts []string
	var eventResults []*movie.EventResult

	for idx, ev := range input.Events {
		title := strings.TrimSpace(ev.Title)
		caption := strings.TrimSpace(ev.Caption)

		// 1) 图片描述
		var descriptions []string
		for _, photoPath := range ev.PhotoPaths {
			desc, err := p.describeEventPhoto(ctx, title, photoPath)
			if err != nil {
				// 单张图描述失败不拖垮整个 job，导演稿少一条素材而已
				log.Warn().Err(err).Str("job_id", p.jobID).Str("photo", photoPath).Msg("事件照片描述失败，跳过该图")
				continue
			}
			if desc != "" {
				descriptions = append(descriptions, desc)
			}
		}

		// 2) 该事件的导演稿
		var scriptText string
		if len(descriptions) > 0 || title != "" || caption != "" {
			if len(descriptions) == 0 && caption != "" {
				descriptions = []string{caption}
			}
			text, err := p.directorScriptForEvent(ctx, title, descriptions, characters)
			if err != nil {
				return nil, nil, err
			}
			scriptText = text
		} else {
			scriptText = fmt.Sprintf("【%s】无描述与图片，保留为占位。", title)
		}

		directorParts = append(directorParts, scriptText)
		eventResults = append(eventResults, &movie.EventResult{
			EventIndex:        idx + 1,
			EventTitle:        title,
			ImageDescriptions: descriptions,
			DirectorScript:    scriptText,
		})
	}

	// 3) 整部剧本：标题 + 按顺序拼接各事件导演稿
	fullScript := input.StoryTitle + "\n\n" + strings.Join(directorParts, "\n\n")
	synopsis := &movie.ScriptSynopsis{
		MovieScript: fullScript,
		Characters:  characters,
	}
	detail := &movie.EventsDetail{
		StoryTitle: input.StoryTitle,
		Events:     eventResults,
	}
	return synopsis, detail, nil
}

// describeEventPhoto 用多模态模型描述单张事件照片
func (p *pipeline) describeEventPhoto(ctx context.Context, eventTitle, photoPath string) (string, error) {
	if p.bundle.Vision == nil {
		return "", nil
	}

	dataURL, err := imageFileToDataURL(photoPath)
	if err != nil {
		return "", err
	}

	title := eventTitle
	if title == "" {
		title = "（无标题）"
	}
	prompt := fmt.Sprintf(eventImagePromptTemplate, title)

	desc, err := p.bundle.Vision.DescribeImage(ctx, prompt, dataURL)
	if err != nil {
		return "", fmt.Errorf("describe image %s: %w", photoPath, err)
	}
	return strings.TrimSpace(desc), nil
}

// directorScriptForEvent 生成单个事件的编剧导演稿
func (p *pipeline) directorScriptForEvent(ctx context.Context, eventTitle string, descriptions, characters []string) (string, error) {
	parts := []string{fmt.Sprintf("事件标题：%s", eventTitle)}
	if len(descriptions) > 0 {
		parts = append(parts, "根据现场照片得到的描述：")
		for i, d := range descriptions {
			parts = append(parts, fmt.Sprintf("  图%d：%s", i+1, d))
		}
	} else {
		parts = append(parts, "（无图片描述，仅根据标题发挥）")
	}
	parts = append(parts, fmt.Sprintf("出镜角色（用这些名字写动作与运镜）：%s", strings.Join(characters, ", ")))

	out, err := p.bundle.Text.Generate(ctx, directorScriptSystemPrompt, strings.Join(parts, "\n"))
	if err != nil {
		return "", &StageError{Stage: "DirectorScript", Err: fmt.Errorf("event %q: %w", eventTitle, err)}
	}
	return strings.TrimSpace(out), nil
}

// imageFileToDataURL 读取图片文件并转为 data URL
func imageFileToDataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	mime := mimeTypeByExt(path)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}

func mimeTypeByExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
