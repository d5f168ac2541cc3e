package movietools

import (
	"regexp"
	"strings"
)

// markdown 代码块包裹的 JSON（```json ... ```）
var markdownPattern = regexp.MustCompile(`(?s)^\s*` + "```" + `(?:json)?\s*\n(.*?)\n\s*` + "```" + `\s*$`)

// CleanJSONContent 清理 LLM 返回的 JSON 内容
// 移除 markdown 代码块标记和首尾空白
func CleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if matches := markdownPattern.FindStringSubmatch(content); len(matches) > 1 {
		content = matches[1]
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
