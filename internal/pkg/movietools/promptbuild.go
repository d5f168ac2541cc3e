package movietools

import (
	"fmt"
	"strings"

	"moviegen/internal/model/movie"
)

// 多角色镜的占位标签，与参考图分组提示严格对应
var orderedLabels = []string{"Character A", "Character B", "Character C", "Character D"}

// LabelFor 返回第 i 个角色（从 0 开始）的占位标签
func LabelFor(i int) string {
	if i < len(orderedLabels) {
		return orderedLabels[i]
	}
	return fmt.Sprintf("Character %c", rune('A'+i))
}

// ShotPlot 取本镜的画面描述
// 无角色的道具/特写镜优先 Plot/Visual Description，缺失时退回 Coarse Plot
func ShotPlot(shot *movie.Shot) string {
	if shot.PlotVisualDesc != "" {
		return shot.PlotVisualDesc
	}
	return shot.CoarsePlot
}

// BuildShotPrompt 构造本镜的生成 prompt：
//  1. 画面描述里的角色名替换为占位标签（单角色/道具镜用中性词，
//     多角色镜用 Character A/B/... 与参考图顺序对应）
//  2. Camera Movement 前置为 [Camera: ...]
func BuildShotPrompt(shot *movie.Shot, resolvedNames []string, r *CharacterResolver) string {
	plot := ShotPlot(shot)

	if len(resolvedNames) <= 1 {
		label := "这个角色"
		if len(resolvedNames) == 0 {
			label = "两个角色"
		}
		plot = replaceAllCharacterNames(plot, r, label)
	} else {
		plot = replaceWithOrderedLabels(plot, resolvedNames, r)
	}

	if mv := strings.TrimSpace(shot.CameraMovement); mv != "" {
		plot = "[Camera: " + mv + "] " + plot
	}
	return plot
}

// replaceAllCharacterNames 把描述里所有已知角色名（目录名、映射值、
// Character N 变体）替换为同一个占位词
func replaceAllCharacterNames(text string, r *CharacterResolver, label string) string {
	if text == "" {
		return text
	}
	names := make(map[string]struct{})
	if r != nil {
		for _, d := range r.Dirs() {
			names[d] = struct{}{}
		}
		for _, v := range r.Mapping() {
			names[v] = struct{}{}
		}
	}
	for name := range names {
		text = strings.ReplaceAll(text, name, label)
	}
	for i := 1; i <= 5; i++ {
		text = strings.ReplaceAll(text, fmt.Sprintf("Character %d", i), label)
		text = strings.ReplaceAll(text, fmt.Sprintf("Character%d", i), label)
	}
	return text
}

// replaceWithOrderedLabels 多角色镜：把每个角色的全部名字变体
// （真实名、mapping key、Character N、Character A/B 英译变体）
// 统一替换为该角色的有序占位标签
func replaceWithOrderedLabels(text string, resolvedNames []string, r *CharacterResolver) string {
	var mapping map[string]string
	if r != nil {
		mapping = r.Mapping()
	}
	for i, name := range resolvedNames {
		label := LabelFor(i)
		text = strings.ReplaceAll(text, name, label)
		for origKey, mappedVal := range mapping {
			if mappedVal == name {
				text = strings.ReplaceAll(text, origKey, label)
			}
		}
		text = strings.ReplaceAll(text, fmt.Sprintf("Character %d", i+1), label)
		text = strings.ReplaceAll(text, fmt.Sprintf("Character%d", i+1), label)
		letter := rune('A' + i)
		text = strings.ReplaceAll(text, fmt.Sprintf("Character %c", letter), label)
		text = strings.ReplaceAll(text, fmt.Sprintf("Character%c", letter), label)
	}
	return text
}
