package movietools

import (
	"encoding/json"
	"fmt"

	"moviegen/internal/model/movie"
)

// 各阶段 LLM 输出的必备键
// 缺键说明结构化输出不合格，直接判定失败，不做修补猜测
var (
	breakdownRequiredKeys = []string{"Relationships", "Sub-Script"}
	subScriptRequiredKeys = []string{"Plot", "Involving Characters", "Timeline", "Reason for Division"}
	sceneRequiredKeys     = []string{"Involving Characters", "Plot", "Scene Description", "Emotional Tone", "Key Props", "Cinematography Notes"}
	shotRequiredKeys      = []string{"Involving Characters", "Plot/Visual Description", "Coarse Plot", "Shot Type", "Camera Movement", "Subtitles"}
)

// 子剧本数量约束：一个故事通常 2-10 个事件
const (
	MinSubScripts = 2
	MaxSubScripts = 10
)

// ShotsPerScene 每场景固定三镜
const ShotsPerScene = 3

// MaxBoxWidth 角色边界框归一化宽度上限
const MaxBoxWidth = 0.5

func requireKeys(raw map[string]json.RawMessage, keys []string, ctx string) error {
	for _, k := range keys {
		if _, ok := raw[k]; !ok {
			return fmt.Errorf("%s: missing required key %q", ctx, k)
		}
	}
	return nil
}

// ParseBreakdown 解析并校验剧本拆分输出（Step 1）
// enforceCardinality 为 true 时检查子剧本数量在 [2,10] 内；
// 由事件明细直接构造的拆分可以只有 1 个子剧本，不做该检查
func ParseBreakdown(content string, enforceCardinality bool) (*movie.ScriptBreakdown, error) {
	cleaned := CleanJSONContent(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("breakdown is not a JSON object: %w", err)
	}
	if err := requireKeys(raw, breakdownRequiredKeys, "breakdown"); err != nil {
		return nil, err
	}

	var subRaw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["Sub-Script"], &subRaw); err != nil {
		return nil, fmt.Errorf("breakdown Sub-Script is not an object: %w", err)
	}
	for name, fields := range subRaw {
		if err := requireKeys(fields, subScriptRequiredKeys, name); err != nil {
			return nil, err
		}
	}
	if enforceCardinality {
		if n := len(subRaw); n < MinSubScripts || n > MaxSubScripts {
			return nil, fmt.Errorf("breakdown has %d sub-scripts, want %d-%d", n, MinSubScripts, MaxSubScripts)
		}
	}

	var out movie.ScriptBreakdown
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	return &out, nil
}

// ParseSceneAnnotation 解析并校验场景规划输出（Step 2）
// 一个子剧本对应恰好一个场景
func ParseSceneAnnotation(content string) (*movie.SceneAnnotation, error) {
	cleaned := CleanJSONContent(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("scene annotation is not a JSON object: %w", err)
	}
	if _, ok := raw["Scene"]; !ok {
		return nil, fmt.Errorf("scene annotation: missing required key %q", "Scene")
	}

	var sceneRaw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["Scene"], &sceneRaw); err != nil {
		return nil, fmt.Errorf("scene annotation Scene is not an object: %w", err)
	}
	if len(sceneRaw) != 1 {
		return nil, fmt.Errorf("scene annotation has %d scenes, want exactly 1", len(sceneRaw))
	}
	for name, fields := range sceneRaw {
		if err := requireKeys(fields, sceneRequiredKeys, name); err != nil {
			return nil, err
		}
	}

	var out movie.SceneAnnotation
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("decode scene annotation: %w", err)
	}
	return &out, nil
}

// ParseShotAnnotation 解析并校验分镜输出（Step 3）
// 每场景恰好三镜；角色边界框须归一化、宽度不超过 0.5 且两两不相交；
// 无对白契约：Subtitles 一律置空
func ParseShotAnnotation(content string) (*movie.ShotAnnotation, error) {
	cleaned := CleanJSONContent(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("shot annotation is not a JSON object: %w", err)
	}
	if _, ok := raw["Shot"]; !ok {
		return nil, fmt.Errorf("shot annotation: missing required key %q", "Shot")
	}

	var shotRaw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["Shot"], &shotRaw); err != nil {
		return nil, fmt.Errorf("shot annotation Shot is not an object: %w", err)
	}
	if len(shotRaw) != ShotsPerScene {
		return nil, fmt.Errorf("shot annotation has %d shots, want exactly %d", len(shotRaw), ShotsPerScene)
	}
	for name, fields := range shotRaw {
		if err := requireKeys(fields, shotRequiredKeys, name); err != nil {
			return nil, err
		}
	}

	var out movie.ShotAnnotation
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("decode shot annotation: %w", err)
	}

	for _, name := range SortedKeys(out.Shots) {
		shot := out.Shots[name]
		if err := validateBoxes(name, shot.InvolvingCharacters); err != nil {
			return nil, err
		}
		shot.Subtitles = map[string]string{}
	}
	return &out, nil
}

// validateBoxes 校验单镜内全部角色边界框
func validateBoxes(shotName string, boxes map[string][]float64) error {
	type rect struct {
		label          string
		x0, y0, x1, y1 float64
	}
	rects := make([]rect, 0, len(boxes))

	for _, label := range SortedKeys(boxes) {
		box := boxes[label]
		if len(box) != 4 {
			return fmt.Errorf("%s: box for %q has %d coords, want 4", shotName, label, len(box))
		}
		x0, y0, x1, y1 := box[0], box[1], box[2], box[3]
		for _, v := range box {
			if v < 0 || v > 1 {
				return fmt.Errorf("%s: box for %q is not normalized: %v", shotName, label, box)
			}
		}
		if x0 >= x1 || y0 >= y1 {
			return fmt.Errorf("%s: box for %q is degenerate: %v", shotName, label, box)
		}
		if x1-x0 > MaxBoxWidth {
			return fmt.Errorf("%s: box for %q exceeds max width %.1f: %v", shotName, label, MaxBoxWidth, box)
		}
		rects = append(rects, rect{label, x0, y0, x1, y1})
	}

	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			a, b := rects[i], rects[j]
			if a.x0 < b.x1 && b.x0 < a.x1 && a.y0 < b.y1 && b.y0 < a.y1 {
				return fmt.Errorf("%s: boxes for %q and %q overlap", shotName, a.label, b.label)
			}
		}
	}
	return nil
}
