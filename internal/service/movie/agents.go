package movie

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"moviegen/internal/model/movie"
	"moviegen/internal/pkg/movietools"
)

// agent 固定系统提示词的单轮对话代理
type agent struct {
	text   movietools.TextProvider
	system string
	stage  string
}

func (a *agent) generate(ctx context.Context, query string) (string, error) {
	out, err := a.text.Generate(ctx, a.system, query)
	if err != nil {
		return "", &StageError{Stage: a.stage, Err: err}
	}
	return out, nil
}

// scriptBreak 把整部剧本切分为若干 Sub-Script
// 仅在没有事件明细可直接构造 Step_1 时走 LLM
func (p *pipeline) scriptBreak(ctx context.Context, synopsis *movie.ScriptSynopsis) (*movie.ScriptBreakdown, error) {
	a := &agent{text: p.bundle.Text, system: screenwriterSystemPrompt, stage: "ScriptBreak"}

	query := fmt.Sprintf(`
Script Synopsis: %s
Character: %v
`, synopsis.MovieScript, synopsis.Characters)

	content, err := a.generate(ctx, query)
	if err != nil {
		return nil, err
	}

	breakdown, err := movietools.ParseBreakdown(content, true)
	if err != nil {
		return nil, &StageError{Stage: "ScriptBreak", Err: err}
	}
	if err := p.writeJSON(p.subScriptPath(), breakdown); err != nil {
		return nil, err
	}
	log.Info().Str("job_id", p.jobID).Int("sub_scripts", len(breakdown.SubScripts)).Msg("ScriptBreak 完成")
	return breakdown, nil
}

// scenePlanning 为每个 Sub-Script 规划场景，每个 Sub-Script 恰好一个 Scene
func (p *pipeline) scenePlanning(ctx context.Context, breakdown *movie.ScriptBreakdown) error {
	a := &agent{text: p.bundle.Text, system: scenePlanningSystemPrompt, stage: "ScenePlanning"}

	for _, name := range movietools.SortedKeys(breakdown.SubScripts) {
		subScript := breakdown.SubScripts[name]
		query := fmt.Sprintf(`
Given the following inputs:
- Script Synopsis: "%s"
- Character Relationships: %v
`, subScript.Plot, breakdown.Relationships)

		content, err := a.generate(ctx, query)
		if err != nil {
			return err
		}

		annotation, err := movietools.ParseSceneAnnotation(content)
		if err != nil {
			return &StageError{Stage: "ScenePlanning", Err: fmt.Errorf("%s: %w", name, err)}
		}
		subScript.SceneAnnotation = annotation

		// 每个 Sub-Script 规划完即落盘，便于失败后续跑
		if err := p.writeJSON(p.scenePath(), breakdown); err != nil {
			return err
		}
		log.Info().Str("job_id", p.jobID).Str("sub_script", name).Msg("ScenePlanning 完成")
	}
	return nil
}

// shotPlotCreate 为每个 Scene 生成恰好 3 个 Shot 的分镜表
func (p *pipeline) shotPlotCreate(ctx context.Context, breakdown *movie.ScriptBreakdown) error {
	a := &agent{text: p.bundle.Text, system: shotPlotCreateSystemPrompt, stage: "ShotPlotCreate"}

	for _, subName := range movietools.SortedKeys(breakdown.SubScripts) {
		subScript := breakdown.SubScripts[subName]
		if subScript.SceneAnnotation == nil {
			return &StageError{Stage: "ShotPlotCreate", Err: fmt.Errorf("%s 缺少 Scene Annotation", subName)}
		}

		for _, sceneName := range movietools.SortedKeys(subScript.SceneAnnotation.Scenes) {
			scene := subScript.SceneAnnotation.Scenes[sceneName]
			query := fmt.Sprintf(`
Given the following Scene Details:
- Involving Characters: "%v"
- Plot: "%s"
- Scene Description: "%s"
- Emotional Tone: "%s"
- Key Props: %v
- Cinematography Notes: "%s"
`, scene.InvolvingCharacters, scene.Plot, scene.SceneDescription,
				scene.EmotionalTone, scene.KeyProps, scene.CinematographyNotes)

			content, err := a.generate(ctx, query)
			if err != nil {
				return err
			}

			annotation, err := movietools.ParseShotAnnotation(content)
			if err != nil {
				return &StageError{Stage: "ShotPlotCreate", Err: fmt.Errorf("%s/%s: %w", subName, sceneName, err)}
			}
			scene.ShotAnnotation = annotation

			if err := p.writeJSON(p.shotPath(), breakdown); err != nil {
				return err
			}
			log.Info().Str("job_id", p.jobID).Str("sub_script", subName).Str("scene", sceneName).Msg("ShotPlotCreate 完成")
		}
	}
	return nil
}
