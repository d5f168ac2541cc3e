package movie

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"moviegen/internal/model/movie"
	"moviegen/internal/pkg/ark"
	"moviegen/internal/pkg/movietools"
)

// 图生视频重试间隔，第 n 次失败后等待 waits[n] 再重试
var i2vRetryWaits = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}

// renderShots 逐镜生成关键帧与视频片段。
//
// 单镜的图生视频失败重试耗尽后只丢弃该片段，不让整个 job 失败，
// 成片少一镜总好过整单报废。关键帧生成失败则直接失败，
// 因为没有关键帧意味着 prompt 或参考图本身有问题，后续镜大概率同样失败。
func (p *pipeline) renderShots(ctx context.Context, breakdown *movie.ScriptBreakdown) error {
	resolver := movietools.NewCharacterResolver(p.cfg.Pipeline.CharacterRoot)

	for _, subName := range movietools.SortedKeys(breakdown.SubScripts) {
		subScript := breakdown.SubScripts[subName]
		if subScript.SceneAnnotation == nil {
			return &MissingArtifactError{Path: fmt.Sprintf("%s: Scene Annotation", subName)}
		}

		for _, sceneName := range movietools.SortedKeys(subScript.SceneAnnotation.Scenes) {
			scene := subScript.SceneAnnotation.Scenes[sceneName]
			if scene.ShotAnnotation == nil {
				return &MissingArtifactError{Path: fmt.Sprintf("%s/%s: Shot Annotation", subName, sceneName)}
			}

			for _, shotName := range movietools.SortedKeys(scene.ShotAnnotation.Shots) {
				shot := scene.ShotAnnotation.Shots[shotName]
				if err := p.renderOneShot(ctx, resolver, subName, sceneName, shotName, shot); err != nil {
					return err
				}
			}

			if p.opts.OnlyFirstScene {
				log.Info().Str("job_id", p.jobID).Msg("only-first-scene 已跑完第一个 Scene，停止")
				return nil
			}
		}
	}
	return nil
}

// renderOneShot 单镜：角色解析 -> prompt 构造 -> 关键帧 -> 图生视频
func (p *pipeline) renderOneShot(ctx context.Context, resolver *movietools.CharacterResolver,
	subName, sceneName, shotName string, shot *movie.Shot) error {

	characterNames := movietools.SortedKeys(shot.InvolvingCharacters)
	resolved := resolver.Resolve(characterNames)

	ref := &movie.ShotRef{
		SubScriptName: subName,
		SceneName:     sceneName,
		ShotName:      shotName,
	}
	keyframePath := filepath.Join(p.videoDir(), ref.KeyframePath())
	clipPath := filepath.Join(p.videoDir(), ref.ClipPath())

	prompt := movietools.BuildShotPrompt(shot, resolved, resolver)

	// 参考图：角色镜传本镜角色的四方向参考图；道具镜传全部角色参考图只做画风参考
	var refPaths []string
	var refGroupSizes []int
	if len(resolved) > 0 {
		groups := resolver.RefImageGroups(resolved)
		for _, g := range groups {
			refGroupSizes = append(refGroupSizes, len(g))
			refPaths = append(refPaths, g...)
		}
	} else {
		refPaths = resolver.RefImages(resolver.Dirs())
	}

	// 关键帧与视频都已有，整镜跳过
	if p.opts.SkipExistingKeyframes && fileExists(keyframePath) {
		if fileExists(clipPath) {
			log.Info().Str("keyframe", keyframePath).Msg("跳过（关键帧+视频已有）")
			return nil
		}
		// 关键帧已有但视频缺失：只补图生视频
		log.Info().Str("clip", clipPath).Msg("关键帧已有，补生成视频")
		if err := p.generateClipWithRetry(ctx, keyframePath, clipPath, prompt); err != nil {
			log.Error().Err(err).Str("keyframe", keyframePath).Msg("图生视频重试耗尽，本镜片段丢弃")
		}
		return nil
	}

	// ── 关键帧 ──────────────────────────────────────────────────
	refDataURLs := make([]string, 0, len(refPaths))
	for _, rp := range refPaths {
		dataURL, err := imageFileToDataURL(rp)
		if err != nil {
			log.Warn().Err(err).Str("ref", rp).Msg("读取角色参考图失败，跳过该图")
			continue
		}
		refDataURLs = append(refDataURLs, dataURL)
	}

	log.Info().
		Str("job_id", p.jobID).
		Str("shot", fmt.Sprintf("%s/%s/%s", subName, sceneName, shotName)).
		Strs("characters", resolved).
		Int("ref_images", len(refDataURLs)).
		Msg("生成关键帧")

	// 关键帧走包装过的生成指令；图生视频仍用原始画面描述
	instruction := prompt
	if len(refDataURLs) > 0 {
		instruction = movietools.BuildKeyframeInstruction(prompt, refGroupSizes, p.cfg.Pipeline.SceneStyle)
	}

	imageData, err := p.bundle.Image.GenerateKeyframe(ctx, instruction, refDataURLs, p.cfg.Image.Size)
	if err != nil {
		return &StageError{Stage: "Keyframe", Err: fmt.Errorf("%s/%s/%s: %w", subName, sceneName, shotName, err)}
	}
	if err := os.WriteFile(keyframePath, imageData, 0o644); err != nil {
		return fmt.Errorf("write keyframe %s: %w", keyframePath, err)
	}

	// ── 图生视频 ────────────────────────────────────────────────
	if err := p.generateClipWithRetry(ctx, keyframePath, clipPath, prompt); err != nil {
		log.Error().Err(err).Str("keyframe", keyframePath).Msg("图生视频重试耗尽，本镜片段丢弃")
	}
	return nil
}

// generateClipWithRetry 图生视频，失败按 i2vRetryWaits 退避重试
func (p *pipeline) generateClipWithRetry(ctx context.Context, keyframePath, clipPath, prompt string) error {
	keyframeData, err := os.ReadFile(keyframePath)
	if err != nil {
		return fmt.Errorf("read keyframe: %w", err)
	}
	dataURL := ark.ConvertImageToDataURL(keyframeData, "image/jpeg")

	var lastErr error
	for attempt := 0; attempt < len(i2vRetryWaits); attempt++ {
		videoData, err := p.bundle.Video.GenerateVideoFromImage(ctx, dataURL, p.cfg.Video.Duration, prompt)
		if err == nil {
			return os.WriteFile(clipPath, videoData, 0o644)
		}
		lastErr = err

		wait := i2vRetryWaits[attempt]
		log.Warn().Err(err).
			Str("clip", clipPath).
			Int("attempt", attempt+1).
			Dur("wait", wait).
			Msg("图生视频失败，等待后重试")
		if serr := p.sleep(ctx, wait); serr != nil {
			return serr
		}
	}
	return lastErr
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
