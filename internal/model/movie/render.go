package movie

import "strings"

// ShotRef 定位一个镜头在规划结果中的位置，决定其产物文件名
type ShotRef struct {
	SubScriptName string
	SceneName     string
	ShotName      string
}

// KeyframePath 本镜关键帧的保存文件名（不含目录）
// 形如 "Sub-Script_1|Scene_1|Shot_2.jpg"，空格替换为下划线
func (r *ShotRef) KeyframePath() string {
	name := r.SubScriptName + "|" + r.SceneName + "|" + r.ShotName + ".jpg"
	return strings.ReplaceAll(name, " ", "_")
}

// ClipPath 本镜视频片段的保存文件名（不含目录）
func (r *ShotRef) ClipPath() string {
	return strings.TrimSuffix(r.KeyframePath(), ".jpg") + ".mp4"
}
