package movie

// 规划结果的三层结构，与 LLM 输出的 JSON 键保持一致：
//   Step 1 剧本拆分  -> ScriptBreakdown（Sub-Script 列表）
//   Step 2 场景规划  -> 每个 Sub-Script 附加 Scene Annotation
//   Step 3 分镜      -> 每个 Scene 附加 Shot Annotation
// 文档键形如 "Sub-Script 1" / "Scene 1" / "Shot 2"，遍历时按自然序排序

// ScriptBreakdown 剧本拆分结果（Step 1）
type ScriptBreakdown struct {
	Relationships map[string]string     `json:"Relationships"`
	SubScripts    map[string]*SubScript `json:"Sub-Script"`
}

// SubScript 一个子剧本，对应故事中的一个独立事件
type SubScript struct {
	Plot                string           `json:"Plot"`
	InvolvingCharacters []string         `json:"Involving Characters"`
	Timeline            string           `json:"Timeline"`
	ReasonForDivision   string           `json:"Reason for Division"`
	SceneAnnotation     *SceneAnnotation `json:"Scene Annotation,omitempty"`
}

// SceneAnnotation 场景规划结果（Step 2），每个子剧本恰好一个 Scene
type SceneAnnotation struct {
	Scenes map[string]*Scene `json:"Scene"`
}

// Scene 一个场景及其电影化要素
type Scene struct {
	InvolvingCharacters []string        `json:"Involving Characters"`
	Plot                string          `json:"Plot"`
	SceneDescription    string          `json:"Scene Description"`
	EmotionalTone       string          `json:"Emotional Tone"`
	VisualStyle         string          `json:"Visual Style,omitempty"`
	KeyProps            []string        `json:"Key Props"`
	MusicSoundEffects   string          `json:"Music and Sound Effects,omitempty"`
	CinematographyNotes string          `json:"Cinematography Notes"`
	ShotAnnotation      *ShotAnnotation `json:"Shot Annotation,omitempty"`
}

// ShotAnnotation 分镜结果（Step 3），每个场景恰好三镜
type ShotAnnotation struct {
	Shots map[string]*Shot `json:"Shot"`
}

// Shot 一个镜头
// InvolvingCharacters 的值为归一化 [x, y, x1, y1] 边界框；
// 道具/特写镜为空 map，Subtitles 恒为空（无对白无字幕）
type Shot struct {
	InvolvingCharacters  map[string][]float64 `json:"Involving Characters"`
	PlotVisualDesc       string               `json:"Plot/Visual Description"`
	CoarsePlot           string               `json:"Coarse Plot"`
	EmotionalEnhancement string               `json:"Emotional Enhancement,omitempty"`
	ShotType             string               `json:"Shot Type"`
	CameraMovement       string               `json:"Camera Movement"`
	Subtitles            map[string]string    `json:"Subtitles"`
}
