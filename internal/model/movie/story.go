package movie

// StoryConfig 故事配置
// 一个故事由标题、角色列表和若干事件（每个事件可带照片/补充说明）构成
type StoryConfig struct {
	StoryTitle string   `json:"story_title"`
	Characters []string `json:"characters,omitempty"`
	Events     []*Event `json:"events"`
}

// Event 故事中的一个事件
// ImagePaths 为该事件对应的照片路径；没有照片时只用 Title/Caption 生成导演稿
type Event struct {
	Title      string   `json:"title"`
	Caption    string   `json:"caption,omitempty"`
	ImagePaths []string `json:"image_paths,omitempty"`
}

// ScriptSynopsis 整部剧本梗概
// MovieScript 是各事件导演稿按顺序拼接的完整剧本文本
type ScriptSynopsis struct {
	MovieScript string   `json:"MovieScript"`
	Characters  []string `json:"Character"`
}

// EventResult 单个事件的导演稿生成结果
type EventResult struct {
	EventIndex        int      `json:"event_index"` // 从 1 开始
	EventTitle        string   `json:"event_title"`
	ImageDescriptions []string `json:"image_descriptions"`
	DirectorScript    string   `json:"director_script"`
}

// EventsDetail 全部事件的导演稿明细
// 存在时可直接构造子剧本，跳过 LLM 剧本拆分
type EventsDetail struct {
	StoryTitle string         `json:"story_title"`
	Events     []*EventResult `json:"events"`
}
