package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	AI       AIConfig       `mapstructure:"ai"`
	Image    ImageConfig    `mapstructure:"image"`
	Video    VideoConfig    `mapstructure:"video"`
	Log      LogConfig      `mapstructure:"log"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig 剧本/分镜用 LLM 配置
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai / azure / ark
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig LLM 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ImageConfig 关键帧（文生图/参考图生图）模型配置
type ImageConfig struct {
	Provider string `mapstructure:"provider"` // ark
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Size     string `mapstructure:"size"` // 如 "1024x512"
}

// VideoConfig 图生视频模型配置
type VideoConfig struct {
	Provider     string        `mapstructure:"provider"` // ark
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	BaseURL      string        `mapstructure:"base_url"`
	Ratio        string        `mapstructure:"ratio"`         // 视频比例，如 "16:9"
	Duration     int           `mapstructure:"duration"`      // 每镜时长（秒）
	PollInterval time.Duration `mapstructure:"poll_interval"` // 任务状态轮询间隔
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 接口鉴权配置
// 只有一个静态 Bearer Token，提交任务时携带
type AuthConfig struct {
	APIToken string `mapstructure:"api_token"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath      string `mapstructure:"base_path"`
	BaseURL       string `mapstructure:"base_url"`
	PresignExpiry int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	PresignExpiry   int    `mapstructure:"presign_expiry"` // 预签名URL过期时间（秒）
}

// JobsConfig 任务状态存储配置
type JobsConfig struct {
	Store string `mapstructure:"store"` // memory, redis, mongo
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	CharacterRoot string  `mapstructure:"character_root"` // 角色参考图根目录（character_list）
	JobsDir       string  `mapstructure:"jobs_dir"`       // 任务工作目录根
	Crossfade     float64 `mapstructure:"crossfade"`      // 拼接叠化时长（秒），0 表示硬切
	FinalName     string  `mapstructure:"final_name"`     // 最终视频文件名（不含扩展名）
	SceneStyle    string  `mapstructure:"scene_style"`    // 可选：注入每镜 prompt 的画风描述
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	validStores := map[string]bool{"memory": true, "redis": true, "mongo": true}
	if !validStores[c.Jobs.Store] {
		return errors.New("invalid jobs store, must be memory/redis/mongo")
	}

	if c.Pipeline.CharacterRoot == "" {
		return errors.New("pipeline.character_root is required")
	}

	if c.Pipeline.Crossfade < 0 {
		return errors.New("pipeline.crossfade must be >= 0")
	}

	return nil
}
