package movie

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"  // 已入队，尚未开始
	JobStatusRunning JobStatus = "running" // 流水线执行中
	JobStatusDone    JobStatus = "done"    // 成功结束，video_url 可用
	JobStatusError   JobStatus = "error"   // 失败结束，error 可用
)

// Job 生成任务实体
// 记录一次完整生成流水线的生命周期，供客户端轮询
type Job struct {
	ID string `bson:"id" json:"id"` // 任务ID（UUID）

	Status   JobStatus `bson:"status" json:"status"`
	Progress int       `bson:"progress" json:"progress"` // 0-100
	Step     string    `bson:"step" json:"step"`         // 当前阶段的人类可读描述

	// 终态产物/诊断，互斥：done 填 VideoURL，error 填 Error
	VideoURL string `bson:"video_url,omitempty" json:"video_url,omitempty"`
	Error    string `bson:"error,omitempty" json:"error,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// JobUpdate 任务的部分更新
// nil 字段表示不改动对应字段
type JobUpdate struct {
	Status   *JobStatus
	Progress *int
	Step     *string
	VideoURL *string
	Error    *string
}

// Apply 将非 nil 字段合并到 job 上
func (u *JobUpdate) Apply(j *Job) {
	if u.Status != nil {
		j.Status = *u.Status
	}
	if u.Progress != nil {
		j.Progress = *u.Progress
	}
	if u.Step != nil {
		j.Step = *u.Step
	}
	if u.VideoURL != nil {
		j.VideoURL = *u.VideoURL
	}
	if u.Error != nil {
		j.Error = *u.Error
	}
	j.UpdatedAt = time.Now()
}

// Collection 返回集合名称
func (j *Job) Collection() string { return "movie_jobs" }

// EnsureIndexes 创建和维护索引
func (j *Job) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(j.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_status_created"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// StatusPtr 辅助构造指针
func StatusPtr(s JobStatus) *JobStatus { return &s }

// IntPtr 辅助构造指针
func IntPtr(i int) *int { return &i }

// StrPtr 辅助构造指针
func StrPtr(s string) *string { return &s }
