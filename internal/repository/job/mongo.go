package job

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"moviegen/internal/model/movie"
)

// MongoStore 基于 MongoDB 的任务仓库
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore 创建 MongoDB 任务仓库
func NewMongoStore(db *mongo.Database) *MongoStore {
	var j movie.Job
	return &MongoStore{coll: db.Collection(j.Collection())}
}

// Create 插入默认任务记录
func (s *MongoStore) Create(ctx context.Context, id string) (*movie.Job, error) {
	now := time.Now()
	j := &movie.Job{
		ID:        id,
		Status:    movie.JobStatusQueued,
		Progress:  0,
		Step:      "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Update 合并非 nil 字段；id 不存在时记日志后 no-op
func (s *MongoStore) Update(ctx context.Context, id string, update *movie.JobUpdate) error {
	set := bson.M{"updated_at": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Progress != nil {
		set["progress"] = *update.Progress
	}
	if update.Step != nil {
		set["step"] = *update.Step
	}
	if update.VideoURL != nil {
		set["video_url"] = *update.VideoURL
	}
	if update.Error != nil {
		set["error"] = *update.Error
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		log.Warn().Str("job_id", id).Msg("update for unknown job ignored")
	}
	return nil
}

// Get 获取任务，不存在时返回 ErrNotFound
func (s *MongoStore) Get(ctx context.Context, id string) (*movie.Job, error) {
	var j movie.Job
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Exists 查询任务是否存在
func (s *MongoStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"id": id})
	return n > 0, err
}

// Delete 删除任务记录
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	return err
}
