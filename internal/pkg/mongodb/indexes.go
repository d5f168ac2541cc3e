package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"moviegen/internal/model/movie"
)

// EnsureIndexes 创建所有模型的索引
// 应用启动时统一入口，模型实现 Model 接口即可自动创建
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	models := []Model{
		&movie.Job{},
	}

	return EnsureAllIndexes(ctx, db, models...)
}
