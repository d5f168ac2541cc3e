package job

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"moviegen/internal/model/movie"
)

func TestMemoryStore(t *testing.T) {
	Convey("MemoryStore 任务仓库", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()

		Convey("Create 插入默认记录", func() {
			j, err := store.Create(ctx, "job-1")
			So(err, ShouldBeNil)
			So(j.Status, ShouldEqual, movie.JobStatusQueued)
			So(j.Progress, ShouldEqual, 0)

			exists, err := store.Exists(ctx, "job-1")
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})

		Convey("Update 只合并非 nil 字段", func() {
			_, err := store.Create(ctx, "job-2")
			So(err, ShouldBeNil)

			err = store.Update(ctx, "job-2", &movie.JobUpdate{
				Status:   movie.StatusPtr(movie.JobStatusRunning),
				Progress: movie.IntPtr(15),
				Step:     movie.StrPtr("generating script synopsis"),
			})
			So(err, ShouldBeNil)

			j, err := store.Get(ctx, "job-2")
			So(err, ShouldBeNil)
			So(j.Status, ShouldEqual, movie.JobStatusRunning)
			So(j.Progress, ShouldEqual, 15)
			So(j.Step, ShouldEqual, "generating script synopsis")

			// 不更新 progress 时保持原值
			err = store.Update(ctx, "job-2", &movie.JobUpdate{Step: movie.StrPtr("planning scenes & shots")})
			So(err, ShouldBeNil)
			j, _ = store.Get(ctx, "job-2")
			So(j.Progress, ShouldEqual, 15)
			So(j.Step, ShouldEqual, "planning scenes & shots")
		})

		Convey("不存在的 id 更新是 no-op", func() {
			err := store.Update(ctx, "missing", &movie.JobUpdate{Progress: movie.IntPtr(50)})
			So(err, ShouldBeNil)

			_, err = store.Get(ctx, "missing")
			So(err, ShouldEqual, ErrNotFound)
		})

		Convey("Get 返回独立快照", func() {
			_, err := store.Create(ctx, "job-3")
			So(err, ShouldBeNil)

			j1, _ := store.Get(ctx, "job-3")
			j1.Progress = 99
			j1.Status = movie.JobStatusError

			j2, _ := store.Get(ctx, "job-3")
			So(j2.Progress, ShouldEqual, 0)
			So(j2.Status, ShouldEqual, movie.JobStatusQueued)
		})

		Convey("Delete 删除后不可见，重复删除无错", func() {
			_, err := store.Create(ctx, "job-4")
			So(err, ShouldBeNil)

			So(store.Delete(ctx, "job-4"), ShouldBeNil)
			exists, _ := store.Exists(ctx, "job-4")
			So(exists, ShouldBeFalse)
			So(store.Delete(ctx, "job-4"), ShouldBeNil)
		})
	})
}
