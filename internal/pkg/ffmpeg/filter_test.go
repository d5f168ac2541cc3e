package ffmpeg

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildCrossfadeFilter(t *testing.T) {
	Convey("BuildCrossfadeFilter 构造 xfade 滤镜链", t, func() {
		Convey("空输入返回空滤镜", func() {
			filter, total := BuildCrossfadeFilter(nil, 0.2)
			So(filter, ShouldBeEmpty)
			So(total, ShouldEqual, 0)
		})

		Convey("单片段直接拷贝", func() {
			filter, total := BuildCrossfadeFilter([]float64{5}, 0.2)
			So(filter, ShouldEqual, "[0:v]copy[v]")
			So(total, ShouldEqual, 5)
		})

		Convey("两片段一次 xfade", func() {
			filter, total := BuildCrossfadeFilter([]float64{1, 1}, 0.2)
			So(filter, ShouldEqual, "[0:v][1:v]xfade=transition=fade:duration=0.200:offset=0.800[v]")
			So(total, ShouldAlmostEqual, 1.8, 1e-9)
		})

		Convey("三片段链式 xfade，时长等于总和减去重叠", func() {
			filter, total := BuildCrossfadeFilter([]float64{1, 1, 1}, 0.2)
			So(filter, ShouldContainSubstring, "offset=0.800[vx1]")
			So(filter, ShouldContainSubstring, "[vx1][2:v]xfade=transition=fade:duration=0.200:offset=1.600[v]")
			So(total, ShouldAlmostEqual, 2.6, 1e-9)
		})

		Convey("片段时长不同也按逐段偏移计算", func() {
			filter, total := BuildCrossfadeFilter([]float64{5, 3, 4}, 0.5)
			So(filter, ShouldContainSubstring, "offset=4.500[vx1]")
			So(filter, ShouldContainSubstring, "offset=7.000[v]")
			So(total, ShouldAlmostEqual, 11.0, 1e-9)
		})
	})
}
