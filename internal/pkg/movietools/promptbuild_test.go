package movietools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"moviegen/internal/model/movie"
)

func TestBuildShotPrompt(t *testing.T) {
	Convey("BuildShotPrompt 构造每镜 prompt", t, func() {
		root := newTestCharacterRoot(t, nil)
		r := NewCharacterResolver(root)

		Convey("运镜前置为 [Camera: ...]", func() {
			shot := &movie.Shot{
				PlotVisualDesc: "Two characters walk through the museum hall.",
				CameraMovement: "slow dolly-in",
			}
			got := BuildShotPrompt(shot, nil, r)
			So(got, ShouldStartWith, "[Camera: slow dolly-in] ")
		})

		Convey("单角色镜把真实名替换为中性占位词", func() {
			shot := &movie.Shot{
				PlotVisualDesc: "布布 stands by the window, smiling.",
				CameraMovement: "static",
			}
			got := BuildShotPrompt(shot, []string{"布布"}, r)
			So(got, ShouldNotContainSubstring, "布布")
			So(got, ShouldContainSubstring, "这个角色")
		})

		Convey("道具镜无角色时用整体占位词", func() {
			shot := &movie.Shot{
				PlotVisualDesc: "Close-up of dumplings, 布布 style plate.",
				CameraMovement: "",
			}
			got := BuildShotPrompt(shot, nil, r)
			So(got, ShouldNotContainSubstring, "布布")
			So(got, ShouldContainSubstring, "两个角色")
		})

		Convey("多角色镜替换为有序标签，与参考图顺序对应", func() {
			shot := &movie.Shot{
				PlotVisualDesc: "布布 hands a dumpling to 一二. Character 2 smiles back.",
				CameraMovement: "static",
			}
			got := BuildShotPrompt(shot, []string{"布布", "一二"}, r)
			So(got, ShouldNotContainSubstring, "布布")
			So(got, ShouldNotContainSubstring, "一二")
			So(got, ShouldContainSubstring, "Character A")
			So(got, ShouldContainSubstring, "Character B")
		})

		Convey("缺少详细描述时退回 Coarse Plot", func() {
			shot := &movie.Shot{CoarsePlot: "two people walking"}
			So(ShotPlot(shot), ShouldEqual, "two people walking")
		})
	})
}

func TestLabelFor(t *testing.T) {
	Convey("LabelFor 生成有序占位标签", t, func() {
		So(LabelFor(0), ShouldEqual, "Character A")
		So(LabelFor(3), ShouldEqual, "Character D")
		So(LabelFor(4), ShouldEqual, "Character E")
	})
}
