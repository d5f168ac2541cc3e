package movietools

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNatSort(t *testing.T) {
	Convey("NatSort 按自然序排序", t, func() {
		Convey("数字段按数值比较", func() {
			items := []string{"Shot 10", "Shot 2", "Shot 1"}
			NatSort(items)
			So(items, ShouldResemble, []string{"Shot 1", "Shot 2", "Shot 10"})
		})

		Convey("分镜片段文件名排序与规划顺序一致", func() {
			items := []string{
				"Sub-Script_2|Scene_1|Shot_1.mp4",
				"Sub-Script_1|Scene_1|Shot_3.mp4",
				"Sub-Script_1|Scene_1|Shot_1.mp4",
				"Sub-Script_10|Scene_1|Shot_1.mp4",
				"Sub-Script_1|Scene_1|Shot_2.mp4",
			}
			NatSort(items)
			So(items, ShouldResemble, []string{
				"Sub-Script_1|Scene_1|Shot_1.mp4",
				"Sub-Script_1|Scene_1|Shot_2.mp4",
				"Sub-Script_1|Scene_1|Shot_3.mp4",
				"Sub-Script_2|Scene_1|Shot_1.mp4",
				"Sub-Script_10|Scene_1|Shot_1.mp4",
			})
		})

		Convey("纯字符串退化为字典序", func() {
			items := []string{"b", "a", "c"}
			NatSort(items)
			So(items, ShouldResemble, []string{"a", "b", "c"})
		})
	})
}

func TestSortedKeys(t *testing.T) {
	Convey("SortedKeys 返回自然序的 map 键", t, func() {
		m := map[string]int{"Sub-Script 10": 0, "Sub-Script 2": 0, "Sub-Script 1": 0}
		So(SortedKeys(m), ShouldResemble, []string{"Sub-Script 1", "Sub-Script 2", "Sub-Script 10"})
	})
}
