package movietools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// 建一个临时 character_list：两个角色目录，各放部分方向图
func newTestCharacterRoot(t *testing.T, mapping map[string]string) string {
	t.Helper()
	root := t.TempDir()

	for _, dir := range []string{"一二", "布布"} {
		So(os.MkdirAll(filepath.Join(root, dir), 0o755), ShouldBeNil)
	}
	// 布布：四方向齐全，front 用大写扩展名
	for _, f := range []string{"front.JPG", "oblique.png", "side.jpg", "back.png"} {
		So(os.WriteFile(filepath.Join(root, "布布", f), []byte("img"), 0o644), ShouldBeNil)
	}
	// 一二：只有 front 和 side
	for _, f := range []string{"front.png", "side.jpg"} {
		So(os.WriteFile(filepath.Join(root, "一二", f), []byte("img"), 0o644), ShouldBeNil)
	}
	// 隐藏目录应被忽略
	So(os.MkdirAll(filepath.Join(root, ".cache"), 0o755), ShouldBeNil)

	if mapping != nil {
		data, err := json.Marshal(mapping)
		So(err, ShouldBeNil)
		So(os.WriteFile(filepath.Join(root, "character_mapping.json"), data, 0o644), ShouldBeNil)
	}
	return root
}

func TestCharacterResolver_Resolve(t *testing.T) {
	Convey("CharacterResolver 解析角色标签", t, func() {
		Convey("无映射文件时按序号/字母取目录", func() {
			root := newTestCharacterRoot(t, nil)
			r := NewCharacterResolver(root)
			// 字典序：一二 < 布布
			So(r.Dirs(), ShouldResemble, []string{"一二", "布布"})

			So(r.Resolve([]string{"Character 1", "Character 2"}), ShouldResemble, []string{"一二", "布布"})
			So(r.Resolve([]string{"Character A", "Character B"}), ShouldResemble, []string{"一二", "布布"})
			// 同一目录：数字与字母两种写法解析结果一致
			So(r.Resolve([]string{"Character 2"}), ShouldResemble, r.Resolve([]string{"Character B"}))
		})

		Convey("有映射文件时映射优先，未命中保留原文", func() {
			root := newTestCharacterRoot(t, map[string]string{"Character 1": "布布"})
			r := NewCharacterResolver(root)

			So(r.Resolve([]string{"Character 1"}), ShouldResemble, []string{"布布"})
			// 有映射文件但未命中：不做序号推断
			So(r.Resolve([]string{"Character 2"}), ShouldResemble, []string{"Character 2"})
		})

		Convey("目录名含不同位数数字时仍按字典序映射", func() {
			root := t.TempDir()
			for _, dir := range []string{"char2", "char10"} {
				So(os.MkdirAll(filepath.Join(root, dir), 0o755), ShouldBeNil)
			}
			r := NewCharacterResolver(root)
			// 字典序 char10 < char2，序号映射必须跟字典序走
			So(r.Dirs(), ShouldResemble, []string{"char10", "char2"})
			So(r.Resolve([]string{"Character 1", "Character 2"}), ShouldResemble, []string{"char10", "char2"})
		})

		Convey("超出目录范围的序号保留原文", func() {
			root := newTestCharacterRoot(t, nil)
			r := NewCharacterResolver(root)
			So(r.Resolve([]string{"Character 9"}), ShouldResemble, []string{"Character 9"})
		})

		Convey("无法识别的标签保留原文", func() {
			root := newTestCharacterRoot(t, nil)
			r := NewCharacterResolver(root)
			So(r.Resolve([]string{"小明"}), ShouldResemble, []string{"小明"})
		})

		Convey("根目录不存在时一切原样保留", func() {
			r := NewCharacterResolver(filepath.Join(t.TempDir(), "missing"))
			So(r.Dirs(), ShouldBeEmpty)
			So(r.Resolve([]string{"Character 1"}), ShouldResemble, []string{"Character 1"})
		})
	})
}

func TestCharacterResolver_RefImages(t *testing.T) {
	Convey("CharacterResolver 收取参考图", t, func() {
		root := newTestCharacterRoot(t, nil)
		r := NewCharacterResolver(root)

		Convey("按 front/oblique/side/back 顺序收取，缺失方向跳过", func() {
			imgs := r.RefImages([]string{"一二"})
			So(imgs, ShouldResemble, []string{
				filepath.Join(root, "一二", "front.png"),
				filepath.Join(root, "一二", "side.jpg"),
			})
		})

		Convey("大写扩展名也能命中", func() {
			imgs := r.RefImages([]string{"布布"})
			So(len(imgs), ShouldEqual, 4)
			So(imgs[0], ShouldEqual, filepath.Join(root, "布布", "front.JPG"))
		})

		Convey("多角色按角色顺序拼接，总数不超过 8", func() {
			imgs := r.RefImages([]string{"布布", "一二"})
			So(len(imgs), ShouldEqual, 6)
			So(imgs[0], ShouldContainSubstring, "布布")
			So(imgs[4], ShouldContainSubstring, "一二")
		})

		Convey("FirstRefImage 取第一个存在的方向图", func() {
			So(r.FirstRefImage("一二"), ShouldEqual, filepath.Join(root, "一二", "front.png"))
			So(r.FirstRefImage("不存在"), ShouldBeEmpty)
		})
	})
}
