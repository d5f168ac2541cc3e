package movietools

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const validBreakdown = `{
  "Relationships": {"Character 1 - Character 2": "Friends"},
  "Sub-Script": {
    "Sub-Script 1": {
      "Plot": "They visit the museum together.",
      "Involving Characters": ["Character 1", "Character 2"],
      "Timeline": "Afternoon",
      "Reason for Division": "First event"
    },
    "Sub-Script 2": {
      "Plot": "They make dumplings at home.",
      "Involving Characters": ["Character 1", "Character 2"],
      "Timeline": "Evening",
      "Reason for Division": "Second event"
    }
  }
}`

func TestParseBreakdown(t *testing.T) {
	Convey("ParseBreakdown 校验剧本拆分输出", t, func() {
		Convey("合法输出解析成功", func() {
			out, err := ParseBreakdown(validBreakdown, true)
			So(err, ShouldBeNil)
			So(len(out.SubScripts), ShouldEqual, 2)
			So(out.SubScripts["Sub-Script 1"].Plot, ShouldContainSubstring, "museum")
			So(out.Relationships, ShouldContainKey, "Character 1 - Character 2")
		})

		Convey("markdown 代码块包裹的输出也能解析", func() {
			wrapped := "```json\n" + validBreakdown + "\n```"
			out, err := ParseBreakdown(wrapped, true)
			So(err, ShouldBeNil)
			So(len(out.SubScripts), ShouldEqual, 2)
		})

		Convey("缺少 Sub-Script 键时报错", func() {
			_, err := ParseBreakdown(`{"Relationships": {}}`, false)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "Sub-Script")
		})

		Convey("子剧本缺少必备键时报错", func() {
			_, err := ParseBreakdown(`{
				"Relationships": {},
				"Sub-Script": {"Sub-Script 1": {"Plot": "x"}}
			}`, false)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "missing required key")
		})

		Convey("子剧本数量超出范围时报错", func() {
			subs := `{`
			for i := 1; i <= 11; i++ {
				if i > 1 {
					subs += ","
				}
				subs += fmt.Sprintf(`"Sub-Script %d": {"Plot": "p", "Involving Characters": [], "Timeline": "t", "Reason for Division": "r"}`, i)
			}
			subs += `}`
			_, err := ParseBreakdown(`{"Relationships": {}, "Sub-Script": `+subs+`}`, true)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "11 sub-scripts")
		})

		Convey("不做数量检查时单子剧本可通过", func() {
			single := `{
				"Relationships": {},
				"Sub-Script": {"Sub-Script 1": {"Plot": "p", "Involving Characters": [], "Timeline": "t", "Reason for Division": "r"}}
			}`
			out, err := ParseBreakdown(single, false)
			So(err, ShouldBeNil)
			So(len(out.SubScripts), ShouldEqual, 1)
		})

		Convey("非 JSON 输出报错", func() {
			_, err := ParseBreakdown("sorry, I cannot do that", false)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseSceneAnnotation(t *testing.T) {
	Convey("ParseSceneAnnotation 校验场景规划输出", t, func() {
		valid := `{
			"Scene": {
				"Scene 1": {
					"Involving Characters": ["Character 1"],
					"Plot": "p",
					"Scene Description": "d",
					"Emotional Tone": "warm",
					"Key Props": ["dumplings"],
					"Cinematography Notes": "close-ups on hands"
				}
			}
		}`

		Convey("合法输出解析成功", func() {
			out, err := ParseSceneAnnotation(valid)
			So(err, ShouldBeNil)
			So(len(out.Scenes), ShouldEqual, 1)
			So(out.Scenes["Scene 1"].EmotionalTone, ShouldEqual, "warm")
		})

		Convey("多于一个场景时报错", func() {
			two := `{
				"Scene": {
					"Scene 1": {"Involving Characters": [], "Plot": "p", "Scene Description": "d", "Emotional Tone": "t", "Key Props": [], "Cinematography Notes": "c"},
					"Scene 2": {"Involving Characters": [], "Plot": "p", "Scene Description": "d", "Emotional Tone": "t", "Key Props": [], "Cinematography Notes": "c"}
				}
			}`
			_, err := ParseSceneAnnotation(two)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "want exactly 1")
		})

		Convey("缺少 Scene 键时报错", func() {
			_, err := ParseSceneAnnotation(`{"Internal Chain-of-Thought": {}}`)
			So(err, ShouldNotBeNil)
		})
	})
}

func shotJSON(involving string) string {
	return `{
		"Involving Characters": ` + involving + `,
		"Plot/Visual Description": "Detailed visual description of the shot with more than thirty words describing characters and setting.",
		"Coarse Plot": "two people walking",
		"Shot Type": "wide",
		"Camera Movement": "static",
		"Subtitles": {}
	}`
}

func threeShots(involving1 string) string {
	return `{"Shot": {
		"Shot 1": ` + shotJSON(involving1) + `,
		"Shot 2": ` + shotJSON("{}") + `,
		"Shot 3": ` + shotJSON("{}") + `
	}}`
}

func TestParseShotAnnotation(t *testing.T) {
	Convey("ParseShotAnnotation 校验分镜输出", t, func() {
		Convey("合法输出解析成功且 Subtitles 置空", func() {
			boxes := `{"Character A": [0.1, 0.06, 0.49, 1.0], "Character B": [0.58, 0.04, 0.95, 1.0]}`
			out, err := ParseShotAnnotation(threeShots(boxes))
			So(err, ShouldBeNil)
			So(len(out.Shots), ShouldEqual, 3)
			for _, shot := range out.Shots {
				So(shot.Subtitles, ShouldBeEmpty)
			}
		})

		Convey("镜头数不等于 3 时报错", func() {
			two := `{"Shot": {"Shot 1": ` + shotJSON("{}") + `, "Shot 2": ` + shotJSON("{}") + `}}`
			_, err := ParseShotAnnotation(two)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "want exactly 3")
		})

		Convey("边界框超出归一化范围报错", func() {
			boxes := `{"Character A": [0.1, 0.0, 0.4, 1.5]}`
			_, err := ParseShotAnnotation(threeShots(boxes))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "not normalized")
		})

		Convey("边界框宽度超过 0.5 报错", func() {
			boxes := `{"Character A": [0.1, 0.0, 0.9, 1.0]}`
			_, err := ParseShotAnnotation(threeShots(boxes))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "max width")
		})

		Convey("边界框相互重叠报错", func() {
			boxes := `{"Character A": [0.1, 0.0, 0.5, 1.0], "Character B": [0.4, 0.0, 0.8, 1.0]}`
			_, err := ParseShotAnnotation(threeShots(boxes))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "overlap")
		})

		Convey("坐标数不足 4 报错", func() {
			boxes := `{"Character A": [0.1, 0.0, 0.5]}`
			_, err := ParseShotAnnotation(threeShots(boxes))
			So(err, ShouldNotBeNil)
		})
	})
}
