package movietools

import (
	"fmt"
	"strings"
)

// 关键帧生成指令的公共规则片段
const (
	noTextRule = "不要在图片上添加任何文字、字幕、标签或水印。\n"

	closeupStyleRule = "特别注意：即使是表情特写或大头构图，面部细节（线条、眼睛画法、阴影、色彩）" +
		"也必须与参考图的绘画美术风格完全一致，不要因为是特写就切换到写实照片风格。\n"

	propShotInstruction = "我上传的参考图定义了本片所有画面的美术风格——包括线条、色彩、笔触、整体画面质感。\n" +
		"请严格按照参考图的美术风格画一张特写构图，画风必须与参考图完全一致，不能写实，不能换风格，" +
		"要让人看出这张图和参考图属于同一部影片的同一画风。\n" +
		"【重要】若画面内容涉及衣物、配件或物品穿戴/附着在角色身上，" +
		"必须参照参考图中角色的插画体型和外形风格来画该角色的身体，" +
		"绝对禁止出现写实比例的人体轮廓、照片质感的皮肤或面部——" +
		"人物的身形、四肢、皮肤质感必须与参考图的插画/动画美术风格完全一致。\n" +
		"若画面内容不涉及任何人物身体，则只画物品本身，不要凭空添加人体。\n" +
		"此外，关于道具本身的绘制，必须严格匹配参考图的美术细节：线条粗细与笔触风格、上色方式（例如平涂或渐变）、" +
		"高光与阴影的处理方式、以及材质表现（例如布料、皮革、金属）的插画化处理，" +
		"都要与参考图保持一致，而非摄影写实的质感。请遵循参考图的主色调与配色方案，避免引入新的写实材质或照片级纹理。\n" +
		"道具的比例、缝线、折痕、缀饰与边缘处理应使用与参考图相同的绘画语言；若道具在角色身上，" +
		"其附着方式、位置与尺度需遵循参考图中角色的插画体型和风格，避免为表现道具而添加写实人体或改变角色的插画比例。\n" +
		"在构图与光照上，若参考图中有明确的光源方向或高光处理，请尽量保持一致，避免引入照片级景深、噪点或真实相机反射。\n" +
		"Do not switch to photorealistic style. Keep the exact same illustration aesthetic as the reference image; props must look like they were painted by the same artist.\n"
)

// BuildKeyframeInstruction 把分镜画面描述包装成关键帧生成指令。
//
// 道具/特写镜（无角色）只约束画风；角色镜按角色数动态生成「只能有 N 个角色」
// 的约束，并在多角色时给出参考图与有序占位标签的对应关系，
// 防止模型把两位角色的外貌互换。
//
// Args:
//   - sceneDesc: 分镜画面描述（角色名已替换为占位标签）
//   - refGroupSizes: 每个角色的参考图张数，按参考图传入顺序；道具镜传 nil
//   - sceneStyle: 可选画风描述，追加在指令末尾
func BuildKeyframeInstruction(sceneDesc string, refGroupSizes []int, sceneStyle string) string {
	var b strings.Builder

	if len(refGroupSizes) == 0 {
		// 道具镜：参考图只用于画风
		b.WriteString(propShotInstruction)
		b.WriteString(sceneDesc)
	} else {
		charCount := len(refGroupSizes)
		nStr := chineseCount(charCount)

		var charReq, noMirror string
		if charCount == 1 {
			charReq = "要求：整张画里只能有这一个角色，不能多画其他人。" +
				"按参考图的画风完成场景，不要写实。" +
				"角色的样貌和身形不要改，只可以改动作和姿势。"
			noMirror = "不要画镜子、玻璃反射、镜中倒影等难以表现的内容；" +
				"若画面描述涉及镜子或反射，改为角色不照镜子的构图。\n"
		} else {
			charReq = fmt.Sprintf("要求：整张画里只能有这%s个角色，不能多画额外的人。"+
				"按参考图的画风完成场景，不要写实。"+
				"%s个角色的样貌和身形都不要改，只可以改动作和姿势。", nStr, nStr)
			noMirror = fmt.Sprintf("不要画镜子、玻璃反射、镜中倒影等难以表现的内容；"+
				"若画面描述涉及镜子或反射，改为同场景下%s个角色不照镜子的构图。\n", nStr)
		}

		b.WriteString("根据我上传的参考图，画一张图。风格必须和参考图完全一致，不要因为镜头内容不同就改变画风或角色长相。\n")
		if charCount > 1 {
			b.WriteString(refGroupHint(refGroupSizes))
		}
		b.WriteString(charReq)
		b.WriteString("\n")
		b.WriteString(noMirror)
		b.WriteString(closeupStyleRule)
		b.WriteString(noTextRule)
		b.WriteString("画面内容：")
		b.WriteString(sceneDesc)
	}

	if style := strings.TrimSpace(sceneStyle); style != "" {
		b.WriteString("\n画风参考：")
		b.WriteString(style)
	}
	return b.String()
}

// refGroupHint 生成「第 N 至 M 张参考图对应哪个占位标签」的说明
func refGroupHint(refGroupSizes []int) string {
	var parts []string
	var labels []string
	idx := 1
	for i, count := range refGroupSizes {
		label := LabelFor(i)
		labels = append(labels, fmt.Sprintf("【%s】", label))
		end := idx + count - 1
		if count == 1 {
			parts = append(parts, fmt.Sprintf("第%d张是【%s】的外貌", idx, label))
		} else {
			parts = append(parts, fmt.Sprintf("第%d至%d张是【%s】的多角度外貌照", idx, end, label))
		}
		idx += count
	}
	if len(parts) == 0 {
		return ""
	}
	return "【角色参考图对应关系——必须严格遵守】\n" +
		strings.Join(parts, "，") + "。\n" +
		fmt.Sprintf("画面描述文字里的%s与上面的参考图一一对应，请严格按照参考图还原每位角色的外貌。\n", strings.Join(labels, "、")) +
		"绝对禁止将两位角色的脸型、发型、体型互换或混用。\n"
}

// chineseCount 小数量的中文表述，超出范围退回阿拉伯数字
func chineseCount(n int) string {
	switch n {
	case 1:
		return "一"
	case 2:
		return "两"
	case 3:
		return "三"
	case 4:
		return "四"
	default:
		return fmt.Sprintf("%d", n)
	}
}
