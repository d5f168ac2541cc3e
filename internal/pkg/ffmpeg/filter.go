package ffmpeg

import (
	"fmt"
	"strings"
)

// BuildCrossfadeFilter 构造 xfade 滤镜链
// 相邻片段重叠 crossfade 秒：
//
//	offset_1 = d0 - cf
//	offset_k = offset_{k-1} + d_k - cf
//
// 返回 filter_complex 表达式（输出标签 [v]）和最终视频时长
func BuildCrossfadeFilter(durations []float64, crossfade float64) (string, float64) {
	n := len(durations)
	if n == 0 {
		return "", 0
	}
	if n == 1 {
		return "[0:v]copy[v]", durations[0]
	}

	var b strings.Builder
	prev := "[0:v]"
	offset := 0.0
	for i := 1; i < n; i++ {
		offset += durations[i-1] - crossfade
		out := fmt.Sprintf("[vx%d]", i)
		if i == n-1 {
			out = "[v]"
		}
		fmt.Fprintf(&b, "%s[%d:v]xfade=transition=fade:duration=%.3f:offset=%.3f%s",
			prev, i, crossfade, offset, out)
		if i != n-1 {
			b.WriteString(";")
		}
		prev = out
	}

	total := 0.0
	for _, d := range durations {
		total += d
	}
	total -= crossfade * float64(n-1)

	return b.String(), total
}
