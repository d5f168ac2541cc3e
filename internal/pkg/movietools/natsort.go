package movietools

import (
	"sort"
	"strconv"
	"unicode"
)

// NatSort 原地自然排序："Shot 2" 排在 "Shot 10" 之前
func NatSort(items []string) {
	sort.SliceStable(items, func(i, j int) bool {
		return NatLess(items[i], items[j])
	})
}

// SortedKeys 返回 map 的键，按自然序排序
// 规划结果的键形如 "Sub-Script 1"，遍历顺序必须与生成顺序一致
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	NatSort(keys)
	return keys
}

// NatLess 比较两个字符串的自然序
// 把连续数字当作一个整体比较，其余部分逐字符比较
func NatLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		if isDigit(a[0]) && isDigit(b[0]) {
			na, ra := takeNumber(a)
			nb, rb := takeNumber(b)
			if na != nb {
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return unicode.IsDigit(rune(c))
}

// takeNumber 取出前缀数字及剩余部分
func takeNumber(s string) (int64, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n, _ := strconv.ParseInt(s[:i], 10, 64)
	return n, s[i:]
}
