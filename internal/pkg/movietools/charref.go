package movietools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// 参考图目录下每个角色的四方向图，按此顺序收取
var refDirections = []string{"front", "oblique", "side", "back"}

// 支持的参考图扩展名，兼容大小写
var refExts = []string{".png", ".jpg", ".PNG", ".JPG"}

var (
	characterNumPattern    = regexp.MustCompile(`(?i)^Character\s*(\d+)`)
	characterLetterPattern = regexp.MustCompile(`(?i)^Character\s*([A-D])`)
)

// MaxRefImagesPerShot 单镜参考图上限
const MaxRefImagesPerShot = 8

// MaxRefImagesPerCharacter 单角色参考图上限（四方向各一张）
const MaxRefImagesPerCharacter = 4

// CharacterResolver 把分镜里的角色标签（如 Character 1）解析为
// 角色参考图根目录下的文件夹名，并收取对应参考图
// 在一次生成任务开始时构建，任务期间不变
type CharacterResolver struct {
	root    string
	mapping map[string]string // character_mapping.json，可为 nil
	dirs    []string          // 根目录下的角色文件夹名，字典序
}

// NewCharacterResolver 扫描参考图根目录并加载可选的 character_mapping.json
// 根目录不存在时返回空 resolver，所有标签原样保留
func NewCharacterResolver(root string) *CharacterResolver {
	r := &CharacterResolver{root: root}

	mappingPath := filepath.Join(root, "character_mapping.json")
	if data, err := os.ReadFile(mappingPath); err == nil {
		var m map[string]string
		if err := json.Unmarshal(data, &m); err == nil {
			r.mapping = m
		} else {
			log.Warn().Err(err).Str("path", mappingPath).Msg("invalid character_mapping.json, ignoring")
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("character root not readable")
		return r
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			r.dirs = append(r.dirs, e.Name())
		}
	}
	// 严格字典序。Character N 的序号映射依赖这个顺序，
	// 与历史任务产物保持一致，不能换成自然序
	sort.Strings(r.dirs)
	return r
}

// Dirs 返回根目录下的所有角色文件夹名
func (r *CharacterResolver) Dirs() []string { return r.dirs }

// Mapping 返回 character_mapping.json 的内容，可能为 nil
func (r *CharacterResolver) Mapping() map[string]string { return r.mapping }

// Resolve 解析一组角色标签为文件夹名
// 优先级：mapping 命中 > （无 mapping 时）Character N 按序号取第 N 个目录、
// Character A-D 按字母取目录；都不命中时原样保留并记日志
func (r *CharacterResolver) Resolve(names []string) []string {
	if len(names) == 0 {
		return names
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, r.resolveOne(name))
	}
	return out
}

func (r *CharacterResolver) resolveOne(name string) string {
	if r.mapping != nil {
		if mapped, ok := r.mapping[name]; ok {
			return mapped
		}
		// 有映射文件但未命中：不再尝试序号推断
		return name
	}

	if m := characterNumPattern.FindStringSubmatch(name); m != nil && len(r.dirs) > 0 {
		idx, _ := strconv.Atoi(m[1])
		if idx >= 1 && idx <= len(r.dirs) {
			return r.dirs[idx-1]
		}
		log.Warn().Str("label", name).Int("dirs", len(r.dirs)).Msg("character index out of range, keeping label")
		return name
	}
	if m := characterLetterPattern.FindStringSubmatch(name); m != nil && len(r.dirs) > 0 {
		idx := int(strings.ToUpper(m[1])[0] - 'A')
		if idx >= 0 && idx < len(r.dirs) {
			return r.dirs[idx]
		}
		log.Warn().Str("label", name).Int("dirs", len(r.dirs)).Msg("character letter out of range, keeping label")
		return name
	}
	return name
}

// RefImages 按角色顺序收取四方向参考图（front→oblique→side→back）
// 每角色最多 4 张，总共最多 8 张；每个方向取第一个存在的扩展名
func (r *CharacterResolver) RefImages(charNames []string) []string {
	var out []string
	for _, group := range r.RefImageGroups(charNames) {
		out = append(out, group...)
	}
	return out
}

// RefImageGroups 同 RefImages，但按角色分组返回，
// 供关键帧指令里的「第 N 至 M 张是某角色」对应关系使用
func (r *CharacterResolver) RefImageGroups(charNames []string) [][]string {
	groups := make([][]string, 0, len(charNames))
	total := 0
	seen := make(map[string]struct{})
	for _, name := range charNames {
		base := filepath.Join(r.root, strings.ReplaceAll(name, " ", "_"))
		var group []string
		for _, dir := range refDirections {
			if total >= MaxRefImagesPerShot {
				break
			}
			for _, ext := range refExts {
				p := filepath.Join(base, dir+ext)
				if _, dup := seen[p]; dup {
					break
				}
				if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
					group = append(group, p)
					seen[p] = struct{}{}
					total++
					break
				}
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// FirstRefImage 返回角色的第一张可用参考图，用于只接受单图的模型
func (r *CharacterResolver) FirstRefImage(charName string) string {
	base := filepath.Join(r.root, strings.ReplaceAll(charName, " ", "_"))
	for _, dir := range refDirections {
		for _, ext := range refExts {
			p := filepath.Join(base, dir+ext)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
	}
	return ""
}
