package movie

import "fmt"

// StageError 分镜阶段失败，Stage 对应 Step_1/2/3 的阶段名
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MissingArtifactError 依赖的中间产物不存在
// 例如 resume-from-shots 时历史 Step_3 文件缺失、拼接时成片不存在
type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("required artifact not found: %s", e.Path)
}
