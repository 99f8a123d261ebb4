package district

import "fmt"

// 流水线阶段
const (
	StageLoad  = "load"
	StageMerge = "merge"
)

// StageError：某一阶段失败；记录仍以占位形式输出
type StageError struct {
	District string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("district %s: %s stage: %v", e.District, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
