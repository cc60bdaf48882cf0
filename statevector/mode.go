package statevector

import (
	"errors"
	"fmt"
)

// Mode 状态向量模式
// 功能：选择状态向量是否包含相位与最小绿字段
// 说明：两种模式共用同一个生成器，只在输出时决定是否拼接前缀
type Mode int

const (
	ModeFull    Mode = iota // [相位one-hot(4), 最小绿(1), 密度(19), 排队长度(19)]
	ModeReduced             // [密度(19), 排队长度(19)]
)

var (
	ErrUnknownMode = errors.New("statevector: unknown mode")
)

// ParseMode 从配置字符串解析模式
func ParseMode(s string) (Mode, error) {
	switch s {
	case "full":
		return ModeFull, nil
	case "reduced":
		return ModeReduced, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeReduced:
		return "reduced"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Len 该模式下状态向量的长度
func (m Mode) Len() int {
	if m == ModeFull {
		return headerLen + 2*LaneCount
	}
	return 2 * LaneCount
}
