package statevector

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrBadLength = errors.New("statevector: unexpected vector length")
)

// Decode 解析JSON编码的状态向量，并根据长度推断模式
func Decode(data []byte) (Vector, Mode, error) {
	var v Vector
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, 0, fmt.Errorf("statevector: decode: %w", err)
	}
	switch len(v) {
	case ModeFull.Len():
		return v, ModeFull, nil
	case ModeReduced.Len():
		return v, ModeReduced, nil
	}
	return nil, 0, fmt.Errorf("%w: %d", ErrBadLength, len(v))
}

// Fields 状态向量的分段视图
type Fields struct {
	PhaseOneHot []float64 // reduced模式为nil
	MinGreen    float64   // reduced模式为0
	Density     []float64
	QueueLength []float64
}

// Split 按模式切分状态向量，返回的切片与v共享底层数组
func (v Vector) Split(mode Mode) (Fields, error) {
	if len(v) != mode.Len() {
		return Fields{}, fmt.Errorf("%w: %d for mode %v", ErrBadLength, len(v), mode)
	}
	var f Fields
	rest := v
	if mode == ModeFull {
		f.PhaseOneHot = rest[:PhaseCount]
		f.MinGreen = rest[PhaseCount]
		rest = rest[headerLen:]
	}
	f.Density = rest[:LaneCount]
	f.QueueLength = rest[LaneCount:]
	return f, nil
}
