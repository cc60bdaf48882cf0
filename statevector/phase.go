package statevector

import "math"

const (
	PhaseCount      = 4  // 绿灯相位数
	PhasePeriod     = 30 // 每个相位持续的仿真秒数
	MinGreenSeconds = 10 // 最小绿灯时长（秒）

	// t每步+0.1，发送周期3秒，因此t*30对应实际秒数
	secondsPerUnit = 30
	// 消除t由步数乘以0.1得到时的浮点误差，避免30.0被截断为29
	floorEpsilon = 1e-9
)

// Phase 由仿真时间推导出的相位状态，不做存储
type Phase struct {
	Index       int  // 当前相位，0-3循环
	TimeInPhase int  // 当前相位已持续的秒数
	MinGreen    bool // 是否满足最小绿
}

// PhaseAt 根据仿真时间t计算相位
// 功能：将t换算为秒数后计算当前相位
// 参数：t-仿真时间（非负）
// 返回：相位状态
// 说明：秒数取 floor(t*30 + 1e-9) 而不是 floor(t*30)：t*30比某个整数小不到1e-9时按该整数计。
// 由步数乘以0.1得到的t只会因浮点误差略低于整数秒，此处将其归入正确的秒数
func PhaseAt(t float64) Phase {
	return PhaseFromSeconds(int(math.Floor(t*secondsPerUnit + floorEpsilon)))
}

// PhaseFromSeconds 根据已经过的秒数计算相位
// 算法说明：
// 1. 相位编号：(sec / 30) mod 4
// 2. 相位内时间：sec mod 30
// 3. 相位内时间不少于10秒时满足最小绿
func PhaseFromSeconds(sec int) Phase {
	if sec < 0 {
		sec = 0
	}
	inPhase := sec % PhasePeriod
	return Phase{
		Index:       (sec / PhasePeriod) % PhaseCount,
		TimeInPhase: inPhase,
		MinGreen:    inPhase >= MinGreenSeconds,
	}
}

// OneHot 相位的one-hot编码
func (p Phase) OneHot() []float64 {
	v := make([]float64, PhaseCount)
	v[p.Index] = 1
	return v
}

// MinGreenFlag 最小绿标志，0或1
func (p Phase) MinGreenFlag() float64 {
	if p.MinGreen {
		return 1
	}
	return 0
}
