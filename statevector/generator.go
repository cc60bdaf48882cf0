// 交通状态向量生成器
// 密度与排队长度由仿真时间的正余弦函数生成，每个车道带有固定的相位偏移，不依赖任何真实传感器
package statevector

import (
	"math"

	"github.com/samber/lo"
)

const (
	LaneCount = 19 // 车道数

	headerLen = PhaseCount + 1

	densityOffset = 0.1 // 密度曲线每车道的相位偏移
	queueOffset   = 0.2 // 排队长度曲线每车道的相位偏移
	amplitude     = 0.4
	baseline      = 0.5
	scale         = 100.0
)

// Vector 发送给代理的状态向量
type Vector []float64

// Generate 生成t时刻的状态向量
// 功能：纯函数，同一t与模式总是得到相同结果
// 参数：t-仿真时间，mode-向量模式
// 返回：长度为mode.Len()的状态向量
// 算法说明：
// 1. 密度：round((sin(t + 0.1i) * 0.4 + 0.5) * 100, 2)
// 2. 排队长度：round((cos(t + 0.2i) * 0.4 + 0.5) * 100, 2)
// 3. full模式在前面拼接相位one-hot与最小绿标志，相位由PhaseAt计算（含1e-9的取整容差）
func Generate(t float64, mode Mode) Vector {
	density := Density(t)
	queue := QueueLength(t)

	v := make(Vector, 0, mode.Len())
	if mode == ModeFull {
		p := PhaseAt(t)
		v = append(v, p.OneHot()...)
		v = append(v, p.MinGreenFlag())
	}
	v = append(v, density...)
	v = append(v, queue...)
	return v
}

// Density 各车道密度
func Density(t float64) []float64 {
	return lo.Times(LaneCount, func(i int) float64 {
		return curve(math.Sin(t + float64(i)*densityOffset))
	})
}

// QueueLength 各车道排队长度
func QueueLength(t float64) []float64 {
	return lo.Times(LaneCount, func(i int) float64 {
		return curve(math.Cos(t + float64(i)*queueOffset))
	})
}

func curve(wave float64) float64 {
	return lo.Clamp(round2((wave*amplitude+baseline)*scale), 0, scale)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
