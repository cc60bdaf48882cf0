package agent

import (
	"fmt"

	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/randengine"
)

// Observation 一次决策的输入
type Observation struct {
	Current int                // 代理当前的绿灯相位
	Fields  statevector.Fields // 雷视机上报的状态
}

// Policy 相位选择策略
type Policy interface {
	// Decide 返回目标绿灯相位，取值0-3
	Decide(obs Observation) int
}

// NewPolicy 根据名称创建策略
// 参数：name-cycle|random|max_pressure，seed-random策略的随机种子
func NewPolicy(name string, seed uint64) (Policy, error) {
	switch name {
	case "cycle":
		return CyclePolicy{}, nil
	case "random":
		return &RandomPolicy{engine: randengine.New(seed)}, nil
	case "max_pressure":
		return MaxPressurePolicy{}, nil
	}
	return nil, fmt.Errorf("agent: unknown policy %q", name)
}

// CyclePolicy 按固定顺序轮换相位
type CyclePolicy struct{}

func (CyclePolicy) Decide(obs Observation) int {
	return (obs.Current + 1) % statevector.PhaseCount
}

// RandomPolicy 按各相位排队长度加权随机选取
type RandomPolicy struct {
	engine *randengine.Engine
}

func (p *RandomPolicy) Decide(obs Observation) int {
	return p.engine.DiscreteDistributionSafe(groupQueues(obs.Fields.QueueLength))
}

// MaxPressurePolicy 选择排队长度之和最大的相位
// 车道i归属于相位 i mod 4；并列时优先保持当前相位，否则取编号较小者
type MaxPressurePolicy struct{}

func (MaxPressurePolicy) Decide(obs Observation) int {
	best, bestPressure := -1, -mathutil.INF
	for phase, p := range groupQueues(obs.Fields.QueueLength) {
		if p > bestPressure || (p == bestPressure && phase == obs.Current) {
			best, bestPressure = phase, p
		}
	}
	return best
}

// groupQueues 各相位所辖车道的排队长度之和
func groupQueues(queue []float64) []float64 {
	return lo.Times(statevector.PhaseCount, func(phase int) float64 {
		lanes := lo.Filter(queue, func(_ float64, i int) bool {
			return i%statevector.PhaseCount == phase
		})
		return lo.Sum(lanes)
	})
}
