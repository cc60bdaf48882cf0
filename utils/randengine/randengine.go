// 随机数引擎，包装了golang.org/x/exp/rand，提供代理随机策略所需的随机数生成方法
package randengine

import (
	"flag"
	"sync"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：线程安全的随机数生成
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
// 参数：seed-随机数种子，实际种子为seed加上种子偏移量
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// IntnSafe 随机生成[0, n)的整数（线程安全）
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}

// DiscreteDistributionSafe 按给定权重随机选取下标（线程安全）
// 参数：weight-权重数组，每个元素表示对应索引的概率权重
// 返回：随机生成的索引值；权重全为0时均匀选取
// 算法说明：
// 1. 计算总权重，在[0, 总权重)范围内生成随机数
// 2. 累积权重直到超过随机数，返回对应索引
func (e *Engine) DiscreteDistributionSafe(weight []float64) int {
	total := .0
	for _, w := range weight {
		total += w
	}
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if total <= 0 {
		return e.Intn(len(weight))
	}
	random := total * e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return i
		}
	}
	return len(weight) - 1
}
