package clock

import (
	"fmt"
	"sync"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
)

const (
	DefaultDT = 0.1 // 每个发送周期的逻辑时间步长

	// 每单位t对应的仿真秒数
	secondsPerUnit = 30
)

// Clock 雷视机的逻辑时钟
// 功能：维护逻辑时间t，每个发送周期推进一步，与墙上时钟的发送间隔无关
// 说明：t由步数乘以步长得到而不是逐步累加，避免浮点误差积累；可被状态RPC并发读取
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT float64 // 每步的时间间隔

	mtx          sync.RWMutex
	internalStep int64   // 当前步数
	t            float64 // 当前时间
}

// New 创建逻辑时钟
// 参数：dt-每步时间间隔，非正数时使用DefaultDT
func New(dt float64) *Clock {
	if dt <= 0 {
		dt = DefaultDT
	}
	c := &Clock{DT: dt}
	c.Init()
	return c
}

// Init 重置时钟到第0步
func (c *Clock) Init() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.internalStep = 0
	c.t = 0
}

// Advance 推进一步
func (c *Clock) Advance() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.internalStep++
	c.t = float64(c.internalStep) * c.DT
}

// T 当前逻辑时间t
func (c *Clock) T() float64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.t
}

// Step 当前步数
func (c *Clock) Step() int64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.internalStep
}

// String 获取时钟的字符串表示
// 功能：将t换算为仿真秒数后格式化为 HH:MM:SS
func (c *Clock) String() string {
	t := c.T() * secondsPerUnit
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
