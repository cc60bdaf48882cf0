package controller

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tracker 上一条指令的执行时间
// 功能：信号机启动时创建一次，传入所有连接处理协程共享
// 说明：读取旧值、计算间隔、写入新值在同一临界区内完成，临界区内不做任何I/O
type Tracker struct {
	now func() time.Time

	mtx     sync.Mutex
	last    time.Time
	updates atomic.Int64
}

// NewTracker 创建执行时间记录，初始值为创建时刻
// 参数：now-时钟函数，nil时使用time.Now
func NewTracker(now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{now: now, last: now()}
}

// Record 记录一次指令执行
// 返回：距上一条指令的间隔，时钟回拨时为0
func (t *Tracker) Record() time.Duration {
	t.mtx.Lock()
	now := t.now()
	interval := now.Sub(t.last)
	t.last = now
	t.mtx.Unlock()

	t.updates.Add(1)
	if interval < 0 {
		return 0
	}
	return interval
}

// Last 最近一次执行时间
func (t *Tracker) Last() time.Time {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.last
}

// Updates 累计更新次数
func (t *Tracker) Updates() int64 {
	return t.updates.Load()
}
