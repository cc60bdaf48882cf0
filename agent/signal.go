package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
)

// Sender 向信号机发送一条灯色指令
type Sender func(ctx context.Context, command string) error

// signal 代理维护的信号机状态
// 功能：记录当前相位与相位开始时间，执行 绿灯->黄灯->绿灯 的切换流程
// 说明：只在决策协程中使用，不需要加锁
type signal struct {
	current    int
	phaseStart time.Time

	minGreen time.Duration
	yellow   time.Duration
	lights   map[int]string
	send     Sender
	now      func() time.Time
}

// yellowOf 绿灯相位对应的黄灯相位
func yellowOf(phase int) int {
	return phase + statevector.PhaseCount
}

// duration 当前相位已持续的时长
func (s *signal) duration() time.Duration {
	return s.now().Sub(s.phaseStart)
}

// switchTo 切换到目标绿灯相位
// 返回：是否发生了切换
// 算法说明：
// 1. 目标与当前相位相同：不切换
// 2. 当前相位未满足最小绿：不切换
// 3. 发送当前相位的黄灯指令，等待黄灯时长
// 4. 发送目标相位指令，重置相位计时
// 说明：指令发送失败只记录日志，切换流程继续
func (s *signal) switchTo(ctx context.Context, target int) (bool, error) {
	if target < 0 || target >= statevector.PhaseCount {
		return false, fmt.Errorf("agent: phase %d out of range", target)
	}
	if target == s.current {
		return false, nil
	}
	if d := s.duration(); d < s.minGreen {
		log.Infof("phase %d has run %.0fs, below min green %v, keep", s.current, d.Seconds(), s.minGreen)
		return false, nil
	}

	s.command(ctx, yellowOf(s.current))
	log.Infof("waiting yellow for %v", s.yellow)
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-time.After(s.yellow):
	}
	s.command(ctx, target)

	log.Infof("phase %d -> %d", s.current, target)
	s.current = target
	s.phaseStart = s.now()
	return true, nil
}

func (s *signal) command(ctx context.Context, phase int) {
	lights := s.lights[phase]
	log.Debugf("target lights: %s", lights)
	if err := s.send(ctx, lights); err != nil {
		log.Warnf("send lights of phase %d failed: %v", phase, err)
		return
	}
	log.Infof("signal switched to phase %d", phase)
}
