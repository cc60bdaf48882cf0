// 智能代理桩：接收雷视机状态向量，按固定策略选择相位并向信号机下发灯色指令
// 不包含任何学习模型，用于在没有外部代理时完整运行测试平台
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tsinghua-fib-lab/signal-testbed/controller"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
)

const (
	maxPayload     = 64 << 10 // 单条状态向量的读取上限
	commandTimeout = 5 * time.Second
)

// Options 代理配置
type Options struct {
	Addr           string           // 接收雷视机数据的监听地址
	ControllerAddr string           // 信号机地址
	Policy         Policy           // 相位选择策略，nil时使用CyclePolicy
	MinGreen       time.Duration    // 最小绿灯时长
	Yellow         time.Duration    // 黄灯时长
	PhaseLights    map[int]string   // 相位到灯色串，需包含0-7
	Now            func() time.Time // nil时使用time.Now
	Sender         Sender           // nil时通过controller.SendCommand发送到ControllerAddr
}

// Agent 智能代理
type Agent struct {
	addr   string
	policy Policy
	signal *signal

	queue   chan observed
	phase   atomic.Int32
	dropped atomic.Int64

	mtx sync.Mutex
	ln  net.Listener
}

type observed struct {
	vector statevector.Vector
	mode   statevector.Mode
}

// New 创建代理
func New(opts Options) (*Agent, error) {
	for phase := 0; phase < 2*statevector.PhaseCount; phase++ {
		if _, ok := opts.PhaseLights[phase]; !ok {
			return nil, fmt.Errorf("agent: missing lights for phase %d", phase)
		}
	}
	if opts.Policy == nil {
		opts.Policy = CyclePolicy{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sender == nil {
		addr := opts.ControllerAddr
		opts.Sender = func(ctx context.Context, command string) error {
			ctx, cancel := context.WithTimeout(ctx, commandTimeout)
			defer cancel()
			return controller.SendCommand(ctx, addr, command)
		}
	}
	return &Agent{
		addr:   opts.Addr,
		policy: opts.Policy,
		signal: &signal{
			phaseStart: opts.Now(),
			minGreen:   opts.MinGreen,
			yellow:     opts.Yellow,
			lights:     opts.PhaseLights,
			send:       opts.Sender,
			now:        opts.Now,
		},
		queue: make(chan observed, 1),
	}, nil
}

// Phase 当前绿灯相位
func (a *Agent) Phase() int {
	return int(a.phase.Load())
}

// Dropped 因决策繁忙而丢弃的状态向量数
func (a *Agent) Dropped() int64 {
	return a.dropped.Load()
}

// Addr 实际监听地址，未启动时为nil
func (a *Agent) Addr() net.Addr {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// ListenAndServe 监听配置的地址，直到ctx取消
func (a *Agent) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("agent: listen %s: %w", a.addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve 在给定listener上接收状态向量
// 功能：每条连接读到EOF后解码，送入容量为1的队列；单个决策协程顺序处理
// 说明：决策协程正在切换相位（含黄灯等待）时，新到的状态向量被丢弃
func (a *Agent) Serve(ctx context.Context, ln net.Listener) error {
	a.mtx.Lock()
	a.ln = ln
	a.mtx.Unlock()
	log.Infof("agent listening on %s", ln.Addr())

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.decideLoop(ctx)
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("agent: accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.receive(conn)
		}()
	}
}

func (a *Agent) receive(conn net.Conn) {
	defer conn.Close()
	data, err := io.ReadAll(io.LimitReader(conn, maxPayload))
	if err != nil {
		log.Warnf("read state vector from %s failed: %v", conn.RemoteAddr(), err)
		return
	}
	if len(data) == 0 {
		return
	}
	v, mode, err := statevector.Decode(data)
	if err != nil {
		log.Warnf("bad state vector from %s: %v", conn.RemoteAddr(), err)
		return
	}
	select {
	case a.queue <- observed{vector: v, mode: mode}:
	default:
		a.dropped.Add(1)
		log.Debugf("decision busy, dropped %v state vector", mode)
	}
}

func (a *Agent) decideLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-a.queue:
			if _, err := a.Observe(ctx, o.vector, o.mode); err != nil && ctx.Err() == nil {
				log.Warnf("decision failed: %v", err)
			}
		}
	}
}

// Observe 处理一条状态向量
// 功能：由策略给出目标相位，并按最小绿与黄灯规则尝试切换
// 返回：是否发生了相位切换
// 说明：不可并发调用
func (a *Agent) Observe(ctx context.Context, v statevector.Vector, mode statevector.Mode) (bool, error) {
	fields, err := v.Split(mode)
	if err != nil {
		return false, err
	}
	target := a.policy.Decide(Observation{Current: a.signal.current, Fields: fields})
	log.Infof("phase %d (%.0fs) => target %d", a.signal.current, a.signal.duration().Seconds(), target)
	switched, err := a.signal.switchTo(ctx, target)
	a.phase.Store(int32(a.signal.current))
	return switched, err
}
