package agent_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-testbed/agent"
	"github.com/tsinghua-fib-lab/signal-testbed/controller"
	"github.com/tsinghua-fib-lab/signal-testbed/detector"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/config"
)

type manualClock struct {
	mtx sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.now
}

func (c *manualClock) Add(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.now = c.now.Add(d)
}

type recordingSender struct {
	mtx  sync.Mutex
	sent []string
}

func (s *recordingSender) Send(_ context.Context, command string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.sent = append(s.sent, command)
	return nil
}

func (s *recordingSender) Sent() []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return append([]string(nil), s.sent...)
}

func newTestAgent(t *testing.T, policy agent.Policy) (*agent.Agent, *manualClock, *recordingSender) {
	t.Helper()
	clk := &manualClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
	sender := &recordingSender{}
	a, err := agent.New(agent.Options{
		Policy:      policy,
		MinGreen:    10 * time.Second,
		Yellow:      time.Millisecond,
		PhaseLights: config.DefaultPhaseLights,
		Now:         clk.Now,
		Sender:      sender.Send,
	})
	require.NoError(t, err)
	return a, clk, sender
}

func TestNewRequiresAllLights(t *testing.T) {
	_, err := agent.New(agent.Options{PhaseLights: map[int]string{0: "G"}})
	assert.Error(t, err)
}

func TestMinGreenBlocksSwitch(t *testing.T) {
	a, clk, sender := newTestAgent(t, agent.CyclePolicy{})
	v := statevector.Generate(0, statevector.ModeFull)

	clk.Add(5 * time.Second)
	switched, err := a.Observe(context.Background(), v, statevector.ModeFull)
	require.NoError(t, err)
	assert.False(t, switched)
	assert.Empty(t, sender.Sent())
	assert.Equal(t, 0, a.Phase())
}

func TestSwitchSendsYellowThenTarget(t *testing.T) {
	a, clk, sender := newTestAgent(t, agent.CyclePolicy{})
	v := statevector.Generate(0, statevector.ModeReduced)

	clk.Add(11 * time.Second)
	switched, err := a.Observe(context.Background(), v, statevector.ModeReduced)
	require.NoError(t, err)
	assert.True(t, switched)
	assert.Equal(t, []string{config.DefaultPhaseLights[4], config.DefaultPhaseLights[1]}, sender.Sent())
	assert.Equal(t, 1, a.Phase())

	// 相位计时已重置
	switched, err = a.Observe(context.Background(), v, statevector.ModeReduced)
	require.NoError(t, err)
	assert.False(t, switched)
	assert.Len(t, sender.Sent(), 2)
}

func TestSameTargetKeepsPhase(t *testing.T) {
	a, clk, sender := newTestAgent(t, agent.MaxPressurePolicy{})
	// 所有车道排队长度相同时保持当前相位
	v := make(statevector.Vector, statevector.ModeReduced.Len())
	clk.Add(time.Minute)
	switched, err := a.Observe(context.Background(), v, statevector.ModeReduced)
	require.NoError(t, err)
	assert.False(t, switched)
	assert.Empty(t, sender.Sent())
}

func TestObserveRejectsBadVector(t *testing.T) {
	a, _, _ := newTestAgent(t, nil)
	_, err := a.Observe(context.Background(), statevector.Vector{1, 2, 3}, statevector.ModeFull)
	assert.ErrorIs(t, err, statevector.ErrBadLength)
}

// 雷视机 -> 代理 -> 信号机 全链路
func TestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrlLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctrl := controller.NewServer(controller.Options{})
	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Serve(ctx, ctrlLn) }()

	agentLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a, err := agent.New(agent.Options{
		ControllerAddr: ctrlLn.Addr().String(),
		Policy:         agent.CyclePolicy{},
		PhaseLights:    config.DefaultPhaseLights,
	})
	require.NoError(t, err)
	agentDone := make(chan error, 1)
	go func() { agentDone <- a.Serve(ctx, agentLn) }()

	d := detector.NewClient(detector.Options{Addr: agentLn.Addr().String(), Mode: statevector.ModeFull})
	require.NoError(t, d.Cycle(ctx))

	assert.Eventually(t, func() bool {
		return ctrl.Tracker().Updates() == 2 && a.Phase() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-agentDone)
	assert.NoError(t, <-ctrlDone)
}
