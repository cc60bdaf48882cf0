package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-testbed/agent"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
)

// queueFor 构造只有指定相位车道有排队的观测
func queueFor(phase int, current int) agent.Observation {
	queue := make([]float64, statevector.LaneCount)
	for i := range queue {
		if i%statevector.PhaseCount == phase {
			queue[i] = 50
		}
	}
	return agent.Observation{
		Current: current,
		Fields: statevector.Fields{
			Density:     make([]float64, statevector.LaneCount),
			QueueLength: queue,
		},
	}
}

func TestCyclePolicy(t *testing.T) {
	p := agent.CyclePolicy{}
	assert.Equal(t, 1, p.Decide(agent.Observation{Current: 0}))
	assert.Equal(t, 0, p.Decide(agent.Observation{Current: 3}))
}

func TestMaxPressurePolicy(t *testing.T) {
	p := agent.MaxPressurePolicy{}
	assert.Equal(t, 2, p.Decide(queueFor(2, 0)))
	assert.Equal(t, 3, p.Decide(queueFor(3, 1)))
	assert.Equal(t, 1, p.Decide(queueFor(1, 1)))
}

func TestMaxPressureTieKeepsCurrent(t *testing.T) {
	p := agent.MaxPressurePolicy{}
	empty := agent.Observation{
		Current: 2,
		Fields:  statevector.Fields{QueueLength: make([]float64, statevector.LaneCount)},
	}
	assert.Equal(t, 2, p.Decide(empty))
	empty.Current = 0
	assert.Equal(t, 0, p.Decide(empty))

	queue := make([]float64, statevector.LaneCount)
	queue[1], queue[2] = 5, 5
	tied := agent.Observation{Current: 0, Fields: statevector.Fields{QueueLength: queue}}
	assert.Equal(t, 1, p.Decide(tied))
}

func TestRandomPolicyWeighted(t *testing.T) {
	p, err := agent.NewPolicy("random", 7)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		assert.Equal(t, 3, p.Decide(queueFor(3, 0)))
	}
}

func TestNewPolicy(t *testing.T) {
	for _, name := range []string{"cycle", "random", "max_pressure"} {
		p, err := agent.NewPolicy(name, 0)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := agent.NewPolicy("dqn", 0)
	assert.Error(t, err)
}
