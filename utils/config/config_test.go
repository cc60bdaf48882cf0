package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:50051", c.Controller.Addr())
	assert.Equal(t, "0.0.0.0:50052", c.Agent.Addr())
	assert.Equal(t, "full", c.Detector.Mode)
	assert.Equal(t, 3*time.Second, c.Detector.Interval)
	assert.Equal(t, 1024, c.Controller.ReadBuffer)
	assert.Equal(t, 0, c.Controller.MaxHandlers)
	assert.Len(t, c.Policy.PhaseLights, 8)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := []byte(`
controller:
  host: 127.0.0.1
  port: 6000
  max_handlers: 8
detector:
  mode: reduced
policy:
  name: max_pressure
  yellow: 1500ms
  phase_lights:
    0: GGGG
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", c.Controller.Addr())
	assert.Equal(t, 8, c.Controller.MaxHandlers)
	assert.Equal(t, 1024, c.Controller.ReadBuffer)
	assert.Equal(t, "0.0.0.0:50052", c.Agent.Addr())
	assert.Equal(t, "reduced", c.Detector.Mode)
	assert.Equal(t, "max_pressure", c.Policy.Name)
	assert.Equal(t, 1500*time.Millisecond, c.Policy.Yellow)
	assert.Equal(t, 10*time.Second, c.Policy.MinGreen)
	assert.Equal(t, "GGGG", c.Policy.PhaseLights[0])
	assert.Equal(t, config.DefaultPhaseLights[4], c.Policy.PhaseLights[4])
}

func TestParseAllPhaseLights(t *testing.T) {
	data := []byte(`
policy:
  phase_lights:
    0: G
    1: g
    2: GG
    3: gg
    4: Y
    5: y
    6: YY
    7: yy
`)
	c, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{0: "G", 1: "g", 2: "GG", 3: "gg", 4: "Y", 5: "y", 6: "YY", 7: "yy"}, c.Policy.PhaseLights)
	assert.Equal(t, "GGGGGGrrrrrrrrrrrrrGGGGGGrrrrrrrrrrrrrr", config.DefaultPhaseLights[0])
}

func TestParseSinglePhaseLights(t *testing.T) {
	c, err := config.Parse([]byte("policy:\n  phase_lights:\n    3: rrrrGGGG\n"))
	require.NoError(t, err)
	assert.Equal(t, "rrrrGGGG", c.Policy.PhaseLights[3])
	assert.Equal(t, config.DefaultPhaseLights[7], c.Policy.PhaseLights[7])
	assert.Len(t, c.Policy.PhaseLights, 8)
}

func TestLoadExampleConfig(t *testing.T) {
	c, err := config.Load(filepath.Join("..", "..", "config.example.yml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:50051", c.Controller.Addr())
	assert.Equal(t, "0.0.0.0:50052", c.Agent.Addr())
	assert.Equal(t, "full", c.Detector.Mode)
	assert.Equal(t, 3*time.Second, c.Detector.Interval)
	assert.Equal(t, "cycle", c.Policy.Name)
	assert.Equal(t, 10*time.Second, c.Policy.MinGreen)
	assert.Equal(t, 3*time.Second, c.Policy.Yellow)
	assert.Len(t, c.Policy.PhaseLights, 8)
}

func TestLoadMalformed(t *testing.T) {
	cases := map[string]string{
		"syntax":        "controller: [",
		"unknown field": "controller:\n  hostname: x\n",
		"bad port":      "agent:\n  port: 70000\n",
		"bad mode":      "detector:\n  mode: partial\n",
		"bad policy":    "policy:\n  name: dqn\n",
		"bad type":      "controller:\n  port: abc\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := config.Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultDoesNotShareLights(t *testing.T) {
	c := config.Default()
	c.Policy.PhaseLights[0] = "changed"
	assert.NotEqual(t, "changed", config.DefaultPhaseLights[0])
}
