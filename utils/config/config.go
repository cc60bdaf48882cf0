package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

var log = logrus.WithField("module", "config")

// DefaultPhaseLights 默认的相位灯色表
// 根据渠化图共有39个逻辑灯位，0-3为绿灯相位，4-7为对应黄灯相位
var DefaultPhaseLights = map[int]string{
	0: "GGGGGGrrrrrrrrrrrrrGGGGGGrrrrrrrrrrrrrr",
	1: "rrrrrrGGGGrrrrrrrrrrrrrrrGGGGrrrrrrrrrr",
	2: "rrrrrrrrrrGGGGGGrrrrrrrrrrrrrGGGGGGrrrr",
	3: "rrrrrrrrrrrrrrrrGGGrrrrrrrrrrrrrrrrGGGG",
	4: "yyyyyyrrrrrrrrrrrrryyyyyyrrrrrrrrrrrrrr",
	5: "rrrrrryyyyrrrrrrrrrrrrrrryyyyrrrrrrrrrr",
	6: "rrrrrrrrrryyyyyyrrrrrrrrrrrrryyyyyyrrrr",
	7: "rrrrrrrrrrrrrrrryyyrrrrrrrrrrrrrrrryyyy",
}

// Default 返回内置默认配置
// 功能：配置文件不存在时使用的默认值，也是解析配置文件前的初始值
// 说明：未在文件中出现的字段保持默认值
func Default() Config {
	lights := make(map[int]string, len(DefaultPhaseLights))
	for k, v := range DefaultPhaseLights {
		lights[k] = v
	}
	return Config{
		Controller: Controller{
			Endpoint:   Endpoint{Host: "0.0.0.0", Port: 50051},
			ReadBuffer: 1024,
		},
		Agent: Endpoint{Host: "0.0.0.0", Port: 50052},
		Detector: Detector{
			Mode:     "full",
			Interval: 3 * time.Second,
		},
		Policy: Policy{
			Name:        "cycle",
			MinGreen:    10 * time.Second,
			Yellow:      3 * time.Second,
			PhaseLights: lights,
		},
	}
}

// Load 读取配置文件
// 功能：从YAML文件加载配置，文件不存在时使用默认配置
// 参数：path-配置文件路径
// 返回：配置对象；文件存在但内容非法时返回错误
// 算法说明：
// 1. 文件不存在：返回Default()，不视为错误
// 2. 严格模式解析YAML，未知字段视为错误
// 3. 校验各字段取值
func Load(path string) (Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Infof("config file %s not found, using defaults", path)
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config file load err: %w", err)
	}
	return Parse(file)
}

// Parse 解析YAML格式的配置内容
// 说明：灯色表在解析前置空，文件中未给出的相位再从DefaultPhaseLights补齐，
// 否则严格模式会把文件中的相位视为重复键
func Parse(data []byte) (Config, error) {
	c := Default()
	c.Policy.PhaseLights = nil
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("config parse err: %w", err)
	}
	if c.Policy.PhaseLights == nil {
		c.Policy.PhaseLights = make(map[int]string, len(DefaultPhaseLights))
	}
	for phase, lights := range DefaultPhaseLights {
		if _, ok := c.Policy.PhaseLights[phase]; !ok {
			c.Policy.PhaseLights[phase] = lights
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate 校验配置取值
func (c Config) Validate() error {
	for name, e := range map[string]Endpoint{"controller": c.Controller.Endpoint, "agent": c.Agent} {
		if e.Port <= 0 || e.Port > 65535 {
			return fmt.Errorf("config: %s port %d out of range", name, e.Port)
		}
	}
	if c.Controller.MaxHandlers < 0 {
		return fmt.Errorf("config: controller max_handlers must not be negative")
	}
	if c.Controller.ReadBuffer <= 0 {
		return fmt.Errorf("config: controller read_buffer must be positive")
	}
	switch c.Detector.Mode {
	case "full", "reduced":
	default:
		return fmt.Errorf("config: unknown detector mode %q", c.Detector.Mode)
	}
	if c.Detector.Interval <= 0 {
		return fmt.Errorf("config: detector interval must be positive")
	}
	switch c.Policy.Name {
	case "cycle", "random", "max_pressure":
	default:
		return fmt.Errorf("config: unknown policy %q", c.Policy.Name)
	}
	if c.Policy.MinGreen < 0 || c.Policy.Yellow < 0 {
		return fmt.Errorf("config: policy durations must not be negative")
	}
	for phase := 0; phase < 8; phase++ {
		if _, ok := c.Policy.PhaseLights[phase]; !ok {
			return fmt.Errorf("config: missing lights for phase %d", phase)
		}
	}
	return nil
}
