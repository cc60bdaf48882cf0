package config

import (
	"net"
	"strconv"
	"time"
)

// Endpoint TCP地址配置
type Endpoint struct {
	Host string `yaml:"host"` // 主机地址
	Port int    `yaml:"port"` // 端口
}

// Addr 拼接为 host:port 形式
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Controller 信号机（指令接收端）配置
// 功能：定义信号机监听地址与连接处理参数
// 说明：MaxHandlers为0时不限制并发连接数
type Controller struct {
	Endpoint    `yaml:",inline"`
	MaxHandlers int `yaml:"max_handlers,omitempty"` // 同时处理的连接上限，0为不限制
	ReadBuffer  int `yaml:"read_buffer,omitempty"`  // 单次读取的缓冲区大小（字节）
}

// Detector 雷视机（状态发送端）配置
type Detector struct {
	Mode     string        `yaml:"mode"`               // 状态向量模式：full|reduced
	Interval time.Duration `yaml:"interval,omitempty"` // 发送周期
}

// Policy 代理决策配置
// 功能：定义代理桩的相位选择策略与相位切换约束
// 说明：PhaseLights的键为相位编号，0-3为绿灯相位，4-7为对应的黄灯相位
type Policy struct {
	Name        string         `yaml:"name"`                   // 策略名：cycle|random|max_pressure
	Seed        uint64         `yaml:"seed,omitempty"`         // random策略的随机种子
	MinGreen    time.Duration  `yaml:"min_green"`              // 最小绿灯时长
	Yellow      time.Duration  `yaml:"yellow"`                 // 黄灯持续时长
	PhaseLights map[int]string `yaml:"phase_lights,omitempty"` // 相位到灯色串的映射
}

// Config YAML配置文件的根结构
// 功能：定义整个测试平台的配置结构，三个进程读取同一份配置
type Config struct {
	Controller Controller `yaml:"controller"` // 信号机
	Agent      Endpoint   `yaml:"agent"`      // 智能代理
	Detector   Detector   `yaml:"detector"`   // 雷视机
	Policy     Policy     `yaml:"policy"`     // 代理决策
}
