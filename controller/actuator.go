package controller

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
)

// Actuator 硬件驱动接口
// 功能：将收到的控制指令下发到信号灯硬件（如CAN总线），实现不得阻塞过久
type Actuator interface {
	Apply(command string)
}

// NopActuator 不驱动任何硬件的占位实现，仅输出调试日志
type NopActuator struct{}

func (NopActuator) Apply(command string) {
	states, ok := ParseLights(command)
	if !ok {
		log.Debugf("actuator: %q is not a light string, nothing to drive", command)
		return
	}
	log.Debugf(
		"actuator: %d lights (green=%d yellow=%d red=%d), hardware hook not attached",
		len(states),
		lo.Count(states, mapv2.LightState_LIGHT_STATE_GREEN),
		lo.Count(states, mapv2.LightState_LIGHT_STATE_YELLOW),
		lo.Count(states, mapv2.LightState_LIGHT_STATE_RED),
	)
}

// ParseLights 将灯色串解析为各灯位状态
// 功能：G/g为绿灯，Y/y为黄灯，R/r为红灯
// 返回：串为空或包含其他字符时ok为false
func ParseLights(s string) (states []mapv2.LightState, ok bool) {
	if s == "" {
		return nil, false
	}
	states = make([]mapv2.LightState, 0, len(s))
	for _, c := range s {
		switch c {
		case 'G', 'g':
			states = append(states, mapv2.LightState_LIGHT_STATE_GREEN)
		case 'Y', 'y':
			states = append(states, mapv2.LightState_LIGHT_STATE_YELLOW)
		case 'R', 'r':
			states = append(states, mapv2.LightState_LIGHT_STATE_RED)
		default:
			return nil, false
		}
	}
	return states, true
}
