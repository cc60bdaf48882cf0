// 雷视机：周期性生成交通状态向量并推送给智能代理
// 每个周期新建一条TCP连接，写入一次后关闭，不复用连接；连接失败时逻辑时钟照常推进
package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/tsinghua-fib-lab/signal-testbed/clock"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
)

const (
	DefaultInterval = 3 * time.Second // 发送周期，同时也是连接失败后的重试间隔
)

// Dialer 建立到代理的连接，便于测试替换
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options 雷视机配置
type Options struct {
	Addr     string           // 代理地址 host:port
	Mode     statevector.Mode // 状态向量模式
	Interval time.Duration    // 发送周期，<=0时使用DefaultInterval
	Clock    *clock.Clock     // 逻辑时钟，nil时新建
	Dialer   Dialer           // nil时使用net.Dialer
}

// Client 状态向量发送端
// 功能：单协程顺序执行 连接->生成->写入->休眠，不存在并发
type Client struct {
	addr     string
	mode     statevector.Mode
	interval time.Duration
	clock    *clock.Clock
	dialer   Dialer
}

// NewClient 创建雷视机客户端
func NewClient(opts Options) *Client {
	c := &Client{
		addr:     opts.Addr,
		mode:     opts.Mode,
		interval: opts.Interval,
		clock:    opts.Clock,
		dialer:   opts.Dialer,
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.clock == nil {
		c.clock = clock.New(clock.DefaultDT)
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{}
	}
	return c
}

// Clock 客户端使用的逻辑时钟
func (c *Client) Clock() *clock.Clock {
	return c.clock
}

// Run 持续发送直到ctx取消
// 功能：循环执行Cycle并休眠固定周期，任何I/O错误都不会终止循环
// 返回：ctx取消时返回nil
func (c *Client) Run(ctx context.Context) error {
	log.Infof("sending %v state vectors to %s every %v", c.mode, c.addr, c.interval)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_ = c.Cycle(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.interval):
		}
	}
}

// Cycle 执行一个发送周期
// 功能：连接代理，生成当前t的状态向量，JSON编码后一次写入
// 返回：连接、编码或写入失败时返回错误（已记录日志）
// 算法说明：
// 1. 连接失败：记录日志与重试间隔，推进时钟后返回
// 2. 连接成功：生成向量、推进时钟、编码并写入，随后关闭连接
// 说明：无论是否发送成功，逻辑时钟都会推进一步
func (c *Client) Cycle(ctx context.Context) error {
	conn, err := c.dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		c.clock.Advance()
		log.Warnf("connect to agent %s failed: %v", c.addr, err)
		log.Infof("retry in %v", c.interval)
		return fmt.Errorf("detector: connect: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debugf("close connection: %v", err)
		}
	}()
	log.Debugf("connected to agent %s", c.addr)

	t := c.clock.T()
	vector := statevector.Generate(t, c.mode)
	c.clock.Advance()

	data, err := json.Marshal(vector)
	if err != nil {
		log.Errorf("encode state vector failed: %v", err)
		return fmt.Errorf("detector: encode: %w", err)
	}
	if _, err := conn.Write(data); err != nil {
		log.Warnf("send state vector failed: %v", err)
		return fmt.Errorf("detector: write: %w", err)
	}
	log.Infof("sent state vector t=%.1f (%s): %s", t, c.clock, data)
	return nil
}
