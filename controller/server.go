// 信号机：接收控制指令，记录指令间隔并回复确认
// 每条连接只处理一条指令：读取一次、更新执行时间、回复"SUCCESS"后关闭
//
// 协议不做分帧，一次写入对应一次读取：被拆分到多次读取的指令只处理第一段，
// 同一连接上连续发送的多条指令会被当作一条。单个连接的读写没有超时，静默的对端会一直占用一个处理协程。
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultReadBufferSize = 1024
	Acknowledgement       = "SUCCESS"
)

// ackPayload 确认消息，JSON字符串形式，含引号共9字节
var ackPayload = func() []byte {
	b, err := json.Marshal(Acknowledgement)
	if err != nil {
		panic(err)
	}
	return b
}()

// Options 信号机配置
type Options struct {
	Addr           string   // 监听地址 host:port
	ReadBufferSize int      // 单次读取上限，<=0时使用DefaultReadBufferSize
	MaxHandlers    int      // 同时处理的连接上限，<=0不限制
	Tracker        *Tracker // 执行时间记录，nil时新建
	Actuator       Actuator // 硬件驱动，nil时使用NopActuator
}

// Server 控制指令接收服务
// 功能：单协程accept，每条连接启动独立协程处理
type Server struct {
	addr     string
	bufSize  int
	sem      *semaphore.Weighted
	tracker  *Tracker
	actuator Actuator

	mtx sync.Mutex
	ln  net.Listener
	wg  sync.WaitGroup
}

// NewServer 创建信号机服务
func NewServer(opts Options) *Server {
	s := &Server{
		addr:     opts.Addr,
		bufSize:  opts.ReadBufferSize,
		tracker:  opts.Tracker,
		actuator: opts.Actuator,
	}
	if s.bufSize <= 0 {
		s.bufSize = DefaultReadBufferSize
	}
	if opts.MaxHandlers > 0 {
		s.sem = semaphore.NewWeighted(int64(opts.MaxHandlers))
	}
	if s.tracker == nil {
		s.tracker = NewTracker(nil)
	}
	if s.actuator == nil {
		s.actuator = NopActuator{}
	}
	return s
}

// Tracker 服务使用的执行时间记录
func (s *Server) Tracker() *Tracker {
	return s.tracker
}

// Addr 实际监听地址，未启动时为nil
func (s *Server) Addr() net.Addr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ListenAndServe 监听配置的地址并处理连接，直到ctx取消
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("controller: listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve 在给定listener上处理连接
// 功能：ctx取消时关闭listener并等待所有处理协程退出
// 返回：ctx取消时返回nil，accept失败时返回错误
// 说明：设置了MaxHandlers时，accept前先获取处理名额，名额用尽时不再接收新连接
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mtx.Lock()
	s.ln = ln
	s.mtx.Unlock()
	log.Infof("controller listening on %s", ln.Addr())

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()
	defer s.wg.Wait()

	for {
		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
		}
		conn, err := ln.Accept()
		if err != nil {
			if s.sem != nil {
				s.sem.Release(1)
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("controller: accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if s.sem != nil {
				defer s.sem.Release(1)
			}
			s.handle(conn)
		}()
	}
}

// handle 处理一条连接
// 算法说明：
// 1. 读取一次，最多bufSize字节；读到0字节视为对端关闭，直接结束
// 2. 非UTF-8内容直接丢弃，不回复
// 3. 去除首尾空白得到指令，更新执行时间并记录间隔
// 4. 交给硬件驱动，回复"SUCCESS"后关闭连接
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	l := log.WithField("conn", uuid.NewString()).WithField("peer", conn.RemoteAddr().String())

	buf := make([]byte, s.bufSize)
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			l.Debugf("read failed: %v", err)
		}
		return
	}
	payload := buf[:n]
	if !utf8.Valid(payload) {
		l.Debugf("dropped %d bytes of non UTF-8 payload", n)
		return
	}
	command := strings.TrimSpace(string(payload))

	interval := s.tracker.Record()
	l.Infof("received command: %s (since last command: %.2fs)", command, interval.Seconds())

	s.actuator.Apply(command)

	if _, err := conn.Write(ackPayload); err != nil {
		l.Warnf("send acknowledgement failed: %v", err)
	}
}
