package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	ErrRejected = errors.New("controller: command not acknowledged")
)

// SendCommand 向信号机发送一条控制指令并等待确认
// 功能：建立连接、写入指令、读取一次回复，回复经JSON解码后应为"SUCCESS"
// 参数：ctx-上下文（控制连接建立与整体超时），addr-信号机地址，command-指令文本
// 返回：连接或读写失败时返回错误，回复不是确认消息时返回ErrRejected
func SendCommand(ctx context.Context, addr string, command string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("controller: connect %s: %w", addr, err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(command)); err != nil {
		return fmt.Errorf("controller: send command: %w", err)
	}
	buf := make([]byte, DefaultReadBufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		return fmt.Errorf("controller: read acknowledgement: %w", errors.Join(ErrRejected, err))
	}
	var reply string
	if err := json.Unmarshal(buf[:n], &reply); err != nil || reply != Acknowledgement {
		return fmt.Errorf("%w: %q", ErrRejected, buf[:n])
	}
	return nil
}
