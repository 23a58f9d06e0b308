package tcp

import (
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ListenOptions 监听选项
type ListenOptions struct {
	// Backlog 最大挂起连接数，<= 0 时使用系统默认值
	Backlog int

	// NoDelay 是否对接入连接禁用 Nagle 算法
	NoDelay bool

	// KeepAlive 接入连接的 TCP KeepAlive 周期，0 表示关闭
	KeepAlive time.Duration
}

// Listener TCP 监听器
type Listener struct {
	listener *net.TCPListener
	opts     ListenOptions
	closed   atomic.Bool
}

// Listen 在 addr 上监听
func Listen(addr string, opts ListenOptions) (*Listener, error) {
	l, err := listen(addr, opts.Backlog)
	if err != nil {
		return nil, &OpError{Op: "listen", Addr: addr, Err: err}
	}
	return &Listener{listener: l, opts: opts}, nil
}

// Accept 阻塞等待下一个入站连接
//
// 关闭后返回 ErrListenerClosed。
func (l *Listener) Accept() (*net.TCPConn, error) {
	conn, err := l.listener.AcceptTCP()
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, &OpError{Op: "accept", Addr: l.Addr().String(), Err: err}
	}

	if l.opts.NoDelay {
		_ = conn.SetNoDelay(true)
	}
	if l.opts.KeepAlive > 0 {
		_ = conn.SetKeepAlive(true)
		_ = conn.SetKeepAlivePeriod(l.opts.KeepAlive)
	} else {
		// net 包默认对接入连接开启 KeepAlive
		_ = conn.SetKeepAlive(false)
	}
	return conn, nil
}

// Addr 返回实际监听地址（端口为 0 时由系统分配）
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close 关闭监听器，只有第一次调用真正生效
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.listener.Close()
	}
	return nil
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}

// String 返回监听地址描述
func (l *Listener) String() string {
	return fmt.Sprintf("tcp-listener(%s)", l.Addr())
}
