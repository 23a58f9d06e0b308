package tcp

import (
	"context"
	"net"
	"time"
)

// DialOptions 拨号选项
type DialOptions struct {
	// LocalPort 绑定的本地端口，0 表示由系统分配
	LocalPort int

	// Timeout 拨号超时，0 表示只受 ctx 约束
	Timeout time.Duration

	// NoDelay 是否禁用 Nagle 算法
	NoDelay bool

	// KeepAlive TCP KeepAlive 周期，0 表示关闭
	KeepAlive time.Duration
}

// Dial 建立出站 TCP 连接
//
// LocalPort 非 0 时设置 SO_REUSEADDR 后绑定该端口，
// 这样断开后可以立即用同一本地端口重新拨号。
func Dial(ctx context.Context, addr string, opts DialOptions) (*net.TCPConn, error) {
	d := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: -1,
	}
	if opts.KeepAlive > 0 {
		d.KeepAlive = opts.KeepAlive
	}
	if opts.LocalPort > 0 {
		d.LocalAddr = &net.TCPAddr{Port: opts.LocalPort}
		d.Control = reuseAddrControl
	}

	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &OpError{Op: "dial", Addr: addr, Err: err}
	}

	tc, ok := c.(*net.TCPConn)
	if !ok {
		_ = c.Close()
		return nil, &OpError{Op: "dial", Addr: addr, Err: ErrNotTCP}
	}
	if opts.NoDelay {
		_ = tc.SetNoDelay(true)
	}
	return tc, nil
}
