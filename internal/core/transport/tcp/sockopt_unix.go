//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package tcp

import (
	"errors"
	"io"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl 在 bind 之前设置 SO_REUSEADDR
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return serr
}

// Probe 对连接做一次非阻塞存活探测
//
// 使用 recv(MSG_PEEK|MSG_DONTWAIT) 窥视 1 字节，不消费数据：
//   - 有数据或 EAGAIN: 存活，返回 nil
//   - 可读且 0 字节:   对端已关闭，返回 ErrPeerClosed
//   - 其他错误:        探测失败，返回该错误
//
// 通过 RawConn.Control 执行，不占用读锁，因此可以与阻塞中的读任务并发。
func Probe(c net.Conn) error {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return nil
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return &OpError{Op: "probe", Err: err}
	}

	var (
		buf  [1]byte
		n    int
		rerr error
	)
	cerr := rc.Control(func(fd uintptr) {
		n, _, rerr = unix.Recvfrom(int(fd), buf[:], unix.MSG_PEEK|unix.MSG_DONTWAIT)
	})
	if cerr != nil {
		return &OpError{Op: "probe", Err: cerr}
	}

	switch {
	case rerr == nil && n == 0:
		return ErrPeerClosed
	case rerr == nil:
		return nil
	case errors.Is(rerr, unix.EAGAIN), errors.Is(rerr, unix.EWOULDBLOCK), errors.Is(rerr, unix.EINTR):
		return nil
	case errors.Is(rerr, io.EOF):
		return ErrPeerClosed
	default:
		return &OpError{Op: "probe", Err: rerr}
	}
}
