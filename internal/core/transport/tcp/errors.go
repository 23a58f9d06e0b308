package tcp

import (
	"errors"
	"io"
	"net"
	"syscall"
)

var (
	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("tcp: listener closed")

	// ErrPeerClosed 对端已关闭（可读且 0 字节）
	ErrPeerClosed = errors.New("tcp: peer closed")

	// ErrNotTCP 不是 TCP 连接
	ErrNotTCP = errors.New("tcp: not a TCP connection")
)

// OpError 套接字操作错误
//
// 与 net.OpError 类似，但 Op 使用 tcplink 自己的操作名
// （listen / dial / accept / probe），便于调用方按操作处理。
type OpError struct {
	Op   string
	Addr string
	Err  error
}

func (e *OpError) Error() string {
	if e.Addr == "" {
		return "tcp " + e.Op + ": " + e.Err.Error()
	}
	return "tcp " + e.Op + " " + e.Addr + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsPeerClosed 判断错误是否表示连接已被对端（或本地句柄释放）关闭
//
// 这类错误是读写任务的正常终止条件，不应作为异常记录。
func IsPeerClosed(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, ErrPeerClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ESHUTDOWN):
		return true
	}
	return false
}
