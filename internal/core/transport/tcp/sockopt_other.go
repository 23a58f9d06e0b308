//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package tcp

import (
	"net"
	"syscall"
)

// reuseAddrControl 在不支持的平台上不做任何设置
func reuseAddrControl(_, _ string, _ syscall.RawConn) error {
	return nil
}

// Probe 在不支持非阻塞窥视的平台上总是报告存活
//
// 这些平台上断开检测完全依赖读任务的终止上报。
func Probe(_ net.Conn) error {
	return nil
}
