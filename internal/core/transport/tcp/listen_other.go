//go:build !linux

package tcp

import (
	"context"
	"net"
)

// listen 使用标准库监听；非 Linux 平台上 backlog 由系统决定
func listen(addr string, _ int) (*net.TCPListener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}
	tl, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, ErrNotTCP
	}
	return tl, nil
}
