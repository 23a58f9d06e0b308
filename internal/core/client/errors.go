package client

import "errors"

var (
	// ErrNotConnected 当前没有连接
	ErrNotConnected = errors.New("client: not connected")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("client: closed")

	// ErrDisconnecting 上一次断开尚未完成
	ErrDisconnecting = errors.New("client: disconnect in progress")
)
