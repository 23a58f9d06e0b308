package server

import (
	"errors"

	"github.com/dep2p/go-tcplink/internal/core/connmgr"
)

var (
	// ErrServerClosed 服务端已停止
	ErrServerClosed = errors.New("server: closed")

	// ErrNotRunning 服务端未启动
	ErrNotRunning = errors.New("server: not running")

	// ErrUnknownConn 目标连接不存在
	ErrUnknownConn = connmgr.ErrUnknownConn
)
