package tcplink

import (
	"errors"

	"github.com/dep2p/go-tcplink/internal/core/client"
	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/internal/core/eventbus"
	"github.com/dep2p/go-tcplink/internal/core/server"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("tcplink: already started")

	// ErrStopped 已停止，不能再次启动
	ErrStopped = errors.New("tcplink: stopped")

	// ────────────────────────────────────────────────────────────────────────
	// 连接错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotConnected 客户端没有连接
	ErrNotConnected = client.ErrNotConnected

	// ErrDisconnecting 客户端上一次断开尚未完成
	ErrDisconnecting = client.ErrDisconnecting

	// ErrUnknownConn 服务端找不到目标连接
	ErrUnknownConn = server.ErrUnknownConn

	// ErrConnClosed 连接正在关闭
	ErrConnClosed = conn.ErrConnClosed

	// ErrSendQueueFull 发送队列已满
	ErrSendQueueFull = conn.ErrSendQueueFull

	// ErrEmptyPayload 负载为空
	ErrEmptyPayload = conn.ErrEmptyPayload

	// ErrBusClosed 事件总线已关闭
	ErrBusClosed = eventbus.ErrClosed
)
