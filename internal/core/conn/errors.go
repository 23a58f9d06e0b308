package conn

import "errors"

var (
	// ErrConnClosed 连接已关闭或正在关闭
	ErrConnClosed = errors.New("conn: connection closed")

	// ErrSendQueueFull 发送队列已满
	ErrSendQueueFull = errors.New("conn: send queue full")

	// ErrEmptyPayload 发送内容为空
	ErrEmptyPayload = errors.New("conn: empty payload")

	// ErrInvalidTransition 非法的状态迁移
	ErrInvalidTransition = errors.New("conn: invalid status transition")
)
