package connmgr

import "errors"

var (
	// ErrUnknownConn 连接不在注册表中
	ErrUnknownConn = errors.New("connmgr: unknown connection")
)
