package types

import "net"

// ConnInfo 连接信息快照
type ConnInfo struct {
	ID       ConnID
	Role     Role
	Local    net.Addr
	Remote   net.Addr
	Status   ConnStatus
	BytesIn  uint64
	BytesOut uint64
}
