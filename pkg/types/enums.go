package types

// ============================================================================
//                              ConnStatus - 连接状态
// ============================================================================

// ConnStatus 连接生命周期状态
//
// 单次连接/断开周期内状态只能单调前进：
//
//	Connecting → Connected → Disconnecting → Disconnected
type ConnStatus int32

const (
	// StatusDisconnected 已断开（零值，也是初始状态）
	StatusDisconnected ConnStatus = iota
	// StatusConnecting 正在连接
	StatusConnecting
	// StatusConnected 已连接
	StatusConnected
	// StatusDisconnecting 正在断开
	StatusDisconnecting
)

// String 返回状态的字符串表示
func (s ConnStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusDisconnecting:
		return "disconnecting"
	case StatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// rank 返回状态在一个周期内的序号
func (s ConnStatus) rank() int {
	switch s {
	case StatusConnecting:
		return 1
	case StatusConnected:
		return 2
	case StatusDisconnecting:
		return 3
	case StatusDisconnected:
		return 4
	default:
		return 0
	}
}

// CanTransition 检查 from → to 是否为合法的前进迁移
//
// Disconnected → Connecting 开启新的周期，同样合法。
func CanTransition(from, to ConnStatus) bool {
	if from == StatusDisconnected && to == StatusConnecting {
		return true
	}
	return to.rank() == from.rank()+1
}

// ============================================================================
//                              Role - 角色
// ============================================================================

// Role 连接所属角色
type Role int

const (
	// RoleUnknown 未知角色
	RoleUnknown Role = iota
	// RoleClient 客户端（出站）
	RoleClient
	// RoleServer 服务端（入站）
	RoleServer
)

// String 返回角色的字符串表示
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	default:
		return "unknown"
	}
}
