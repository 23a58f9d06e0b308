package tcplink

import (
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

type (
	// ConnID 连接标识
	ConnID = types.ConnID

	// ConnStatus 连接状态
	ConnStatus = types.ConnStatus

	// Role 连接角色
	Role = types.Role

	// ConnInfo 连接快照
	ConnInfo = types.ConnInfo
)

// 连接状态
const (
	StatusConnecting    = types.StatusConnecting
	StatusConnected     = types.StatusConnected
	StatusDisconnecting = types.StatusDisconnecting
	StatusDisconnected  = types.StatusDisconnected
)

// 连接角色
const (
	RoleClient = types.RoleClient
	RoleServer = types.RoleServer
)

// ════════════════════════════════════════════════════════════════════════════
//                              事件
// ════════════════════════════════════════════════════════════════════════════

type (
	// Event 事件接口
	Event = types.Event

	// EventKind 事件类型
	EventKind = types.EventKind

	// Handler 事件处理函数
	Handler = pkgif.Handler

	// Subscription 事件订阅
	Subscription = pkgif.Subscription

	StatusChangedEvent      = types.StatusChangedEvent
	DataReceivedEvent       = types.DataReceivedEvent
	DataSentEvent           = types.DataSentEvent
	ServerStartedEvent      = types.ServerStartedEvent
	ClientConnectedEvent    = types.ClientConnectedEvent
	ClientDisconnectedEvent = types.ClientDisconnectedEvent
)

// 事件类型
const (
	EventStatusChanged      = types.EventStatusChanged
	EventDataReceived       = types.EventDataReceived
	EventDataSent           = types.EventDataSent
	EventServerStarted      = types.EventServerStarted
	EventClientConnected    = types.EventClientConnected
	EventClientDisconnected = types.EventClientDisconnected
)

// ════════════════════════════════════════════════════════════════════════════
//                              统计
// ════════════════════════════════════════════════════════════════════════════

// Stats 流量与连接统计
//
// 指标未启用时所有字段为零。
type Stats = metrics.Stats
