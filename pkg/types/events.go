package types

import "net"

// ============================================================================
//                              EventKind - 事件类型
// ============================================================================

// EventKind 通知类型
type EventKind int

const (
	// EventUnknown 未知事件
	EventUnknown EventKind = iota
	// EventStatusChanged 连接状态变化
	EventStatusChanged
	// EventDataReceived 收到数据
	EventDataReceived
	// EventDataSent 数据已发送
	EventDataSent
	// EventServerStarted 服务端已启动
	EventServerStarted
	// EventClientConnected 客户端已接入
	EventClientConnected
	// EventClientDisconnected 客户端已断开
	EventClientDisconnected
)

// AllEventKinds 返回所有有效事件类型
func AllEventKinds() []EventKind {
	return []EventKind{
		EventStatusChanged,
		EventDataReceived,
		EventDataSent,
		EventServerStarted,
		EventClientConnected,
		EventClientDisconnected,
	}
}

// String 返回事件类型的字符串表示
func (k EventKind) String() string {
	switch k {
	case EventStatusChanged:
		return "status_changed"
	case EventDataReceived:
		return "data_received"
	case EventDataSent:
		return "data_sent"
	case EventServerStarted:
		return "server_started"
	case EventClientConnected:
		return "client_connected"
	case EventClientDisconnected:
		return "client_disconnected"
	default:
		return "unknown"
	}
}

// Event 事件接口
type Event interface {
	// Kind 返回事件类型
	Kind() EventKind
}

// ============================================================================
//                              事件负载
// ============================================================================
//
// 地址字段均可能为 nil：连接建立前或释放后没有可用地址。

// StatusChangedEvent 连接状态变化
type StatusChangedEvent struct {
	ConnID ConnID
	Local  net.Addr
	Remote net.Addr
	Status ConnStatus
}

// Kind 实现 Event
func (StatusChangedEvent) Kind() EventKind { return EventStatusChanged }

// DataReceivedEvent 一次读取完成所得的原始字节
//
// Payload 恰好是本次读取的字节，不跨读取聚合，也不做分帧。
type DataReceivedEvent struct {
	ConnID  ConnID
	Local   net.Addr
	Remote  net.Addr
	Payload []byte
}

// Kind 实现 Event
func (DataReceivedEvent) Kind() EventKind { return EventDataReceived }

// DataSentEvent 一次 Send 的负载已完整写出
type DataSentEvent struct {
	ConnID  ConnID
	Local   net.Addr
	Remote  net.Addr
	Payload []byte
}

// Kind 实现 Event
func (DataSentEvent) Kind() EventKind { return EventDataSent }

// ServerStartedEvent 服务端开始监听
type ServerStartedEvent struct {
	Addr net.Addr
}

// Kind 实现 Event
func (ServerStartedEvent) Kind() EventKind { return EventServerStarted }

// ClientConnectedEvent 服务端接受了一个新连接
type ClientConnectedEvent struct {
	ConnID ConnID
	Remote net.Addr
}

// Kind 实现 Event
func (ClientConnectedEvent) Kind() EventKind { return EventClientConnected }

// ClientDisconnectedEvent 服务端驱逐了一个连接
type ClientDisconnectedEvent struct {
	ConnID ConnID
	Remote net.Addr
}

// Kind 实现 Event
func (ClientDisconnectedEvent) Kind() EventKind { return EventClientDisconnected }
