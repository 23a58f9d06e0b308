package interfaces

import "github.com/dep2p/go-tcplink/pkg/types"

// Handler 事件处理函数
//
// 在发射者的 goroutine 上同步调用，应尽快返回。
type Handler func(evt types.Event)

// Emitter 事件发射接口
//
// 核心组件（Listener、Connector、Reaper）只需要发射能力。
type Emitter interface {
	// Emit 将事件同步投递给该类型的所有订阅者
	Emit(evt types.Event)
}

// EventBus 定义事件总线接口
//
// 每种 EventKind 维护一组订阅者，一对多广播，订阅者之间无顺序保证。
type EventBus interface {
	Emitter

	// Subscribe 订阅指定类型的事件
	Subscribe(kind types.EventKind, h Handler) (Subscription, error)

	// Close 关闭事件总线，此后 Emit 不再投递
	Close() error
}

// Subscription 定义事件订阅接口
type Subscription interface {
	// Kind 返回订阅的事件类型
	Kind() types.EventKind

	// Close 取消订阅，可重复调用
	Close() error
}
