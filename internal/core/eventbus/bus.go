package eventbus

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
	"github.com/dep2p/go-tcplink/pkg/types"
)

var logger = log.Logger("core/eventbus")

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrClosed 事件总线已关闭
	ErrClosed = errors.New("eventbus: closed")
	// ErrInvalidEventType 无效的事件类型
	ErrInvalidEventType = errors.New("eventbus: invalid event type")
	// ErrNilHandler 处理函数为空
	ErrNilHandler = errors.New("eventbus: nil handler")
)

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 事件总线
type Bus struct {
	nodes  map[types.EventKind]*node
	closed atomic.Bool

	// panics 处理函数 panic 次数
	panics atomic.Uint64
	// panicLog 限制 panic 日志频率
	panicLog rate.Sometimes
	// onPanic 每次 panic 后调用，用于上报指标
	onPanic func()
}

// Option Bus 选项
type Option func(*Bus)

// WithPanicHook 设置处理函数 panic 后的回调
func WithPanicHook(fn func()) Option {
	return func(b *Bus) {
		b.onPanic = fn
	}
}

// 确保实现接口
var _ pkgif.EventBus = (*Bus)(nil)

// node 事件类型节点
type node struct {
	lk    sync.Mutex
	kind  types.EventKind
	sinks []*Subscription
}

// NewBus 创建新的事件总线
//
// 所有事件类型的节点在创建时一次性建好，之后 nodes 只读。
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		nodes:    make(map[types.EventKind]*node),
		panicLog: rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
	for _, k := range types.AllEventKinds() {
		b.nodes[k] = &node{kind: k}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe 订阅事件
func (b *Bus) Subscribe(kind types.EventKind, h pkgif.Handler) (pkgif.Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	n, ok := b.nodes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEventType, kind)
	}

	sub := &Subscription{bus: b, node: n, handler: h}

	n.lk.Lock()
	n.sinks = append(n.sinks, sub)
	n.lk.Unlock()

	return sub, nil
}

// Emit 将事件同步投递给所有订阅者
//
// 总线关闭后或事件类型无效时直接返回。
func (b *Bus) Emit(evt types.Event) {
	if evt == nil || b.closed.Load() {
		return
	}
	n, ok := b.nodes[evt.Kind()]
	if !ok {
		return
	}

	n.lk.Lock()
	sinks := make([]*Subscription, len(n.sinks))
	copy(sinks, n.sinks)
	n.lk.Unlock()

	for _, sub := range sinks {
		if sub.closed.Load() {
			continue
		}
		b.deliver(sub, evt)
	}
}

// deliver 调用单个处理函数并恢复 panic
func (b *Bus) deliver(sub *Subscription, evt types.Event) {
	defer func() {
		if r := recover(); r != nil {
			total := b.panics.Add(1)
			b.panicLog.Do(func() {
				logger.Warn("订阅者处理函数 panic",
					"kind", evt.Kind(),
					"panic", r,
					"total", total)
			})
			if b.onPanic != nil {
				b.onPanic()
			}
		}
	}()
	sub.handler(evt)
}

// Close 关闭事件总线
//
// 关闭后 Emit 不再投递，Subscribe 返回 ErrClosed。可以多次调用。
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, n := range b.nodes {
		n.lk.Lock()
		n.sinks = nil
		n.lk.Unlock()
	}
	return nil
}

// Panics 返回处理函数 panic 的累计次数
func (b *Bus) Panics() uint64 {
	return b.panics.Load()
}

// Subscribers 返回指定类型的订阅者数量
func (b *Bus) Subscribers(kind types.EventKind) int {
	n, ok := b.nodes[kind]
	if !ok {
		return 0
	}
	n.lk.Lock()
	defer n.lk.Unlock()
	return len(n.sinks)
}

// removeSub 移除订阅
func (n *node) removeSub(sub *Subscription) {
	n.lk.Lock()
	defer n.lk.Unlock()

	for i, s := range n.sinks {
		if s == sub {
			n.sinks = append(n.sinks[:i], n.sinks[i+1:]...)
			return
		}
	}
}

// ============================================================================
// 泛型辅助
// ============================================================================

// On 按事件的具体类型订阅
//
// T 必须是值类型的事件结构体（如 types.DataReceivedEvent）。
func On[T types.Event](bus pkgif.EventBus, fn func(T)) (pkgif.Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	var zero T
	return bus.Subscribe(zero.Kind(), func(evt types.Event) {
		if e, ok := evt.(T); ok {
			fn(e)
		}
	})
}
