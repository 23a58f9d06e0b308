package eventbus

import (
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/types"
)

// ============================================================================
// Subscription 实现
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	node      *node
	handler   pkgif.Handler
	closeOnce sync.Once
	closed    atomic.Bool
}

var _ pkgif.Subscription = (*Subscription)(nil)

// Kind 返回订阅的事件类型
func (s *Subscription) Kind() types.EventKind {
	return s.node.kind
}

// Close 取消订阅
//
// Close 是并发安全的，可以多次调用。正在进行的 Emit
// 若已复制了订阅者列表，关闭后也不会再调用该处理函数。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.node.removeSub(s)
	})
	return nil
}
