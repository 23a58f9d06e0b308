package tcplink

import "github.com/dep2p/go-tcplink/internal/core/eventbus"

// Subscriber 可订阅事件的对象，Server 与 Client 均实现
type Subscriber interface {
	Subscribe(kind EventKind, h Handler) (Subscription, error)
}

// On 按事件类型订阅
//
//	tcplink.On(srv, func(e tcplink.ClientConnectedEvent) {
//	    fmt.Println("connected:", e.Remote)
//	})
func On[T Event](s Subscriber, fn func(T)) (Subscription, error) {
	if fn == nil {
		return nil, eventbus.ErrNilHandler
	}
	var zero T
	return s.Subscribe(zero.Kind(), func(evt Event) {
		if e, ok := evt.(T); ok {
			fn(e)
		}
	})
}

var (
	_ Subscriber = (*Server)(nil)
	_ Subscriber = (*Client)(nil)
)
