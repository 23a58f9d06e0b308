// Package eventbus 实现进程内事件分发器
//
// 每种 EventKind 维护一组订阅者。Emit 在调用方 goroutine 上
// 同步调用该类型的所有处理函数，因此同一发射者发出的事件按顺序到达。
// 处理函数 panic 会被恢复并计数，不影响其余订阅者。
//
// # 快速开始
//
//	bus := eventbus.NewBus()
//
//	sub, _ := eventbus.On(bus, func(e types.DataReceivedEvent) {
//	    fmt.Printf("%s: %q\n", e.Remote, e.Payload)
//	})
//	defer sub.Close()
//
//	bus.Emit(types.DataReceivedEvent{Payload: []byte("hi")})
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(bus pkgif.EventBus) { ... }),
//	)
//
// # 并发安全
//
//   - 订阅/取消订阅：每个 kind 一把锁
//   - Emit：在锁内复制订阅者列表，在锁外调用处理函数
//   - 处理函数内部可以安全地订阅或取消订阅
package eventbus
