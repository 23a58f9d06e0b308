package eventbus

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	EventBus pkgif.EventBus
	Emitter  pkgif.Emitter
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("eventbus",
		fx.Provide(ProvideEventBus),
		fx.Invoke(registerLifecycle),
	)
}

// Params EventBus 依赖参数
type Params struct {
	fx.In

	Reporter metrics.Reporter `optional:"true"`
}

// ProvideEventBus 提供 EventBus 实例
func ProvideEventBus(p Params) Result {
	var opts []Option
	if p.Reporter != nil {
		opts = append(opts, WithPanicHook(p.Reporter.HandlerPanic))
	}
	bus := NewBus(opts...)
	return Result{
		EventBus: bus,
		Emitter:  bus,
	}
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC       fx.Lifecycle
	EventBus pkgif.EventBus
}

// registerLifecycle 注册生命周期
//
// 停止时关闭总线，晚于其他模块的 OnStop 执行，
// 因此关闭过程中发出的断开事件仍能送达。
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return input.EventBus.Close()
		},
	})
}
