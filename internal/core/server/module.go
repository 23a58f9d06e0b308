package server

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/liveness"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config   *config.Config   `optional:"true"`
	Emitter  pkgif.Emitter    `optional:"true"`
	Reporter metrics.Reporter `optional:"true"`

	// Liveness 由 liveness.Module 提供时覆盖统一配置中的回收器配置
	Liveness liveness.Config `optional:"true"`
}

// ProvideServer 提供 Server 实例
func ProvideServer(input ModuleInput) *Server {
	cfg := ConfigFromUnified(input.Config)
	if input.Liveness.ProbeInterval > 0 || input.Liveness.DisableProbe {
		cfg.Liveness = input.Liveness
	}
	return New(cfg, input.Emitter, input.Reporter)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(ProvideServer),
		fx.Invoke(registerLifecycle),
	)
}

// registerLifecycle 注册生命周期
func registerLifecycle(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return s.Stop(ctx)
		},
	})
}
