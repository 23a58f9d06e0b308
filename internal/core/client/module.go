package client

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config   *config.Config   `optional:"true"`
	Emitter  pkgif.Emitter    `optional:"true"`
	Reporter metrics.Reporter `optional:"true"`
}

// ProvideClient 提供 Client 实例
func ProvideClient(input ModuleInput) *Client {
	return New(ConfigFromUnified(input.Config), input.Emitter, input.Reporter)
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("client",
		fx.Provide(ProvideClient),
		fx.Invoke(registerLifecycle),
	)
}

// registerLifecycle 注册生命周期
//
// 配置了 ServerAddr 时启动即连接，连接失败会让应用启动失败。
func registerLifecycle(lc fx.Lifecycle, c *Client) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if c.cfg.ServerAddr == "" {
				return nil
			}
			return c.Connect(ctx, c.cfg.ServerAddr)
		},
		OnStop: func(_ context.Context) error {
			return c.Close()
		},
	})
}
