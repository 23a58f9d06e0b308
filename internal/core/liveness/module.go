package liveness

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/config"
)

// Params 模块输入依赖
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Module 返回 fx 模块配置
//
// 只提供 Config；Reaper 由持有注册表的 server 创建。
func Module() fx.Option {
	return fx.Module("liveness",
		fx.Provide(func(p Params) Config {
			return ConfigFromUnified(p.Config)
		}),
	)
}
