package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 返回 metrics 的 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(NewReporterFromParams),
	)
}

// NewReporterFromParams 按配置创建 Reporter
//
// 未启用时返回 Nop。
func NewReporterFromParams(p Params) Reporter {
	cfg := config.DefaultMetricsConfig()
	if p.Config != nil {
		cfg = p.Config.Metrics
	}
	if !cfg.Enabled {
		return Nop{}
	}
	return NewCollector(Config{
		Namespace:  cfg.Namespace,
		Registerer: p.Registerer,
	})
}
