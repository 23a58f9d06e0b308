package tcplink

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-tcplink/internal/core/eventbus"
	"github.com/dep2p/go-tcplink/internal/core/liveness"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
)

var logger = log.Logger("tcplink")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：metrics → eventbus → liveness → 角色模块。
// OnStop 逆序执行，eventbus 晚于角色模块关闭，停止过程中的断开事件仍能送达。
// populate 中的指针在返回前已被填充。
func buildFxApp(o *options, role fx.Option, populate ...any) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 日志（最早应用）
	// ════════════════════════════════════════════════════════════════════════
	if o.logOutput != nil {
		level, err := log.ParseLevel(o.config.Log.Level)
		if err != nil {
			return nil, err
		}
		log.Setup(o.logOutput, level, log.Format(o.config.Log.Format))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 配置注入与基础模块
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.RecoverFromPanics(),
		fx.Supply(o.config),
		metrics.Module(),
		eventbus.Module(),
		liveness.Module(),
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 角色模块与用户扩展
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, role)
	modules = append(modules, o.userFxOptions...)
	modules = append(modules, fx.Populate(populate...))

	// ════════════════════════════════════════════════════════════════════════
	// 4. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	zl, err := fxEventLogger(o.config.Log.FxEvents)
	if err != nil {
		return nil, err
	}
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: zl}
	}))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return app, nil
}

// fxEventLogger 默认丢弃 Fx 事件，开启时输出到开发模式 zap logger
func fxEventLogger(enabled bool) (*zap.Logger, error) {
	if !enabled {
		return zap.NewNop(), nil
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("create fx event logger: %w", err)
	}
	return zl, nil
}
