package tcplink

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-tcplink/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// config 统一配置，选项按顺序作用在它上面
	config *config.Config

	// registerer 指标注册位置，nil 时每个实例使用独立 Registry
	registerer prometheus.Registerer

	// logOutput 非 nil 时按 config.Log 重设全局日志
	logOutput io.Writer

	// userFxOptions 用户扩展的 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// apply 依次应用选项并整理配置
func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	o.config.Normalize()
	return o.config.Validate()
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用给定配置作为基础
//
// 会替换之前选项所做的修改，应放在最前面。配置会被复制。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c := *cfg
		o.config = &c
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置作为基础
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              服务端
// ════════════════════════════════════════════════════════════════════════════

// WithListenAddr 设置监听地址，port 会被夹到 [0, 65535]，0 表示随机端口
func WithListenAddr(host string, port int) Option {
	return func(o *options) error {
		o.config.Server.Host = host
		o.config.Server.Port = config.ClampPort(port)
		return nil
	}
}

// WithBacklog 设置最大挂起连接数
func WithBacklog(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("backlog must be > 0, got %d", n)
		}
		o.config.Server.Backlog = n
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              客户端
// ════════════════════════════════════════════════════════════════════════════

// WithServerAddr 设置客户端启动后自动连接的地址
func WithServerAddr(addr string) Option {
	return func(o *options) error {
		o.config.Client.ServerAddr = addr
		return nil
	}
}

// WithLocalPort 设置客户端绑定的本地端口，0 表示由系统分配
func WithLocalPort(port int) Option {
	return func(o *options) error {
		o.config.Client.LocalPort = config.ClampPort(port)
		return nil
	}
}

// WithDialTimeout 设置拨号超时
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.config.Client.DialTimeout = config.Duration(d)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接与存活检测
// ════════════════════════════════════════════════════════════════════════════

// WithReadBufferSize 设置单次读取缓冲区大小
func WithReadBufferSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("read buffer size must be > 0, got %d", n)
		}
		o.config.Conn.ReadBufferSize = n
		return nil
	}
}

// WithSendQueueSize 设置每连接发送队列长度
func WithSendQueueSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("send queue size must be > 0, got %d", n)
		}
		o.config.Conn.SendQueueSize = n
		return nil
	}
}

// WithProbeInterval 设置存活探测间隔
func WithProbeInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("probe interval must be > 0, got %s", d)
		}
		o.config.Liveness.ProbeInterval = config.Duration(d)
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              可观测性
// ════════════════════════════════════════════════════════════════════════════

// WithMetrics 启用或关闭 Prometheus 指标
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enabled
		return nil
	}
}

// WithRegisterer 设置指标注册位置
//
// 同一个 Registerer 上只能注册一个实例，重复注册时创建失败。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithLogLevel 设置日志级别，需要配合 WithLogOutput 生效
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.config.Log.Level = level
		return nil
	}
}

// WithLogOutput 按 config.Log 的级别与格式重设全局日志输出
func WithLogOutput(w io.Writer) Option {
	return func(o *options) error {
		o.logOutput = w
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              扩展
// ════════════════════════════════════════════════════════════════════════════

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
