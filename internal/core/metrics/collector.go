package metrics

import (
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-tcplink/pkg/types"
)

// DefaultNamespace 默认指标命名空间
const DefaultNamespace = "tcplink"

// Config Collector 配置
type Config struct {
	// Namespace 指标命名空间
	Namespace string

	// Subsystem 指标子系统
	Subsystem string

	// ConstLabels 附加到所有指标的固定标签
	ConstLabels prometheus.Labels

	// Registerer 注册指标的位置，nil 时使用新建的 Registry
	Registerer prometheus.Registerer

	// Clock 速率窗口使用的时钟，nil 时使用系统时钟
	Clock clock.Clock
}

// Collector Reporter 的 Prometheus 实现
type Collector struct {
	active   *prometheus.GaugeVec
	opened   *prometheus.CounterVec
	closed   *prometheus.CounterVec
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
	panics   prometheus.Counter

	totalIn  atomic.Int64
	totalOut atomic.Int64
	nActive  atomic.Int64
	nOpened  atomic.Int64
	nClosed  atomic.Int64
	nPanics  atomic.Int64

	rateIn  *RateMeter
	rateOut *RateMeter
}

var _ Reporter = (*Collector)(nil)

// NewCollector 创建 Collector 并注册指标
//
// 同一个 Registerer 上重复注册相同命名空间会 panic（promauto 行为）。
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}
	factory := promauto.With(cfg.Registerer)

	return &Collector{
		active: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connections_active",
			Help:        "Number of currently open connections",
			ConstLabels: cfg.ConstLabels,
		}, []string{"role"}),

		opened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connections_opened_total",
			Help:        "Total number of established connections",
			ConstLabels: cfg.ConstLabels,
		}, []string{"role"}),

		closed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "connections_closed_total",
			Help:        "Total number of closed connections",
			ConstLabels: cfg.ConstLabels,
		}, []string{"role", "reason"}),

		bytesIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_received_total",
			Help:        "Total number of bytes received",
			ConstLabels: cfg.ConstLabels,
		}),

		bytesOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "bytes_sent_total",
			Help:        "Total number of bytes sent",
			ConstLabels: cfg.ConstLabels,
		}),

		panics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "handler_panics_total",
			Help:        "Total number of recovered subscriber panics",
			ConstLabels: cfg.ConstLabels,
		}),

		rateIn:  NewRateMeter(cfg.Clock),
		rateOut: NewRateMeter(cfg.Clock),
	}
}

// ConnOpened 记录一条新连接
func (c *Collector) ConnOpened(role types.Role) {
	c.nActive.Add(1)
	c.nOpened.Add(1)
	c.active.WithLabelValues(role.String()).Inc()
	c.opened.WithLabelValues(role.String()).Inc()
}

// ConnClosed 记录一条连接关闭
func (c *Collector) ConnClosed(role types.Role, reason string) {
	c.nActive.Add(-1)
	c.nClosed.Add(1)
	c.active.WithLabelValues(role.String()).Dec()
	c.closed.WithLabelValues(role.String(), reason).Inc()
}

// LogSent 记录发送字节数
func (c *Collector) LogSent(n int) {
	if n <= 0 {
		return
	}
	c.totalOut.Add(int64(n))
	c.rateOut.Add(int64(n))
	c.bytesOut.Add(float64(n))
}

// LogRecv 记录接收字节数
func (c *Collector) LogRecv(n int) {
	if n <= 0 {
		return
	}
	c.totalIn.Add(int64(n))
	c.rateIn.Add(int64(n))
	c.bytesIn.Add(float64(n))
}

// HandlerPanic 记录一次订阅者 panic
func (c *Collector) HandlerPanic() {
	c.nPanics.Add(1)
	c.panics.Inc()
}

// Totals 返回当前统计
func (c *Collector) Totals() Stats {
	return Stats{
		TotalIn:  c.totalIn.Load(),
		TotalOut: c.totalOut.Load(),
		RateIn:   c.rateIn.Rate(),
		RateOut:  c.rateOut.Rate(),
		Active:   c.nActive.Load(),
		Opened:   c.nOpened.Load(),
		Closed:   c.nClosed.Load(),
		Panics:   c.nPanics.Load(),
	}
}
