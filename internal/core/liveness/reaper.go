package liveness

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/internal/core/connmgr"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	"github.com/dep2p/go-tcplink/internal/core/transport/tcp"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
	"github.com/dep2p/go-tcplink/pkg/types"
)

var logger = log.Logger("core/liveness")

// ErrAlreadyRunning Run 已在运行
var ErrAlreadyRunning = errors.New("liveness: reaper already running")

// reportQueueSize 终止上报队列长度
const reportQueueSize = 256

// ============================================================================
//                              配置
// ============================================================================

// Config Reaper 配置
type Config struct {
	// ProbeInterval 探测间隔，<= 0 时使用默认值
	ProbeInterval time.Duration

	// DisableProbe 关闭周期探测
	DisableProbe bool

	// Clock 驱动探测的时钟，nil 时使用系统时钟
	Clock clock.Clock

	// Probe 探测函数，nil 时使用 tcp.Probe
	Probe func(net.Conn) error
}

// ConfigFromUnified 从统一配置创建 Reaper 配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return Config{ProbeInterval: config.DefaultProbeInterval}
	}
	return Config{
		ProbeInterval: cfg.Liveness.ProbeInterval.Duration(),
		DisableProbe:  cfg.Liveness.DisableProbe,
	}
}

// EvictFunc 回收完成后的回调，reason 取值见 metrics.Reason*
type EvictFunc func(c *conn.Conn, reason string)

// ============================================================================
//                              Reaper
// ============================================================================

type report struct {
	id     types.ConnID
	reason string
}

// Reaper 连接回收器
type Reaper struct {
	cfg      Config
	registry *connmgr.Registry
	onEvict  EvictFunc

	reports chan report
	done    chan struct{}

	started atomic.Bool
	running atomic.Bool
	evicted atomic.Uint64

	// draining 等待已回收连接的读写任务退出
	draining sync.WaitGroup
}

// NewReaper 创建 Reaper
func NewReaper(registry *connmgr.Registry, cfg Config, onEvict EvictFunc) *Reaper {
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = config.DefaultProbeInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Probe == nil {
		cfg.Probe = tcp.Probe
	}
	return &Reaper{
		cfg:      cfg,
		registry: registry,
		onEvict:  onEvict,
		reports:  make(chan report, reportQueueSize),
		done:     make(chan struct{}),
	}
}

// Report 上报连接终止，err 为 nil 表示对端关闭
//
// 在读任务的 goroutine 上调用。Reaper 退出后直接返回。
func (r *Reaper) Report(id types.ConnID, err error) {
	reason := metrics.ReasonPeer
	if err != nil {
		reason = metrics.ReasonError
	}
	r.enqueue(report{id: id, reason: reason})
}

// Evict 请求主动回收一个连接
func (r *Reaper) Evict(id types.ConnID) {
	r.enqueue(report{id: id, reason: metrics.ReasonLocal})
}

func (r *Reaper) enqueue(rep report) {
	select {
	case r.reports <- rep:
	case <-r.done:
	}
}

// Run 运行回收循环，直到 ctx 取消
//
// 返回前等待所有已回收连接的读写任务退出。每个 Reaper 只能运行一次。
func (r *Reaper) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var tick <-chan time.Time
	if !r.cfg.DisableProbe {
		ticker := r.cfg.Clock.Ticker(r.cfg.ProbeInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	r.running.Store(true)
	logger.Debug("回收器启动", "interval", r.cfg.ProbeInterval, "probe", !r.cfg.DisableProbe)

	defer func() {
		r.running.Store(false)
		close(r.done)
		r.draining.Wait()
		logger.Debug("回收器停止", "evicted", r.evicted.Load())
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case rep := <-r.reports:
			r.evict(rep.id, rep.reason)
		case <-tick:
			r.sweep()
		}
	}
}

// IsRunning 检查回收循环是否正在运行
func (r *Reaper) IsRunning() bool {
	return r.running.Load()
}

// Evicted 返回累计回收数
func (r *Reaper) Evicted() uint64 {
	return r.evicted.Load()
}

// sweep 探测注册表中的每个连接
func (r *Reaper) sweep() {
	for _, c := range r.registry.Snapshot() {
		if err := r.cfg.Probe(c.NetConn()); err != nil {
			if !tcp.IsPeerClosed(err) {
				logger.Debug("探测失败", "conn", c.ID().ShortString(), "err", err)
			}
			r.evict(c.ID(), metrics.ReasonProbe)
		}
	}
}

// evict 回收单个连接，已被回收时什么也不做
func (r *Reaper) evict(id types.ConnID, reason string) {
	c, ok := r.registry.Remove(id)
	if !ok {
		return
	}

	_ = c.SetStatus(types.StatusDisconnecting)
	if err := c.Shutdown(); err != nil {
		logger.Debug("关闭连接出错", "conn", id.ShortString(), "err", err)
	}
	_ = c.SetStatus(types.StatusDisconnected)
	r.evicted.Add(1)

	logger.Debug("连接已回收", "conn", id.ShortString(), "remote", c.RemoteAddr(), "reason", reason)

	// 读任务可能正阻塞在 Report 上，不能在本 goroutine 上等待
	r.draining.Add(1)
	go func() {
		defer r.draining.Done()
		c.Wait()
	}()

	if r.onEvict != nil {
		r.onEvict(c, reason)
	}
}
