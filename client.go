package tcplink

import (
	"context"
	"net"

	"go.uber.org/multierr"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/client"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Client
// ════════════════════════════════════════════════════════════════════════════

// Client 客户端门面
//
// 同一时刻最多持有一条出站连接。每个连接周期依次发出
// Connecting、Connected、Disconnecting、Disconnected 状态事件，
// 对端关闭时同样走完整的断开流程。
type Client struct {
	runner

	cfg      *config.Config
	cli      *client.Client
	bus      pkgif.EventBus
	reporter metrics.Reporter
}

// NewClient 创建客户端，不连接
func NewClient(opts ...Option) (*Client, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	c := &Client{cfg: o.config}
	app, err := buildFxApp(o, client.Module(), &c.cli, &c.bus, &c.reporter)
	if err != nil {
		return nil, err
	}
	c.runner = runner{name: "client", app: app, onIdleStop: c.closeIdle}
	return c, nil
}

// Start 启动客户端
//
// 配置了 ServerAddr 时立即连接，连接失败则返回错误并进入终态。
func (c *Client) Start(ctx context.Context) error {
	return c.start(ctx)
}

// Stop 断开连接并停止客户端，可重复调用
func (c *Client) Stop(ctx context.Context) error {
	return c.stop(ctx)
}

// closeIdle 未启动即停止时释放连接与事件总线
func (c *Client) closeIdle() error {
	return multierr.Append(c.cli.Close(), c.bus.Close())
}

// Config 返回生效的配置
func (c *Client) Config() config.Config {
	return *c.cfg
}

// ════════════════════════════════════════════════════════════════════════════
//                              连接
// ════════════════════════════════════════════════════════════════════════════

// Connect 连接到 addr，已连接时直接返回 nil
//
// 断开尚未完成时返回 ErrDisconnecting。
// 失败时返回 Op 为 "connect" 的 *tcp.OpError，不重试。
func (c *Client) Connect(ctx context.Context, addr string) error {
	return c.cli.Connect(ctx, addr)
}

// Disconnect 断开当前连接，返回前读写任务均已退出
//
// 在事件回调中调用时立即返回，Disconnected 随后异步发出。
func (c *Client) Disconnect() error {
	return c.cli.Disconnect()
}

// Send 发送数据，未连接时返回 ErrNotConnected
func (c *Client) Send(payload []byte) error {
	return c.cli.Send(payload)
}

// Status 返回当前连接状态
func (c *Client) Status() ConnStatus {
	return c.cli.Status()
}

// IsConnected 是否持有连接
func (c *Client) IsConnected() bool {
	return c.cli.IsConnected()
}

// LocalAddr 返回本地地址，未连接时返回 nil
func (c *Client) LocalAddr() net.Addr {
	return c.cli.LocalAddr()
}

// RemoteAddr 返回远端地址，未连接时返回 nil
func (c *Client) RemoteAddr() net.Addr {
	return c.cli.RemoteAddr()
}

// Stats 返回流量与连接统计
func (c *Client) Stats() Stats {
	return c.reporter.Totals()
}

// Subscribe 订阅指定类型的事件
func (c *Client) Subscribe(kind EventKind, h Handler) (Subscription, error) {
	return c.bus.Subscribe(kind, h)
}
