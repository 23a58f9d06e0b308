package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	"github.com/dep2p/go-tcplink/internal/core/transport/tcp"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
	"github.com/dep2p/go-tcplink/pkg/types"
)

var logger = log.Logger("core/client")

// ============================================================================
//                              Client
// ============================================================================

// Client 客户端
//
// 状态迁移在 mu 下完成，状态事件在释放 mu 之后发出，
// 订阅者可以在回调中调用 Connect、Disconnect 和 Send。
type Client struct {
	cfg      Config
	emitter  pkgif.Emitter
	reporter metrics.Reporter

	mu     sync.Mutex
	conn   atomic.Pointer[conn.Conn]
	status atomic.Int32
	closed atomic.Bool

	// idle 当前周期结束（回到 Disconnected）时关闭，Close 据此等待
	idle chan struct{}

	// watchers 在回调中发起的断开收尾 goroutine
	watchers sync.WaitGroup
}

// New 创建客户端
//
// emitter、reporter 为 nil 时事件和指标被丢弃。
func New(cfg Config, emitter pkgif.Emitter, reporter metrics.Reporter) *Client {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Client{
		cfg:      cfg,
		emitter:  emitter,
		reporter: reporter,
	}
}

// ============================================================================
//                              连接与断开
// ============================================================================

// Connect 连接到 addr
//
// 已连接或正在连接时直接返回 nil；上一次断开尚未完成时返回 ErrDisconnecting，
// 在 Disconnected 事件中重连即可。失败时返回 *tcp.OpError，不重试。
func (c *Client) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return ErrClientClosed
	}
	switch c.Status() {
	case types.StatusDisconnected:
	case types.StatusDisconnecting:
		c.mu.Unlock()
		return ErrDisconnecting
	default:
		c.mu.Unlock()
		return nil
	}
	c.status.Store(int32(types.StatusConnecting))
	c.idle = make(chan struct{})
	c.mu.Unlock()

	c.emitStatus(types.StatusConnecting, nil)

	nc, err := tcp.Dial(ctx, addr, tcp.DialOptions{
		LocalPort: c.cfg.LocalPort,
		Timeout:   c.cfg.DialTimeout,
		NoDelay:   c.cfg.NoDelay,
		KeepAlive: c.cfg.KeepAlive,
	})
	if err != nil {
		// 失败的周期没有到达 Connected，不再发出后续状态
		c.toIdle()
		var oe *tcp.OpError
		if errors.As(err, &oe) {
			err = oe.Err
		}
		logger.Error("连接失败", "addr", addr, "localPort", c.cfg.LocalPort, "error", err)
		return &tcp.OpError{Op: "connect", Addr: addr, Err: err}
	}

	cn := conn.New(nc, types.RoleClient, c.cfg.Conn, conn.Hooks{
		OnReceive: c.onReceive,
		OnSent:    c.onSent,
		OnClosed:  c.onClosed,
	})

	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		_ = nc.Close()
		c.toIdle()
		return ErrClientClosed
	}
	c.conn.Store(cn)
	c.status.Store(int32(types.StatusConnected))
	c.mu.Unlock()

	c.reporter.ConnOpened(types.RoleClient)
	c.emitStatus(types.StatusConnected, cn)

	logger.Info("已连接", "local", cn.LocalAddr(), "remote", cn.RemoteAddr())
	cn.Start()
	return nil
}

// Disconnect 断开当前连接，没有连接时直接返回 nil
//
// 返回前读写任务均已退出并已发出 Disconnected。
// 在事件回调中调用时只发出 Disconnecting 并关闭句柄，其余步骤异步完成。
func (c *Client) Disconnect() error {
	return c.disconnect(c.conn.Load(), metrics.ReasonLocal)
}

// disconnect 开始 cn 的断开周期
//
// cn 已不是当前连接或断开已开始时为空操作。
func (c *Client) disconnect(cn *conn.Conn, reason string) error {
	if cn == nil {
		return nil
	}

	c.mu.Lock()
	if c.conn.Load() != cn || c.Status() != types.StatusConnected {
		c.mu.Unlock()
		return nil
	}
	c.status.Store(int32(types.StatusDisconnecting))
	c.mu.Unlock()

	_ = cn.SetStatus(types.StatusDisconnecting)
	c.emitStatus(types.StatusDisconnecting, cn)

	err := cn.Shutdown()

	if cn.InCallback() {
		c.watchers.Add(1)
		go func() {
			defer c.watchers.Done()
			c.finish(cn, reason)
		}()
		return err
	}
	c.finish(cn, reason)
	return err
}

// finish 等待读写任务退出后结束断开周期
func (c *Client) finish(cn *conn.Conn, reason string) {
	cn.Wait()
	_ = cn.SetStatus(types.StatusDisconnected)

	c.mu.Lock()
	c.conn.Store(nil)
	c.mu.Unlock()

	c.reporter.ConnClosed(types.RoleClient, reason)
	logger.Info("已断开", "remote", cn.RemoteAddr(), "reason", reason)

	c.toIdle()
	c.emitStatus(types.StatusDisconnected, cn)
}

// toIdle 回到 Disconnected 并唤醒等待者
func (c *Client) toIdle() {
	c.mu.Lock()
	c.status.Store(int32(types.StatusDisconnected))
	idle := c.idle
	c.idle = nil
	c.mu.Unlock()

	if idle != nil {
		close(idle)
	}
}

// Close 断开连接并禁止再次连接
//
// 不能在事件回调中调用。
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed.Store(true)
	c.mu.Unlock()
	err := c.Disconnect()

	c.watchers.Wait()

	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()
	if idle != nil {
		<-idle
	}
	return err
}

// emitStatus 通知订阅者，调用方不能持有 mu
func (c *Client) emitStatus(s types.ConnStatus, cn *conn.Conn) {
	evt := types.StatusChangedEvent{Status: s}
	if cn != nil {
		evt.ConnID = cn.ID()
		evt.Local = cn.LocalAddr()
		evt.Remote = cn.RemoteAddr()
	}
	c.emitter.Emit(evt)
}

// ============================================================================
//                              连接回调
// ============================================================================

func (c *Client) onReceive(cn *conn.Conn, payload []byte) {
	c.reporter.LogRecv(len(payload))
	c.emitter.Emit(types.DataReceivedEvent{
		ConnID:  cn.ID(),
		Local:   cn.LocalAddr(),
		Remote:  cn.RemoteAddr(),
		Payload: payload,
	})
}

func (c *Client) onSent(cn *conn.Conn, payload []byte) {
	c.reporter.LogSent(len(payload))
	c.emitter.Emit(types.DataSentEvent{
		ConnID:  cn.ID(),
		Local:   cn.LocalAddr(),
		Remote:  cn.RemoteAddr(),
		Payload: payload,
	})
}

// onClosed 在读任务上调用，对端关闭时驱动完整的断开周期
func (c *Client) onClosed(cn *conn.Conn, err error) {
	if cn.IsClosed() {
		return
	}
	reason := metrics.ReasonPeer
	if err != nil {
		reason = metrics.ReasonError
	}
	if derr := c.disconnect(cn, reason); derr != nil {
		logger.Debug("断开连接出错", "error", derr)
	}
}

// ============================================================================
//                              发送与查询
// ============================================================================

// Send 在当前连接上发送数据
func (c *Client) Send(payload []byte) error {
	cn := c.conn.Load()
	if cn == nil {
		return ErrNotConnected
	}
	return cn.Send(payload)
}

// Status 返回当前状态
func (c *Client) Status() types.ConnStatus {
	return types.ConnStatus(c.status.Load())
}

// IsConnected 检查是否持有连接
func (c *Client) IsConnected() bool {
	return c.conn.Load() != nil
}

// LocalAddr 返回本地地址，未连接时返回 nil
func (c *Client) LocalAddr() net.Addr {
	if cn := c.conn.Load(); cn != nil {
		return cn.LocalAddr()
	}
	return nil
}

// RemoteAddr 返回远端地址，未连接时返回 nil
func (c *Client) RemoteAddr() net.Addr {
	if cn := c.conn.Load(); cn != nil {
		return cn.RemoteAddr()
	}
	return nil
}

// Info 返回当前连接信息，未连接时 ok 为 false
func (c *Client) Info() (types.ConnInfo, bool) {
	if cn := c.conn.Load(); cn != nil {
		return cn.Info(), true
	}
	return types.ConnInfo{}, false
}

// nopEmitter 丢弃所有事件
type nopEmitter struct{}

func (nopEmitter) Emit(types.Event) {}
