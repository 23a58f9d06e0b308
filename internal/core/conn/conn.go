package conn

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-tcplink/internal/core/transport/tcp"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
	"github.com/dep2p/go-tcplink/pkg/types"
)

var logger = log.Logger("core/conn")

const (
	// DefaultReadBufferSize 默认读缓冲区大小
	DefaultReadBufferSize = 1024

	// DefaultSendQueueSize 默认发送队列长度
	DefaultSendQueueSize = 256
)

// Options 连接选项
type Options struct {
	// ReadBufferSize 单次读取的最大字节数
	ReadBufferSize int

	// SendQueueSize 发送队列长度
	SendQueueSize int
}

func (o Options) withDefaults() Options {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = DefaultReadBufferSize
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = DefaultSendQueueSize
	}
	return o
}

// Hooks 连接回调
//
// 回调在读/写任务的 goroutine 上同步执行。
type Hooks struct {
	// OnReceive 每次读取到数据时调用，payload 为独立副本
	OnReceive func(c *Conn, payload []byte)

	// OnSent 一次发送全部写出后调用
	OnSent func(c *Conn, payload []byte)

	// OnClosed 读任务终止时调用一次，err 为 nil 表示对端关闭或本地关闭
	OnClosed func(c *Conn, err error)
}

// ============================================================================
//                              Conn
// ============================================================================

// Conn 一条已建立的 TCP 连接
type Conn struct {
	id     types.ConnID
	role   types.Role
	nc     net.Conn
	local  net.Addr
	remote net.Addr
	opts   Options
	hooks  Hooks

	status atomic.Int32

	queue chan []byte
	done  chan struct{}

	// writeErr 写任务遇到的非对端关闭错误
	writeErr atomic.Pointer[error]

	bytesIn  atomic.Uint64
	bytesOut atomic.Uint64

	// hookDepth 正在执行的回调数
	hookDepth atomic.Int32

	// lifeMu 串行化 Start 与 Shutdown
	lifeMu      sync.Mutex
	started     bool
	closed      bool
	shutdownErr error
	wg          sync.WaitGroup
}

// New 包装一个已建立的句柄，初始状态为 StatusConnected
func New(nc net.Conn, role types.Role, opts Options, hooks Hooks) *Conn {
	opts = opts.withDefaults()
	c := &Conn{
		id:     types.NewConnID(),
		role:   role,
		nc:     nc,
		local:  nc.LocalAddr(),
		remote: nc.RemoteAddr(),
		opts:   opts,
		hooks:  hooks,
		queue:  make(chan []byte, opts.SendQueueSize),
		done:   make(chan struct{}),
	}
	c.status.Store(int32(types.StatusConnected))
	return c
}

// ID 返回连接 ID
func (c *Conn) ID() types.ConnID {
	return c.id
}

// Role 返回连接角色
func (c *Conn) Role() types.Role {
	return c.role
}

// LocalAddr 返回本地地址
func (c *Conn) LocalAddr() net.Addr {
	return c.local
}

// RemoteAddr 返回远端地址
func (c *Conn) RemoteAddr() net.Addr {
	return c.remote
}

// NetConn 返回底层句柄，用于存活探测
func (c *Conn) NetConn() net.Conn {
	return c.nc
}

// Status 返回当前状态
func (c *Conn) Status() types.ConnStatus {
	return types.ConnStatus(c.status.Load())
}

// SetStatus 将状态前进到 s
//
// 回退或跳跃返回 ErrInvalidTransition，状态保持不变。
func (c *Conn) SetStatus(s types.ConnStatus) error {
	for {
		cur := types.ConnStatus(c.status.Load())
		if !types.CanTransition(cur, s) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, s)
		}
		if c.status.CompareAndSwap(int32(cur), int32(s)) {
			return nil
		}
	}
}

// Stat 返回累计收发字节数
func (c *Conn) Stat() (in, out uint64) {
	return c.bytesIn.Load(), c.bytesOut.Load()
}

// Info 返回连接信息快照
func (c *Conn) Info() types.ConnInfo {
	in, out := c.Stat()
	return types.ConnInfo{
		ID:       c.id,
		Role:     c.role,
		Local:    c.local,
		Remote:   c.remote,
		Status:   c.Status(),
		BytesIn:  in,
		BytesOut: out,
	}
}

// IsClosed 检查是否已调用 Shutdown
func (c *Conn) IsClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// String 返回连接描述
func (c *Conn) String() string {
	return fmt.Sprintf("conn(%s %s %s<->%s)", c.id.ShortString(), c.role, c.local, c.remote)
}

// ============================================================================
//                              读写任务
// ============================================================================

// InCallback 检查是否有回调正在执行
//
// 回调中调用 Wait 会等待自身，调用方据此改为异步等待。
func (c *Conn) InCallback() bool {
	return c.hookDepth.Load() > 0
}

func (c *Conn) callHook(fn func()) {
	c.hookDepth.Add(1)
	defer c.hookDepth.Add(-1)
	fn()
}

// Start 启动读任务和写任务
//
// 重复调用或 Shutdown 之后调用无效。
func (c *Conn) Start() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	c.wg.Add(2)
	go c.readLoop()
	go c.writeLoop()
}

// Wait 等待读写任务退出
func (c *Conn) Wait() {
	c.wg.Wait()
}

func (c *Conn) readLoop() {
	defer c.wg.Done()

	buf := make([]byte, c.opts.ReadBufferSize)
	var err error
	for {
		var n int
		n, err = c.nc.Read(buf)
		if n > 0 {
			c.bytesIn.Add(uint64(n))
			payload := make([]byte, n)
			copy(payload, buf[:n])
			logger.Debug("收到数据", "conn", c.id.ShortString(), "bytes", n)
			if c.hooks.OnReceive != nil {
				c.callHook(func() { c.hooks.OnReceive(c, payload) })
			}
		}
		if err != nil {
			break
		}
	}

	c.reportClosed(err)
}

// reportClosed 汇总读写两端的终止原因并回调 OnClosed
func (c *Conn) reportClosed(readErr error) {
	var err error
	if p := c.writeErr.Load(); p != nil {
		err = *p
	} else if !tcp.IsPeerClosed(readErr) {
		err = readErr
		logger.Warn("读取失败", "conn", c.id.ShortString(), "remote", c.remote, "err", readErr)
	}
	if c.hooks.OnClosed != nil {
		c.callHook(func() { c.hooks.OnClosed(c, err) })
	}
}

func (c *Conn) writeLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.queue:
			if err := c.writeFull(payload); err != nil {
				if !tcp.IsPeerClosed(err) {
					logger.Warn("写入失败", "conn", c.id.ShortString(), "remote", c.remote, "err", err)
					c.writeErr.CompareAndSwap(nil, &err)
				}
				// 关闭句柄让读任务退出
				_ = c.nc.Close()
				return
			}
			if c.hooks.OnSent != nil {
				c.callHook(func() { c.hooks.OnSent(c, payload) })
			}
		}
	}
}

// writeFull 循环写入直到 payload 全部刷出
func (c *Conn) writeFull(payload []byte) error {
	rest := payload
	for len(rest) > 0 {
		n, err := c.nc.Write(rest)
		c.bytesOut.Add(uint64(n))
		rest = rest[n:]
		if err != nil {
			return err
		}
	}
	return nil
}

// Send 复制 payload 并放入发送队列，不阻塞
//
// 入队成功后、写出之前发生 Shutdown 时，数据随队列一起丢弃。
func (c *Conn) Send(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if c.IsClosed() {
		return ErrConnClosed
	}

	p := make([]byte, len(payload))
	copy(p, payload)

	// select 在多个就绪分支间随机选择，入队前后各检查一次 done
	select {
	case <-c.done:
		return ErrConnClosed
	case c.queue <- p:
		if c.IsClosed() {
			return ErrConnClosed
		}
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Shutdown 关闭连接的两个方向并释放句柄，只有第一次调用生效
//
// 队列中尚未写出的数据被丢弃。
func (c *Conn) Shutdown() error {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.closed {
		return c.shutdownErr
	}
	c.closed = true
	close(c.done)

	if tc, ok := c.nc.(*net.TCPConn); ok {
		_ = tc.CloseRead()
		_ = tc.CloseWrite()
	}
	if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		c.shutdownErr = err
	}
	return c.shutdownErr
}
