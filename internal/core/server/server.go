package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	tec "github.com/jbenet/go-temp-err-catcher"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/internal/core/connmgr"
	"github.com/dep2p/go-tcplink/internal/core/liveness"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	"github.com/dep2p/go-tcplink/internal/core/transport/tcp"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
	"github.com/dep2p/go-tcplink/pkg/types"
)

var logger = log.Logger("core/server")

// 运行状态
const (
	stateIdle int32 = iota
	stateRunning
	stateClosed
)

// ============================================================================
//                              Server
// ============================================================================

// Server 服务端
type Server struct {
	cfg      Config
	emitter  pkgif.Emitter
	reporter metrics.Reporter
	registry *connmgr.Registry

	state atomic.Int32

	// mu 串行化 Start 和 Stop
	mu       sync.Mutex
	listener atomic.Pointer[tcp.Listener]
	reaper   *liveness.Reaper
	group    *errgroup.Group
	cancel   context.CancelFunc
	stopErr  error
}

// New 创建服务端
//
// emitter、reporter 为 nil 时事件和指标被丢弃。
func New(cfg Config, emitter pkgif.Emitter, reporter metrics.Reporter) *Server {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	s := &Server{
		cfg:      cfg,
		emitter:  emitter,
		reporter: reporter,
		registry: connmgr.NewRegistry(),
	}
	s.reaper = liveness.NewReaper(s.registry, cfg.Liveness, s.onEvict)
	return s
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 监听并启动 accept 循环与 Reaper
//
// 已在运行时直接返回 nil；停止后返回 ErrServerClosed。
// 监听失败时返回 *tcp.OpError，服务端回到未启动状态。
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Load() {
	case stateRunning:
		return nil
	case stateClosed:
		return ErrServerClosed
	}

	l, err := tcp.Listen(s.cfg.ListenAddr, tcp.ListenOptions{
		Backlog:   s.cfg.Backlog,
		NoDelay:   s.cfg.NoDelay,
		KeepAlive: s.cfg.KeepAlive,
	})
	if err != nil {
		logger.Error("监听失败", "addr", s.cfg.ListenAddr, "error", err)
		return err
	}
	s.listener.Store(l)

	// 不使用传入的 ctx：fx OnStart 的 ctx 在返回后会被取消
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	// 任一循环退出都要让 Accept 返回
	context.AfterFunc(gctx, func() { _ = l.Close() })

	s.state.Store(stateRunning)
	logger.Info("服务端已启动", "addr", l.Addr(), "backlog", s.cfg.Backlog)

	// ServerStarted 先于任何 ClientConnected
	s.emitter.Emit(types.ServerStartedEvent{Addr: l.Addr()})

	g.Go(func() error { return s.acceptLoop(gctx, l) })
	g.Go(func() error { return s.reaper.Run(gctx) })
	return nil
}

// Stop 停止服务端
//
// 关闭监听器，等待 accept 循环和 Reaper 退出，然后关闭所有连接
// 并等待它们的读写任务退出。可以多次调用，只有第一次生效。
// ctx 到期时不再等待，返回 ctx.Err()。
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.Swap(stateClosed) {
	case stateIdle:
		return nil
	case stateClosed:
		return s.stopErr
	}
	s.stopErr = s.shutdown(ctx)
	return s.stopErr
}

func (s *Server) shutdown(ctx context.Context) error {
	s.cancel()
	errs := s.listener.Load().Close()

	type result struct {
		err    error
		closed int
	}
	done := make(chan result, 1)
	go func() {
		var res result
		res.err = s.group.Wait()

		// accept 循环已退出，注册表不会再增加
		conns := s.registry.Clear()
		for _, c := range conns {
			s.closeConn(c, metrics.ReasonLocal)
		}
		for _, c := range conns {
			c.Wait()
		}
		res.closed = len(conns)
		done <- res
	}()

	select {
	case res := <-done:
		logger.Info("服务端已停止", "closed", res.closed)
		return multierr.Append(errs, res.err)
	case <-ctx.Done():
		return multierr.Append(errs, ctx.Err())
	}
}

// closeConn 关闭一个已移出注册表的连接并发出断开事件
func (s *Server) closeConn(c *conn.Conn, reason string) {
	_ = c.SetStatus(types.StatusDisconnecting)
	if err := c.Shutdown(); err != nil {
		logger.Debug("关闭连接出错", "conn", c.ID().ShortString(), "error", err)
	}
	_ = c.SetStatus(types.StatusDisconnected)
	s.onEvict(c, reason)
}

// IsRunning 检查服务端是否在运行
func (s *Server) IsRunning() bool {
	return s.state.Load() == stateRunning
}

// ============================================================================
//                              Accept 循环
// ============================================================================

func (s *Server) acceptLoop(ctx context.Context, l *tcp.Listener) error {
	catcher := tec.TempErrCatcher{IsTemp: isTemporary}

	for {
		nc, err := l.Accept()
		if err != nil {
			if errors.Is(err, tcp.ErrListenerClosed) || ctx.Err() != nil {
				return nil
			}
			if catcher.IsTemporary(err) {
				logger.Warn("accept 临时错误，退避后重试", "error", err)
				continue
			}
			logger.Error("accept 失败，停止接收新连接", "error", err)
			return err
		}
		catcher.Reset()
		s.handleAccepted(nc)
	}
}

// isTemporary 判断 accept 错误是否可以重试（如 EMFILE）
func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

func (s *Server) handleAccepted(nc net.Conn) {
	c := conn.New(nc, types.RoleServer, s.cfg.Conn, conn.Hooks{
		OnReceive: s.onReceive,
		OnSent:    s.onSent,
		OnClosed:  s.onClosed,
	})
	s.registry.Add(c)
	s.reporter.ConnOpened(types.RoleServer)

	logger.Debug("接受新连接", "conn", c.ID().ShortString(), "remote", c.RemoteAddr())

	// 先发出接入事件，保证它早于该连接的任何数据事件
	s.emitter.Emit(types.ClientConnectedEvent{ConnID: c.ID(), Remote: c.RemoteAddr()})
	c.Start()
}

// ============================================================================
//                              连接回调
// ============================================================================

func (s *Server) onReceive(c *conn.Conn, payload []byte) {
	s.reporter.LogRecv(len(payload))
	s.emitter.Emit(types.DataReceivedEvent{
		ConnID:  c.ID(),
		Local:   c.LocalAddr(),
		Remote:  c.RemoteAddr(),
		Payload: payload,
	})
}

func (s *Server) onSent(c *conn.Conn, payload []byte) {
	s.reporter.LogSent(len(payload))
	s.emitter.Emit(types.DataSentEvent{
		ConnID:  c.ID(),
		Local:   c.LocalAddr(),
		Remote:  c.RemoteAddr(),
		Payload: payload,
	})
}

func (s *Server) onClosed(c *conn.Conn, err error) {
	s.reaper.Report(c.ID(), err)
}

func (s *Server) onEvict(c *conn.Conn, reason string) {
	s.reporter.ConnClosed(types.RoleServer, reason)
	logger.Debug("连接已断开", "conn", c.ID().ShortString(), "remote", c.RemoteAddr(), "reason", reason)
	s.emitter.Emit(types.ClientDisconnectedEvent{ConnID: c.ID(), Remote: c.RemoteAddr()})
}

// ============================================================================
//                              发送
// ============================================================================

// Send 向指定远端地址的连接发送数据
func (s *Server) Send(remote net.Addr, payload []byte) error {
	c, ok := s.registry.Lookup(remote)
	if !ok {
		return ErrUnknownConn
	}
	return c.Send(payload)
}

// SendID 向指定连接发送数据
func (s *Server) SendID(id types.ConnID, payload []byte) error {
	c, ok := s.registry.Get(id)
	if !ok {
		return ErrUnknownConn
	}
	return c.Send(payload)
}

// SendAll 向所有连接广播，返回成功入队的连接数
//
// 遍历的是调用时的注册表快照，期间新接入的连接不会收到，
// 期间断开的连接会被跳过。
func (s *Server) SendAll(payload []byte) int {
	n := 0
	for _, c := range s.registry.Snapshot() {
		if err := c.Send(payload); err != nil {
			logger.Debug("广播跳过连接", "conn", c.ID().ShortString(), "error", err)
			continue
		}
		n++
	}
	return n
}

// Disconnect 主动断开指定连接
//
// 断开由 Reaper 异步完成，完成后发出 ClientDisconnected。
func (s *Server) Disconnect(id types.ConnID) error {
	if !s.IsRunning() {
		return ErrNotRunning
	}
	if _, ok := s.registry.Get(id); !ok {
		return ErrUnknownConn
	}
	s.reaper.Evict(id)
	return nil
}

// ============================================================================
//                              查询
// ============================================================================

// Addr 返回实际监听地址，未启动时返回 nil
func (s *Server) Addr() net.Addr {
	l := s.listener.Load()
	if l == nil {
		return nil
	}
	return l.Addr()
}

// Len 返回当前连接数
func (s *Server) Len() int {
	return s.registry.Len()
}

// Connections 返回所有连接的信息快照
func (s *Server) Connections() []types.ConnInfo {
	snap := s.registry.Snapshot()
	out := make([]types.ConnInfo, 0, len(snap))
	for _, c := range snap {
		out = append(out, c.Info())
	}
	return out
}

// nopEmitter 丢弃所有事件
type nopEmitter struct{}

func (nopEmitter) Emit(types.Event) {}
