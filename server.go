package tcplink

import (
	"context"
	"net"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	"github.com/dep2p/go-tcplink/internal/core/server"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Server
// ════════════════════════════════════════════════════════════════════════════

// Server 服务端门面
//
// 接受任意数量的入站连接，每个连接独立读写，
// 连接终止后由回收器移出注册表并发出 ClientDisconnectedEvent。
type Server struct {
	runner

	cfg      *config.Config
	srv      *server.Server
	bus      pkgif.EventBus
	reporter metrics.Reporter
}

// NewServer 创建服务端，不监听
//
// 返回后即可订阅事件，Start 之前订阅才能收到 ServerStartedEvent。
func NewServer(opts ...Option) (*Server, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	s := &Server{cfg: o.config}
	app, err := buildFxApp(o, server.Module(), &s.srv, &s.bus, &s.reporter)
	if err != nil {
		return nil, err
	}
	s.runner = runner{name: "server", app: app, onIdleStop: s.bus.Close}
	return s, nil
}

// Start 开始监听并接受连接
//
// 监听失败时返回错误，Server 进入终态。
func (s *Server) Start(ctx context.Context) error {
	return s.start(ctx)
}

// Stop 停止监听，关闭并回收所有连接
//
// 返回前所有读写任务都已退出。可重复调用。
func (s *Server) Stop(ctx context.Context) error {
	return s.stop(ctx)
}

// IsRunning 是否正在接受连接
func (s *Server) IsRunning() bool {
	return s.running() && s.srv.IsRunning()
}

// Addr 返回实际监听地址，未启动时返回 nil
func (s *Server) Addr() net.Addr {
	return s.srv.Addr()
}

// Config 返回生效的配置
func (s *Server) Config() config.Config {
	return *s.cfg
}

// ════════════════════════════════════════════════════════════════════════════
//                              发送与管理
// ════════════════════════════════════════════════════════════════════════════

// Send 向远端地址为 remote 的连接发送数据
func (s *Server) Send(remote net.Addr, payload []byte) error {
	return s.srv.Send(remote, payload)
}

// SendID 向指定连接发送数据
func (s *Server) SendID(id ConnID, payload []byte) error {
	return s.srv.SendID(id, payload)
}

// SendAll 向当前所有连接发送数据，返回成功入队的连接数
//
// 不保证送达在调用期间建立或断开的连接。
func (s *Server) SendAll(payload []byte) int {
	return s.srv.SendAll(payload)
}

// Disconnect 主动断开指定连接
func (s *Server) Disconnect(id ConnID) error {
	return s.srv.Disconnect(id)
}

// Connections 返回当前连接的快照
func (s *Server) Connections() []ConnInfo {
	return s.srv.Connections()
}

// Len 返回当前连接数
func (s *Server) Len() int {
	return s.srv.Len()
}

// Stats 返回流量与连接统计
func (s *Server) Stats() Stats {
	return s.reporter.Totals()
}

// Subscribe 订阅指定类型的事件
func (s *Server) Subscribe(kind EventKind, h Handler) (Subscription, error) {
	return s.bus.Subscribe(kind, h)
}
