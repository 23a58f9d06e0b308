package server

import (
	"time"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/internal/core/liveness"
)

// Config 服务端配置
type Config struct {
	// ListenAddr 监听地址，端口为 0 时由系统分配
	ListenAddr string

	// Backlog 最大挂起连接数
	Backlog int

	// NoDelay 是否对接入连接禁用 Nagle 算法
	NoDelay bool

	// KeepAlive 接入连接的 TCP KeepAlive 周期，0 表示关闭
	KeepAlive time.Duration

	// Conn 单连接选项
	Conn conn.Options

	// Liveness 回收器配置
	Liveness liveness.Config
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建服务端配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		ListenAddr: cfg.Server.ListenAddr(),
		Backlog:    cfg.Server.Backlog,
		NoDelay:    cfg.Server.NoDelay,
		KeepAlive:  cfg.Server.KeepAlive.Duration(),
		Conn: conn.Options{
			ReadBufferSize: cfg.Conn.ReadBufferSize,
			SendQueueSize:  cfg.Conn.SendQueueSize,
		},
		Liveness: liveness.ConfigFromUnified(cfg),
	}
}
