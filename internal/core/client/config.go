package client

import (
	"time"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/conn"
)

// Config 客户端配置
type Config struct {
	// ServerAddr 启动后自动连接的地址，空表示由调用方 Connect
	ServerAddr string

	// LocalPort 绑定的本地端口，0 表示由系统分配
	LocalPort int

	// DialTimeout 拨号超时
	DialTimeout time.Duration

	// NoDelay 是否禁用 Nagle 算法
	NoDelay bool

	// KeepAlive TCP KeepAlive 周期，0 表示关闭
	KeepAlive time.Duration

	// Conn 单连接选项
	Conn conn.Options
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建客户端配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		ServerAddr:  cfg.Client.ServerAddr,
		LocalPort:   config.ClampPort(cfg.Client.LocalPort),
		DialTimeout: cfg.Client.DialTimeout.Duration(),
		NoDelay:     cfg.Client.NoDelay,
		KeepAlive:   cfg.Client.KeepAlive.Duration(),
		Conn: conn.Options{
			ReadBufferSize: cfg.Conn.ReadBufferSize,
			SendQueueSize:  cfg.Conn.SendQueueSize,
		},
	}
}
