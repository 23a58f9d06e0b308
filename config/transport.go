package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// MinPort 最小端口号
	MinPort = 0
	// MaxPort 最大端口号
	MaxPort = 65535

	// DefaultBacklog 默认 listen backlog
	DefaultBacklog = 10

	// DefaultReadBufferSize 默认单次读取缓冲区大小
	DefaultReadBufferSize = 1024

	// DefaultSendQueueSize 默认每连接发送队列长度
	DefaultSendQueueSize = 256

	// DefaultDialTimeout 默认拨号超时
	DefaultDialTimeout = 5 * time.Second

	// DefaultKeepAlive 默认 TCP KeepAlive 周期
	DefaultKeepAlive = 15 * time.Second
)

// ClampPort 将端口号夹到 [0, 65535]
func ClampPort(port int) int {
	if port < MinPort {
		return MinPort
	}
	if port > MaxPort {
		return MaxPort
	}
	return port
}

// ServerConfig 服务端配置
type ServerConfig struct {
	// Host 监听主机，空表示所有 IPv4 地址
	Host string `json:"host"`

	// Port 监听端口，0 表示随机端口
	Port int `json:"port"`

	// Backlog 最大挂起连接数
	// 默认值: 10
	Backlog int `json:"backlog"`

	// NoDelay 是否对接入连接禁用 Nagle 算法
	NoDelay bool `json:"no_delay"`

	// KeepAlive 接入连接的 TCP KeepAlive 周期，0 表示关闭
	// 默认值: 15s
	KeepAlive Duration `json:"keep_alive"`
}

// DefaultServerConfig 返回默认服务端配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:      "",
		Port:      0,
		Backlog:   DefaultBacklog,
		NoDelay:   true,
		KeepAlive: Duration(DefaultKeepAlive),
	}
}

// ListenAddr 返回 host:port 形式的监听地址
func (c ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(ClampPort(c.Port)))
}

// Validate 验证服务端配置
func (c ServerConfig) Validate() error {
	if c.Backlog < 0 {
		return fmt.Errorf("%w: server backlog must be >= 0, got %d", ErrInvalidConfig, c.Backlog)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("%w: server keep_alive must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// ClientConfig 客户端配置
type ClientConfig struct {
	// ServerAddr 目标服务端地址（host:port），非空时启动后自动连接
	ServerAddr string `json:"server_addr,omitempty"`

	// LocalPort 出站连接绑定的本地端口，0 表示由系统分配
	LocalPort int `json:"local_port"`

	// DialTimeout 拨号超时
	// 默认值: 5s
	DialTimeout Duration `json:"dial_timeout"`

	// NoDelay 是否禁用 Nagle 算法
	NoDelay bool `json:"no_delay"`

	// KeepAlive 出站连接的 TCP KeepAlive 周期，0 表示关闭
	// 默认值: 15s
	KeepAlive Duration `json:"keep_alive"`
}

// DefaultClientConfig 返回默认客户端配置
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		LocalPort:   0,
		DialTimeout: Duration(DefaultDialTimeout),
		NoDelay:     true,
		KeepAlive:   Duration(DefaultKeepAlive),
	}
}

// Validate 验证客户端配置
func (c ClientConfig) Validate() error {
	if c.DialTimeout < 0 {
		return fmt.Errorf("%w: client dial_timeout must be >= 0", ErrInvalidConfig)
	}
	if c.KeepAlive < 0 {
		return fmt.Errorf("%w: client keep_alive must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// ConnConfig 单连接配置
type ConnConfig struct {
	// ReadBufferSize 单次读取缓冲区大小，每个连接独占
	// 默认值: 1024
	ReadBufferSize int `json:"read_buffer_size"`

	// SendQueueSize 发送队列长度，满时 Send 返回错误
	// 默认值: 256
	SendQueueSize int `json:"send_queue_size"`
}

// DefaultConnConfig 返回默认连接配置
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		ReadBufferSize: DefaultReadBufferSize,
		SendQueueSize:  DefaultSendQueueSize,
	}
}

// Validate 验证连接配置
func (c ConnConfig) Validate() error {
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("%w: read_buffer_size must be >= 0", ErrInvalidConfig)
	}
	if c.SendQueueSize < 0 {
		return fmt.Errorf("%w: send_queue_size must be >= 0", ErrInvalidConfig)
	}
	return nil
}
