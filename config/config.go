// Package config 提供 tcplink 的统一配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载。
//
//	cfg := config.NewConfig()
//	cfg.Server.Port = 9000
//
//	cfg, err := config.LoadFile("tcplink.json")
package config

import "errors"

// 配置错误
var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("config: invalid config")
)

// Config tcplink 主配置
type Config struct {
	// Server 服务端配置
	Server ServerConfig `json:"server"`

	// Client 客户端配置
	Client ClientConfig `json:"client"`

	// Conn 单连接读写配置
	Conn ConnConfig `json:"conn"`

	// Liveness 存活检测（Reaper）配置
	Liveness LivenessConfig `json:"liveness"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Server:   DefaultServerConfig(),
		Client:   DefaultClientConfig(),
		Conn:     DefaultConnConfig(),
		Liveness: DefaultLivenessConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 端口号不在这里报错：Normalize 会把它们夹到 [0, 65535]。
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := c.Conn.Validate(); err != nil {
		return err
	}
	if err := c.Liveness.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}

// Normalize 修正可以安全修正的值（端口夹紧、零值回落到默认值）
func (c *Config) Normalize() *Config {
	c.Server.Port = ClampPort(c.Server.Port)
	c.Client.LocalPort = ClampPort(c.Client.LocalPort)

	if c.Server.Backlog <= 0 {
		c.Server.Backlog = DefaultBacklog
	}
	if c.Conn.ReadBufferSize <= 0 {
		c.Conn.ReadBufferSize = DefaultReadBufferSize
	}
	if c.Conn.SendQueueSize <= 0 {
		c.Conn.SendQueueSize = DefaultSendQueueSize
	}
	if c.Liveness.ProbeInterval <= 0 {
		c.Liveness.ProbeInterval = Duration(DefaultProbeInterval)
	}
	return c
}
