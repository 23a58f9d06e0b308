package config

import (
	"fmt"
	"time"
)

// DefaultProbeInterval 默认探测间隔
const DefaultProbeInterval = 100 * time.Millisecond

// LivenessConfig 存活检测配置
//
// Reaper 同时接收读写任务的终止上报，并按固定间隔
// 对注册表中每个连接做一次非阻塞探测作为兜底。
type LivenessConfig struct {
	// ProbeInterval 探测间隔
	// 默认值: 100ms
	ProbeInterval Duration `json:"probe_interval"`

	// DisableProbe 关闭周期探测，只依赖终止上报
	DisableProbe bool `json:"disable_probe,omitempty"`
}

// DefaultLivenessConfig 返回默认存活检测配置
func DefaultLivenessConfig() LivenessConfig {
	return LivenessConfig{
		ProbeInterval: Duration(DefaultProbeInterval),
	}
}

// Validate 验证存活检测配置
func (c LivenessConfig) Validate() error {
	if c.ProbeInterval < 0 {
		return fmt.Errorf("%w: probe_interval must be >= 0", ErrInvalidConfig)
	}
	return nil
}
