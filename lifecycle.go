package tcplink

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/fx"
)

// state 生命周期状态
type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// String 返回状态的字符串表示
func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// runner 串行化 Fx 应用的启动与停止
//
// 停止是终态，不能再次启动。
type runner struct {
	name string
	app  *fx.App

	mu    sync.Mutex
	state state

	// onIdleStop 未启动即停止时调用，释放启动前获得的资源
	onIdleStop func() error
}

// start 启动 Fx 应用，失败时回滚已启动的模块并进入终态
func (r *runner) start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case stateRunning:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrStopped
	}

	if err := r.app.Start(ctx); err != nil {
		r.state = stateStopped
		logger.Error("启动失败", "role", r.name, "error", err)
		return fmt.Errorf("start %s: %w", r.name, err)
	}
	r.state = stateRunning
	logger.Info("已启动", "role", r.name)
	return nil
}

// stop 停止 Fx 应用，可重复调用
func (r *runner) stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.state
	r.state = stateStopped
	switch prev {
	case stateStopped:
		return nil
	case stateIdle:
		if r.onIdleStop != nil {
			return r.onIdleStop()
		}
		return nil
	}

	if err := r.app.Stop(ctx); err != nil {
		logger.Warn("停止出错", "role", r.name, "error", err)
		return fmt.Errorf("stop %s: %w", r.name, err)
	}
	logger.Info("已停止", "role", r.name)
	return nil
}

// running 是否处于运行状态
func (r *runner) running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRunning
}
