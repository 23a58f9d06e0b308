package connmgr

import (
	"net"
	"sync"

	"github.com/dep2p/go-tcplink/internal/core/conn"
	"github.com/dep2p/go-tcplink/pkg/types"
)

// ============================================================================
//                              Registry
// ============================================================================

// Registry 活跃连接注册表
type Registry struct {
	mu     sync.RWMutex
	conns  map[types.ConnID]*conn.Conn
	byAddr map[string]types.ConnID
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[types.ConnID]*conn.Conn),
		byAddr: make(map[string]types.ConnID),
	}
}

// Add 注册连接
//
// ID 已存在时返回 false。远端地址重复时（系统复用了地址）
// 由最新的连接占有地址索引，旧连接仍可通过 ID 访问。
func (r *Registry) Add(c *conn.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := c.ID()
	if _, ok := r.conns[id]; ok {
		return false
	}
	r.conns[id] = c
	if key := addrKey(c.RemoteAddr()); key != "" {
		r.byAddr[key] = id
	}
	return true
}

// Remove 移除连接
//
// 并发调用时只有一个调用者得到 (c, true)。
func (r *Registry) Remove(id types.ConnID) (*conn.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	delete(r.conns, id)

	// 地址索引可能已被更新的连接占用
	if key := addrKey(c.RemoteAddr()); key != "" && r.byAddr[key] == id {
		delete(r.byAddr, key)
	}
	return c, true
}

// Get 按 ID 查找
func (r *Registry) Get(id types.ConnID) (*conn.Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[id]
	return c, ok
}

// Lookup 按远端地址查找
func (r *Registry) Lookup(remote net.Addr) (*conn.Conn, bool) {
	key := addrKey(remote)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAddr[key]
	if !ok {
		return nil, false
	}
	c, ok := r.conns[id]
	return c, ok
}

// Snapshot 返回当前所有连接的副本
func (r *Registry) Snapshot() []*conn.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*conn.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Len 返回连接数
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Clear 清空注册表并返回被移除的连接
func (r *Registry) Clear() []*conn.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*conn.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	r.conns = make(map[types.ConnID]*conn.Conn)
	r.byAddr = make(map[string]types.ConnID)
	return out
}

func addrKey(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.Network() + "/" + a.String()
}
