package types

import "github.com/google/uuid"

// ConnID 连接标识
//
// 在连接建立（accept 或 dial）时分配，生命周期内保持不变。
// 注册表以 ConnID 为键，远端地址仅作为元数据。
type ConnID string

// NewConnID 生成新的连接标识
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// String 返回字符串表示
func (id ConnID) String() string {
	return string(id)
}

// ShortString 返回前 8 个字符，用于日志
func (id ConnID) ShortString() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsEmpty 检查是否为空
func (id ConnID) IsEmpty() bool {
	return id == ""
}
