// Package types 定义 tcplink 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 tcplink 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go     - ConnID
//   - enums.go   - ConnStatus, Role
//   - events.go  - EventKind 及所有事件负载
//   - conn.go    - ConnInfo
package types
