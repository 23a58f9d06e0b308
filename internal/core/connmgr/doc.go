// Package connmgr 维护服务端的活跃连接注册表
//
// Registry 以 ConnID 为主键，远端地址仅作为二级索引。
// 锁只保护 map 操作，任何 I/O 都在锁外进行；广播等遍历操作
// 使用 Snapshot 返回的时间点副本。
//
// Remove 只有第一个调用者成功，据此保证每条连接恰好被驱逐一次。
package connmgr
