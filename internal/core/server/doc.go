// Package server 实现服务端角色
//
// Server 在配置的地址上监听，每个接入连接注册到 connmgr.Registry
// 并启动独立的读写任务。Server 自身运行两个 goroutine，
// 由同一个 errgroup 管理：
//
//   - accept 循环：同一时刻只有一个 Accept，临时错误退避后重试
//   - Reaper：回收对端已关闭的连接
//
// # 事件
//
//	ServerStarted       监听成功
//	ClientConnected     新连接注册完成
//	DataReceived        连接上读到数据
//	DataSent            一次发送全部写出
//	ClientDisconnected  连接被回收或 Stop 关闭
//
// # 生命周期
//
// Start 只能成功一次；Stop 可重复调用，会关闭监听器、回收所有连接
// 并等待全部 goroutine 退出。Stop 之后不能再次 Start。
package server
