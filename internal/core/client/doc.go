// Package client 实现客户端角色
//
// Client 同一时刻最多持有一条出站连接。一次连接/断开周期内，
// 订阅者看到的状态序列恰好是：
//
//	Connecting → Connected → Disconnecting → Disconnected
//
// 对端关闭连接时，Client 自动走与 Disconnect 相同的路径，
// 因此序列不会缺失。连接失败时只发出 Connecting，
// 内部状态回到 Disconnected 并返回 *tcp.OpError（Op 为 "connect"），不重试。
package client
