// Package conn 实现单条 TCP 连接的读写任务
//
// 每个 Conn 持有一个已建立的 net.Conn 句柄，Start 之后恰好运行
// 一个读任务和一个写任务：
//
//   - 读任务：顺序读取到私有缓冲区，每次读到 n > 0 字节即回调 OnReceive
//   - 写任务：从发送队列取出数据，循环写到全部刷出后回调 OnSent
//
// 读任务结束时通过 OnClosed 报告一次终止原因，对端关闭视为正常终止（err 为 nil）。
// Shutdown 关闭两个方向并释放句柄，Wait 等待两个任务退出。
//
// # 状态
//
// Conn 从 StatusConnected 开始，状态只允许单调前进：
//
//	Connected → Disconnecting → Disconnected
package conn
