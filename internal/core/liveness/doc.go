// Package liveness 实现连接回收器（Reaper）
//
// Reaper 是唯一负责把连接移出注册表的组件，两条路径汇入同一个 goroutine：
//
//   - 事件驱动：读任务终止时通过 Report 上报连接 ID
//   - 周期探测：每隔 ProbeInterval 对注册表快照中的每个连接做一次
//     非阻塞 MSG_PEEK 探测，发现对端已关闭则回收
//
// 回收以 Registry.Remove 的返回值为准，因此每条连接恰好被回收一次。
// 回收步骤：移出注册表 → Disconnecting → 关闭句柄 → Disconnected → OnEvict。
package liveness
