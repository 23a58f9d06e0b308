// Package metrics 提供连接与流量指标
//
// Collector 同时维护两套数据：
//   - 进程内统计：累计字节数 + 60 秒滑动窗口速率（RateMeter）
//   - Prometheus 指标：通过 promauto 注册到指定的 Registerer
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(metrics.Config{Namespace: "tcplink", Registerer: reg})
//
//	c.ConnOpened(types.RoleServer)
//	c.LogRecv(1024)
//	c.ConnClosed(types.RoleServer, metrics.ReasonPeer)
//
//	stats := c.Totals()
//	fmt.Printf("In: %d, Rate: %.2f B/s\n", stats.TotalIn, stats.RateIn)
//
// # 导出的 Prometheus 指标
//
//	<ns>_connections_active{role}
//	<ns>_connections_opened_total{role}
//	<ns>_connections_closed_total{role,reason}
//	<ns>_bytes_received_total
//	<ns>_bytes_sent_total
//	<ns>_handler_panics_total
//
// 未启用指标时使用 Nop，所有方法为空操作。
package metrics
