package metrics

// Stats 指标快照
//
// TotalIn 和 TotalOut 记录累计接收/发送字节数，
// RateIn 和 RateOut 为最近 60 秒的平均速率（字节/秒）。
type Stats struct {
	TotalIn  int64   // 总入站字节
	TotalOut int64   // 总出站字节
	RateIn   float64 // 入站速率（字节/秒）
	RateOut  float64 // 出站速率（字节/秒）

	Active int64 // 当前活跃连接数
	Opened int64 // 累计建立连接数
	Closed int64 // 累计关闭连接数
	Panics int64 // 订阅者 panic 次数
}
