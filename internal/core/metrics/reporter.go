package metrics

import "github.com/dep2p/go-tcplink/pkg/types"

// 连接关闭原因，用作 connections_closed_total 的 reason 标签
const (
	// ReasonPeer 对端关闭（读任务正常终止）
	ReasonPeer = "peer"
	// ReasonProbe 存活探测发现对端已关闭
	ReasonProbe = "probe"
	// ReasonError 读写异常
	ReasonError = "error"
	// ReasonLocal 本地主动关闭（Disconnect / Stop）
	ReasonLocal = "local"
)

// Reporter 记录连接与流量指标
type Reporter interface {
	// ConnOpened 记录一条新连接
	ConnOpened(role types.Role)

	// ConnClosed 记录一条连接关闭
	ConnClosed(role types.Role, reason string)

	// LogSent 记录发送字节数
	LogSent(n int)

	// LogRecv 记录接收字节数
	LogRecv(n int)

	// HandlerPanic 记录一次订阅者 panic
	HandlerPanic()

	// Totals 返回当前统计
	Totals() Stats
}

// Nop 空实现
type Nop struct{}

var _ Reporter = Nop{}

func (Nop) ConnOpened(types.Role)         {}
func (Nop) ConnClosed(types.Role, string) {}
func (Nop) LogSent(int)                   {}
func (Nop) LogRecv(int)                   {}
func (Nop) HandlerPanic()                 {}
func (Nop) Totals() Stats                 { return Stats{} }
