// Package tcp 提供 tcplink 使用的 TCP 套接字工具
//
// 本包只处理套接字层面的事情，不持有任何连接状态：
//
//   - Listen:       按配置的 backlog 监听（Linux 上直接调用 listen(2)）
//   - Dial:         绑定固定本地端口拨号（SO_REUSEADDR）
//   - Probe:        非阻塞 MSG_PEEK 探测对端是否已关闭
//   - IsPeerClosed: 区分"对端关闭"与其他异常
//
// # 使用示例
//
//	l, err := tcp.Listen("127.0.0.1:0", tcp.ListenOptions{Backlog: 10})
//	conn, err := l.Accept()
//
//	c, err := tcp.Dial(ctx, "127.0.0.1:9000", tcp.DialOptions{LocalPort: 4000})
package tcp
