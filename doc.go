// Package tcplink 提供最小化的双向 TCP 连接层
//
// 客户端角色维护一条出站连接，服务端角色接受任意数量的入站连接，
// 双方交换不分帧的原始字节流，并以事件形式向调用方报告
// 连接生命周期与数据收发。
//
// # 快速开始
//
//	srv, err := tcplink.NewServer(tcplink.WithListenAddr("127.0.0.1", 9000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tcplink.On(srv, func(e tcplink.DataReceivedEvent) {
//	    _ = srv.Send(e.Remote, []byte("pong"))
//	})
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
//	cli, _ := tcplink.NewClient(tcplink.WithServerAddr("127.0.0.1:9000"))
//	_ = cli.Start(ctx) // 配置了 ServerAddr 时启动即连接
//	_ = cli.Send([]byte("ping"))
//
// # 事件
//
// 所有事件在产生它的 goroutine 上同步投递：
//
//	StatusChangedEvent       客户端连接状态变化
//	DataReceivedEvent        一次读取完成（不超过读缓冲区大小）
//	DataSentEvent            一次 Send 的负载已完整写出
//	ServerStartedEvent       服务端开始监听
//	ClientConnectedEvent     服务端接受了新连接
//	ClientDisconnectedEvent  服务端回收了一个连接
//
// 同一连接上的事件保持顺序，不同连接之间没有顺序保证。
//
// # 文件组织
//
//	tcplink/
//	├── doc.go        # 包文档
//	├── version.go    # 版本信息
//	├── types.go      # 公共类型别名
//	├── errors.go     # 公共错误
//	├── options.go    # 配置选项
//	├── fx.go         # Fx 应用组装
//	├── server.go     # Server 门面
//	├── client.go     # Client 门面
//	└── events.go     # 订阅辅助
package tcplink
