// Package main 提供 tcplink 演示程序
//
// 服务端模式对收到的 "ping" 回复 "pong" 并记录所有事件；
// 客户端模式把标准输入的每一行发给服务端并打印收到的数据。
//
//	tcplink -mode server -port 9000
//	tcplink -mode client -addr 127.0.0.1 -port 9000
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tcplink "github.com/dep2p/go-tcplink"
	"github.com/dep2p/go-tcplink/pkg/lib/log"
)

var logger = log.Logger("tcplink/cmd")

// stopTimeout 退出时等待连接关闭的上限
const stopTimeout = 5 * time.Second

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	mode       = flag.String("mode", "server", "运行模式 (server/client)")
	addr       = flag.String("addr", "", "服务端监听主机，客户端模式下为目标主机（默认 127.0.0.1）")
	port       = flag.Int("port", 9000, "服务端端口，0 = 随机端口")
	localPort  = flag.Int("local-port", 0, "客户端绑定的本地端口，0 = 系统分配")
	backlog    = flag.Int("backlog", 0, "服务端最大挂起连接数（默认 10）")
	configFile = flag.String("config", "", "JSON 配置文件路径")
	logLevel   = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(tcplink.VersionInfo())
		return nil
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("启动 tcplink", "version", tcplink.Version, "mode", *mode)

	switch *mode {
	case "server":
		return runServer(ctx, opts)
	case "client":
		return runClient(ctx, opts, os.Stdin)
	default:
		return fmt.Errorf("未知模式 %q", *mode)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// 服务端
// ═══════════════════════════════════════════════════════════════════════════

func runServer(ctx context.Context, opts []tcplink.Option) error {
	srv, err := tcplink.NewServer(opts...)
	if err != nil {
		return err
	}
	if err := subscribeServer(srv); err != nil {
		return err
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	fmt.Printf("正在监听 %s，按 Ctrl+C 退出\n", srv.Addr())

	<-ctx.Done()
	fmt.Println("\n正在关闭服务端...")
	return shutdown(srv.Stop)
}

// subscribeServer 记录服务端事件，对 "ping" 回复 "pong"
func subscribeServer(srv *tcplink.Server) error {
	subs := []func() error{
		func() error {
			_, err := tcplink.On(srv, func(e tcplink.ClientConnectedEvent) {
				logger.Info("客户端已连接", "remote", e.Remote, "conn", e.ConnID.ShortString())
			})
			return err
		},
		func() error {
			_, err := tcplink.On(srv, func(e tcplink.ClientDisconnectedEvent) {
				logger.Info("客户端已断开", "remote", e.Remote, "conn", e.ConnID.ShortString())
			})
			return err
		},
		func() error {
			_, err := tcplink.On(srv, func(e tcplink.DataReceivedEvent) {
				logger.Info("收到数据", "remote", e.Remote, "bytes", len(e.Payload))
				if strings.TrimSpace(string(e.Payload)) != "ping" {
					return
				}
				if err := srv.SendID(e.ConnID, []byte("pong")); err != nil {
					logger.Warn("回复失败", "remote", e.Remote, "error", err)
				}
			})
			return err
		},
		func() error {
			_, err := tcplink.On(srv, func(e tcplink.DataSentEvent) {
				logger.Debug("数据已发送", "remote", e.Remote, "bytes", len(e.Payload))
			})
			return err
		},
	}
	for _, sub := range subs {
		if err := sub(); err != nil {
			return err
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 客户端
// ═══════════════════════════════════════════════════════════════════════════

func runClient(ctx context.Context, opts []tcplink.Option, in io.Reader) error {
	cli, err := tcplink.NewClient(opts...)
	if err != nil {
		return err
	}

	disconnected := make(chan struct{}, 1)
	if _, err := tcplink.On(cli, func(e tcplink.StatusChangedEvent) {
		logger.Info("状态变化", "status", e.Status, "remote", e.Remote)
		if e.Status == tcplink.StatusDisconnected {
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}
	}); err != nil {
		return err
	}
	if _, err := tcplink.On(cli, func(e tcplink.DataReceivedEvent) {
		fmt.Printf("< %s\n", e.Payload)
	}); err != nil {
		return err
	}

	if err := cli.Start(ctx); err != nil {
		return fmt.Errorf("连接失败: %w", err)
	}
	fmt.Printf("已连接 %s，输入内容回车发送，按 Ctrl+C 退出\n", cli.RemoteAddr())

	lines := make(chan string)
	go readLines(in, lines)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n正在断开...")
			return shutdown(cli.Stop)
		case <-disconnected:
			fmt.Println("连接已断开")
			return shutdown(cli.Stop)
		case line, ok := <-lines:
			if !ok {
				return shutdown(cli.Stop)
			}
			if line == "" {
				continue
			}
			if err := cli.Send([]byte(line)); err != nil {
				logger.Warn("发送失败", "error", err)
			}
		}
	}
}

// readLines 按行读取输入，读完后关闭 out
func readLines(in io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		out <- sc.Text()
	}
}

// shutdown 在限定时间内执行 stop
func shutdown(stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return stop(ctx)
}
