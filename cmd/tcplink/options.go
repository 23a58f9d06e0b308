package main

import (
	"flag"
	"net"
	"os"
	"strconv"

	tcplink "github.com/dep2p/go-tcplink"
	"github.com/dep2p/go-tcplink/config"
)

// 环境变量
const (
	envConfig   = "TCPLINK_CONFIG"
	envLogLevel = "TCPLINK_LOG_LEVEL"
)

// defaultHost 未指定 -addr 时客户端连接的主机
const defaultHost = "127.0.0.1"

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（TCPLINK_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildOptions() ([]tcplink.Option, error) {
	var opts []tcplink.Option

	// ═══════════════════════════════════════════════════════════════════
	// 1. 配置文件
	// ═══════════════════════════════════════════════════════════════════
	path := *configFile
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		opts = append(opts, tcplink.WithConfigFile(path))
	}

	// ═══════════════════════════════════════════════════════════════════
	// 2. 日志
	// ═══════════════════════════════════════════════════════════════════
	level := *logLevel
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level != "" {
		opts = append(opts, tcplink.WithLogLevel(level))
	}
	opts = append(opts, tcplink.WithLogOutput(os.Stderr))

	// ═══════════════════════════════════════════════════════════════════
	// 3. 命令行参数覆盖
	// ═══════════════════════════════════════════════════════════════════
	switch *mode {
	case "server":
		if isFlagSet("addr") || isFlagSet("port") || path == "" {
			opts = append(opts, tcplink.WithListenAddr(*addr, *port))
		}
		if *backlog > 0 {
			opts = append(opts, tcplink.WithBacklog(*backlog))
		}
	case "client":
		if isFlagSet("addr") || isFlagSet("port") || path == "" {
			host := *addr
			if host == "" {
				host = defaultHost
			}
			opts = append(opts, tcplink.WithServerAddr(net.JoinHostPort(host, strconv.Itoa(config.ClampPort(*port)))))
		}
		if *localPort > 0 {
			opts = append(opts, tcplink.WithLocalPort(*localPort))
		}
	}
	return opts, nil
}

// isFlagSet 检查参数是否在命令行显式设置
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
