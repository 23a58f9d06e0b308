package tcplink_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tcplink "github.com/dep2p/go-tcplink"
	"github.com/dep2p/go-tcplink/internal/core/transport/tcp"
)

const (
	waitFor = 3 * time.Second
	tick    = 5 * time.Millisecond
)

// ════════════════════════════════════════════════════════════════════════════
//                              测试辅助
// ════════════════════════════════════════════════════════════════════════════

// eventLog 记录订阅到的所有事件
type eventLog struct {
	mu     sync.Mutex
	events []tcplink.Event
}

func record(t *testing.T, s tcplink.Subscriber) *eventLog {
	t.Helper()
	l := &eventLog{}
	for _, kind := range []tcplink.EventKind{
		tcplink.EventStatusChanged,
		tcplink.EventDataReceived,
		tcplink.EventDataSent,
		tcplink.EventServerStarted,
		tcplink.EventClientConnected,
		tcplink.EventClientDisconnected,
	} {
		_, err := s.Subscribe(kind, func(evt tcplink.Event) {
			l.mu.Lock()
			l.events = append(l.events, evt)
			l.mu.Unlock()
		})
		require.NoError(t, err)
	}
	return l
}

func (l *eventLog) count(kind tcplink.EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) statuses() []tcplink.ConnStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []tcplink.ConnStatus
	for _, e := range l.events {
		if s, ok := e.(tcplink.StatusChangedEvent); ok {
			out = append(out, s.Status)
		}
	}
	return out
}

func (l *eventLog) received() []tcplink.DataReceivedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []tcplink.DataReceivedEvent
	for _, e := range l.events {
		if d, ok := e.(tcplink.DataReceivedEvent); ok {
			out = append(out, d)
		}
	}
	return out
}

func startServer(t *testing.T, opts ...tcplink.Option) (*tcplink.Server, *eventLog) {
	t.Helper()
	opts = append([]tcplink.Option{
		tcplink.WithListenAddr("127.0.0.1", 0),
		tcplink.WithProbeInterval(20 * time.Millisecond),
	}, opts...)

	srv, err := tcplink.NewServer(opts...)
	require.NoError(t, err)
	log := record(t, srv)

	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })
	return srv, log
}

func startClient(t *testing.T, opts ...tcplink.Option) (*tcplink.Client, *eventLog) {
	t.Helper()
	cli, err := tcplink.NewClient(opts...)
	require.NoError(t, err)
	log := record(t, cli)

	require.NoError(t, cli.Start(context.Background()))
	t.Cleanup(func() { _ = cli.Stop(context.Background()) })
	return cli, log
}

// ════════════════════════════════════════════════════════════════════════════
//                              端到端场景
// ════════════════════════════════════════════════════════════════════════════

func TestScenario_ClientConnects(t *testing.T) {
	srv, srvLog := startServer(t)
	assert.Equal(t, 1, srvLog.count(tcplink.EventServerStarted))

	_, cliLog := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	assert.Equal(t, []tcplink.ConnStatus{tcplink.StatusConnecting, tcplink.StatusConnected}, cliLog.statuses())
	require.Eventually(t, func() bool { return srv.Len() == 1 }, waitFor, tick)
	require.Eventually(t, func() bool { return srvLog.count(tcplink.EventClientConnected) == 1 }, waitFor, tick)
}

func TestScenario_Ping(t *testing.T) {
	srv, srvLog := startServer(t)
	cli, _ := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	require.NoError(t, cli.Send([]byte("ping")))

	require.Eventually(t, func() bool { return len(srvLog.received()) == 1 }, waitFor, tick)
	got := srvLog.received()[0]
	assert.Equal(t, []byte("ping"), got.Payload)
	assert.Equal(t, cli.LocalAddr().String(), got.Remote.String())
}

func TestScenario_AbruptClose(t *testing.T) {
	srv, srvLog := startServer(t)

	nc, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return srv.Len() == 1 }, waitFor, tick)

	require.NoError(t, nc.(*net.TCPConn).SetLinger(0))
	require.NoError(t, nc.Close())

	require.Eventually(t, func() bool { return srv.Len() == 0 }, waitFor, tick)
	require.Eventually(t, func() bool { return srvLog.count(tcplink.EventClientDisconnected) == 1 }, waitFor, tick)
}

func TestScenario_TwoClients(t *testing.T) {
	srv, srvLog := startServer(t)
	addr := srv.Addr().String()

	payloads := []string{"abc", "xyz"}
	senders := make([]string, len(payloads))

	var wg sync.WaitGroup
	for i, p := range payloads {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			nc, err := net.Dial("tcp", addr)
			if !assert.NoError(t, err) {
				return
			}
			t.Cleanup(func() { _ = nc.Close() })
			senders[i] = nc.LocalAddr().String()
			_, err = nc.Write([]byte(p))
			assert.NoError(t, err)
		}(i, p)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return len(srvLog.received()) == 2 }, waitFor, tick)

	byRemote := map[string]string{}
	for _, e := range srvLog.received() {
		byRemote[e.Remote.String()] = string(e.Payload)
	}
	for i, p := range payloads {
		assert.Equal(t, p, byRemote[senders[i]])
	}
}

func TestScenario_LargePayload(t *testing.T) {
	srv, srvLog := startServer(t, tcplink.WithReadBufferSize(1024))
	cli, _ := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	payload := bytes.Repeat([]byte("0123456789abcdef"), 128)
	require.Len(t, payload, 2048)
	require.NoError(t, cli.Send(payload))

	var joined []byte
	require.Eventually(t, func() bool {
		joined = joined[:0]
		for _, e := range srvLog.received() {
			joined = append(joined, e.Payload...)
		}
		return len(joined) == len(payload)
	}, waitFor, tick)

	assert.Len(t, srvLog.received(), 2)
	assert.Equal(t, payload, joined)
}

// ════════════════════════════════════════════════════════════════════════════
//                              双向通信
// ════════════════════════════════════════════════════════════════════════════

func TestPingPong(t *testing.T) {
	srv, _ := startServer(t)
	_, err := tcplink.On(srv, func(e tcplink.DataReceivedEvent) {
		if string(e.Payload) == "ping" {
			assert.NoError(t, srv.Send(e.Remote, []byte("pong")))
		}
	})
	require.NoError(t, err)

	cli, cliLog := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))
	require.NoError(t, cli.Send([]byte("ping")))

	require.Eventually(t, func() bool { return len(cliLog.received()) == 1 }, waitFor, tick)
	assert.Equal(t, []byte("pong"), cliLog.received()[0].Payload)
	require.Eventually(t, func() bool { return cliLog.count(tcplink.EventDataSent) == 1 }, waitFor, tick)
}

func TestServer_Broadcast(t *testing.T) {
	srv, _ := startServer(t)

	var logs []*eventLog
	for i := 0; i < 3; i++ {
		_, l := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))
		logs = append(logs, l)
	}
	require.Eventually(t, func() bool { return srv.Len() == 3 }, waitFor, tick)

	assert.Equal(t, 3, srv.SendAll([]byte("hi")))
	for _, l := range logs {
		l := l
		require.Eventually(t, func() bool { return len(l.received()) == 1 }, waitFor, tick)
	}
}

func TestServer_Disconnect(t *testing.T) {
	srv, srvLog := startServer(t)
	cli, cliLog := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	require.Eventually(t, func() bool { return srv.Len() == 1 }, waitFor, tick)
	info := srv.Connections()[0]
	assert.Equal(t, tcplink.RoleServer, info.Role)

	require.NoError(t, srv.Disconnect(info.ID))
	require.Eventually(t, func() bool { return srvLog.count(tcplink.EventClientDisconnected) == 1 }, waitFor, tick)
	assert.ErrorIs(t, srv.Disconnect(info.ID), tcplink.ErrUnknownConn)

	// 服务端断开后客户端走完整断开流程
	require.Eventually(t, func() bool { return !cli.IsConnected() }, waitFor, tick)
	require.Eventually(t, func() bool { return len(cliLog.statuses()) == 4 }, waitFor, tick)
	assert.Equal(t, tcplink.StatusDisconnected, cli.Status())
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

func TestServer_Lifecycle(t *testing.T) {
	srv, err := tcplink.NewServer(tcplink.WithListenAddr("127.0.0.1", 0))
	require.NoError(t, err)
	assert.Nil(t, srv.Addr())
	assert.False(t, srv.IsRunning())

	require.NoError(t, srv.Start(context.Background()))
	assert.True(t, srv.IsRunning())
	assert.ErrorIs(t, srv.Start(context.Background()), tcplink.ErrAlreadyStarted)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
	assert.False(t, srv.IsRunning())
	assert.ErrorIs(t, srv.Start(context.Background()), tcplink.ErrStopped)
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv, err := tcplink.NewServer()
	require.NoError(t, err)
	require.NoError(t, srv.Stop(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), tcplink.ErrStopped)
}

func TestServer_StopDisconnectsClients(t *testing.T) {
	srv, err := tcplink.NewServer(tcplink.WithListenAddr("127.0.0.1", 0))
	require.NoError(t, err)
	srvLog := record(t, srv)
	require.NoError(t, srv.Start(context.Background()))

	cli, _ := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))
	require.Eventually(t, func() bool { return srv.Len() == 1 }, waitFor, tick)

	require.NoError(t, srv.Stop(context.Background()))
	assert.Equal(t, 0, srv.Len())
	assert.Equal(t, 1, srvLog.count(tcplink.EventClientDisconnected))
	require.Eventually(t, func() bool { return !cli.IsConnected() }, waitFor, tick)
}

func TestServer_ListenConflict(t *testing.T) {
	first, _ := startServer(t)
	port := first.Addr().(*net.TCPAddr).Port

	srv, err := tcplink.NewServer(tcplink.WithListenAddr("127.0.0.1", port))
	require.NoError(t, err)
	require.Error(t, srv.Start(context.Background()))
	assert.ErrorIs(t, srv.Start(context.Background()), tcplink.ErrStopped)
}

func TestClient_Lifecycle(t *testing.T) {
	srv, _ := startServer(t)

	cli, err := tcplink.NewClient()
	require.NoError(t, err)
	log := record(t, cli)
	require.NoError(t, cli.Start(context.Background()))
	assert.False(t, cli.IsConnected())
	assert.ErrorIs(t, cli.Send([]byte("x")), tcplink.ErrNotConnected)

	require.NoError(t, cli.Connect(context.Background(), srv.Addr().String()))
	assert.True(t, cli.IsConnected())
	assert.Equal(t, srv.Addr().String(), cli.RemoteAddr().String())

	require.NoError(t, cli.Stop(context.Background()))
	assert.Equal(t, []tcplink.ConnStatus{
		tcplink.StatusConnecting,
		tcplink.StatusConnected,
		tcplink.StatusDisconnecting,
		tcplink.StatusDisconnected,
	}, log.statuses())
	assert.Nil(t, cli.LocalAddr())
}

func TestClient_DisconnectFromHandler(t *testing.T) {
	srv, srvLog := startServer(t)
	cli, cliLog := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	returned := make(chan error, 1)
	_, err := tcplink.On(cli, func(evt tcplink.DataReceivedEvent) {
		err := cli.Disconnect()
		select {
		case returned <- err:
		default:
		}
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return srv.Len() == 1 }, waitFor, tick)
	assert.Equal(t, 1, srv.SendAll([]byte("bye")))

	select {
	case err := <-returned:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Disconnect in DataReceived handler did not return")
	}
	require.Eventually(t, func() bool { return len(cliLog.statuses()) == 4 }, waitFor, tick)
	assert.False(t, cli.IsConnected())
	require.Eventually(t, func() bool { return srvLog.count(tcplink.EventClientDisconnected) == 1 }, waitFor, tick)
}

func TestClient_ConnectFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cli, err := tcplink.NewClient()
	require.NoError(t, err)
	log := record(t, cli)
	require.NoError(t, cli.Start(context.Background()))
	defer cli.Stop(context.Background())

	err = cli.Connect(context.Background(), addr)
	var oe *tcp.OpError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "connect", oe.Op)
	assert.Equal(t, []tcplink.ConnStatus{tcplink.StatusConnecting}, log.statuses())
	assert.Equal(t, tcplink.StatusDisconnected, cli.Status())
}

func TestClient_StopBeforeStart(t *testing.T) {
	srv, _ := startServer(t)

	cli, err := tcplink.NewClient()
	require.NoError(t, err)
	require.NoError(t, cli.Connect(context.Background(), srv.Addr().String()))

	require.NoError(t, cli.Stop(context.Background()))
	assert.False(t, cli.IsConnected())
	require.Eventually(t, func() bool { return srv.Len() == 0 }, waitFor, tick)
}

// ════════════════════════════════════════════════════════════════════════════
//                              选项与统计
// ════════════════════════════════════════════════════════════════════════════

func TestOptions_Invalid(t *testing.T) {
	_, err := tcplink.NewServer(tcplink.WithConfig(nil))
	assert.Error(t, err)

	_, err = tcplink.NewServer(tcplink.WithBacklog(0))
	assert.Error(t, err)

	_, err = tcplink.NewClient(tcplink.WithReadBufferSize(-1))
	assert.Error(t, err)

	_, err = tcplink.NewServer(tcplink.WithConfigFile("/nonexistent/tcplink.json"))
	assert.Error(t, err)
}

func TestOptions_Applied(t *testing.T) {
	srv, err := tcplink.NewServer(
		tcplink.WithListenAddr("127.0.0.1", 70000),
		tcplink.WithBacklog(32),
		tcplink.WithSendQueueSize(8),
		tcplink.WithMetrics(false),
	)
	require.NoError(t, err)

	cfg := srv.Config()
	assert.Equal(t, 65535, cfg.Server.Port)
	assert.Equal(t, 32, cfg.Server.Backlog)
	assert.Equal(t, 8, cfg.Conn.SendQueueSize)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, tcplink.Stats{}, srv.Stats())
}

func TestOptions_DuplicateRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := tcplink.NewServer(tcplink.WithRegisterer(reg))
	require.NoError(t, err)

	_, err = tcplink.NewServer(tcplink.WithRegisterer(reg))
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	srv, srvLog := startServer(t)
	cli, _ := startClient(t, tcplink.WithServerAddr(srv.Addr().String()))

	require.NoError(t, cli.Send([]byte("hello")))
	require.Eventually(t, func() bool { return len(srvLog.received()) == 1 }, waitFor, tick)

	assert.Equal(t, int64(5), srv.Stats().TotalIn)
	assert.Equal(t, int64(1), srv.Stats().Active)
	require.Eventually(t, func() bool { return cli.Stats().TotalOut == 5 }, waitFor, tick)
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, tcplink.VersionInfo(), tcplink.Version)
}
