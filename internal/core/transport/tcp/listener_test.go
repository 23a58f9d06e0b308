package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPair 返回一对已建立的 loopback 连接（服务端, 客户端）
func newPair(t *testing.T) (*net.TCPConn, *net.TCPConn) {
	t.Helper()

	l, err := Listen("127.0.0.1:0", ListenOptions{Backlog: 4, NoDelay: true})
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *net.TCPConn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
		close(accepted)
	}()

	client, err := Dial(context.Background(), l.Addr().String(), DialOptions{Timeout: time.Second, NoDelay: true})
	require.NoError(t, err)

	server, ok := <-accepted
	require.True(t, ok, "accept failed")

	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return server, client
}

func TestListen_RandomPort(t *testing.T) {
	l, err := Listen("127.0.0.1:0", ListenOptions{Backlog: 10})
	require.NoError(t, err)
	defer l.Close()

	addr, ok := l.Addr().(*net.TCPAddr)
	require.True(t, ok)
	assert.NotZero(t, addr.Port)
	assert.Contains(t, l.String(), addr.String())
}

func TestListen_InvalidAddr(t *testing.T) {
	_, err := Listen("not-an-addr", ListenOptions{})
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "listen", opErr.Op)
}

func TestListener_CloseIdempotent(t *testing.T) {
	l, err := Listen("127.0.0.1:0", ListenOptions{})
	require.NoError(t, err)

	assert.False(t, l.IsClosed())
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
	assert.True(t, l.IsClosed())

	_, err = l.Accept()
	assert.ErrorIs(t, err, ErrListenerClosed)
}

func TestListener_CloseUnblocksAccept(t *testing.T) {
	l, err := Listen("127.0.0.1:0", ListenOptions{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrListenerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Accept not unblocked by Close")
	}
}

func TestDial_Refused(t *testing.T) {
	// 取一个空闲端口后立即释放
	l, err := Listen("127.0.0.1:0", ListenOptions{})
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = Dial(context.Background(), addr, DialOptions{Timeout: time.Second})
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "dial", opErr.Op)
	assert.Equal(t, addr, opErr.Addr)
}

func TestDial_LocalPort(t *testing.T) {
	l, err := Listen("127.0.0.1:0", ListenOptions{})
	require.NoError(t, err)
	defer l.Close()

	// 先借一个空闲端口作为本地端口
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	localPort := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	go func() {
		c, err := l.Accept()
		if err == nil {
			defer c.Close()
			_, _ = io.Copy(io.Discard, c)
		}
	}()

	c, err := Dial(context.Background(), l.Addr().String(), DialOptions{LocalPort: localPort, Timeout: time.Second})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, localPort, c.LocalAddr().(*net.TCPAddr).Port)
}

func TestIsPeerClosed(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{io.EOF, true},
		{net.ErrClosed, true},
		{ErrPeerClosed, true},
		{syscall.ECONNRESET, true},
		{syscall.EPIPE, true},
		{&OpError{Op: "probe", Err: syscall.ECONNRESET}, true},
		{fmt.Errorf("read: %w", io.EOF), true},
		{errors.New("boom"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPeerClosed(tt.err), "%v", tt.err)
	}
}

func TestOpError(t *testing.T) {
	err := &OpError{Op: "dial", Addr: "1.2.3.4:5", Err: syscall.ECONNREFUSED}
	assert.Contains(t, err.Error(), "tcp dial 1.2.3.4:5")
	assert.ErrorIs(t, err, syscall.ECONNREFUSED)

	err = &OpError{Op: "probe", Err: io.EOF}
	assert.Equal(t, "tcp probe: EOF", err.Error())
}
