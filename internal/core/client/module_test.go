package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-tcplink/config"
	"github.com/dep2p/go-tcplink/internal/core/eventbus"
	"github.com/dep2p/go-tcplink/internal/core/metrics"
	pkgif "github.com/dep2p/go-tcplink/pkg/interfaces"
	"github.com/dep2p/go-tcplink/pkg/types"
)

func TestModule_AutoConnect(t *testing.T) {
	addr, ch := peer(t)

	cfg := config.NewConfig()
	cfg.Client.ServerAddr = addr

	var c *Client
	var bus pkgif.EventBus
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		metrics.Module(),
		eventbus.Module(),
		Module(),
		fx.Populate(&c, &bus),
	)

	statuses := make(chan types.ConnStatus, 8)
	_, err := eventbus.On(bus, func(e types.StatusChangedEvent) { statuses <- e.Status })
	require.NoError(t, err)

	app.RequireStart()
	accept(t, ch)
	assert.True(t, c.IsConnected())

	app.RequireStop()
	assert.False(t, c.IsConnected())

	var got []types.ConnStatus
	for len(statuses) > 0 {
		got = append(got, <-statuses)
	}
	assert.Equal(t, fullEpisode, got)
}

func TestModule_NoServerAddr(t *testing.T) {
	var c *Client
	app := fxtest.New(t,
		fx.NopLogger,
		Module(),
		fx.Populate(&c),
	)

	app.RequireStart()
	assert.False(t, c.IsConnected())
	assert.Equal(t, types.StatusDisconnected, c.Status())
	app.RequireStop()
}

func TestModule_ConnectFailureFailsStart(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Client.ServerAddr = "127.0.0.1:1"

	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		Module(),
	)
	err := app.Start(context.Background())
	// 127.0.0.1:1 在测试环境中通常无人监听
	if err == nil {
		app.RequireStop()
		t.Skip("port 1 unexpectedly accepting connections")
	}
	assert.Error(t, err)
}
