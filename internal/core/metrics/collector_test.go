package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-tcplink/pkg/types"
)

func TestCollector_Connections(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(Config{Registerer: reg})

	c.ConnOpened(types.RoleServer)
	c.ConnOpened(types.RoleServer)
	c.ConnOpened(types.RoleClient)
	c.ConnClosed(types.RoleServer, ReasonProbe)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.active.WithLabelValues("server")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.active.WithLabelValues("client")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.opened.WithLabelValues("server")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.closed.WithLabelValues("server", ReasonProbe)))

	stats := c.Totals()
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(3), stats.Opened)
	assert.Equal(t, int64(1), stats.Closed)
}

func TestCollector_Bytes(t *testing.T) {
	c := NewCollector(Config{})

	c.LogRecv(100)
	c.LogRecv(24)
	c.LogSent(10)
	c.LogSent(0)
	c.LogRecv(-1)

	assert.Equal(t, float64(124), testutil.ToFloat64(c.bytesIn))
	assert.Equal(t, float64(10), testutil.ToFloat64(c.bytesOut))

	stats := c.Totals()
	assert.Equal(t, int64(124), stats.TotalIn)
	assert.Equal(t, int64(10), stats.TotalOut)
}

func TestCollector_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(Config{Namespace: "demo", Subsystem: "srv", Registerer: reg})
	c.LogSent(5)
	c.HandlerPanic()

	expected := `
# HELP demo_srv_bytes_sent_total Total number of bytes sent
# TYPE demo_srv_bytes_sent_total counter
demo_srv_bytes_sent_total 5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "demo_srv_bytes_sent_total"))

	n, err := testutil.GatherAndCount(reg, "demo_srv_handler_panics_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), c.Totals().Panics)
}

func TestCollector_DuplicateRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(Config{Registerer: reg})
	assert.Panics(t, func() {
		NewCollector(Config{Registerer: reg})
	})
}

func TestCollector_Rate(t *testing.T) {
	mock := clock.NewMock()
	c := NewCollector(Config{Clock: mock})

	c.LogRecv(600)
	assert.InDelta(t, 10.0, c.Totals().RateIn, 0.001)

	mock.Add(61 * time.Second)
	assert.Zero(t, c.Totals().RateIn)
	assert.Equal(t, int64(600), c.Totals().TotalIn)
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.ConnOpened(types.RoleServer)
	r.ConnClosed(types.RoleServer, ReasonPeer)
	r.LogRecv(10)
	r.LogSent(10)
	r.HandlerPanic()
	assert.Equal(t, Stats{}, r.Totals())
}
