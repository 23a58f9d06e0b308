package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestRateMeter_Window(t *testing.T) {
	mock := clock.NewMock()
	r := NewRateMeter(mock)

	r.Add(100)
	mock.Add(time.Second)
	r.Add(200)
	mock.Add(500 * time.Millisecond)
	r.Add(50)

	assert.Equal(t, int64(350), r.Window())
	assert.InDelta(t, 350.0/60, r.Rate(), 0.0001)
}

func TestRateMeter_Expire(t *testing.T) {
	mock := clock.NewMock()
	r := NewRateMeter(mock)

	r.Add(100)
	mock.Add(30 * time.Second)
	r.Add(200)

	// 第一个桶在 60 秒后滑出窗口
	mock.Add(30 * time.Second)
	assert.Equal(t, int64(200), r.Window())

	mock.Add(30 * time.Second)
	assert.Zero(t, r.Window())
}

func TestRateMeter_Reset(t *testing.T) {
	r := NewRateMeter(clock.NewMock())
	r.Add(10)
	r.Reset()
	assert.Zero(t, r.Window())
}

func TestRateMeter_DefaultClock(t *testing.T) {
	r := NewRateMeter(nil)
	r.Add(60)
	assert.InDelta(t, 1.0, r.Rate(), 0.0001)
}
