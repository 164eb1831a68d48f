package sim

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sim-go/feed"
	"market-sim-go/sink"
)

type eventRecorder struct {
	mu          sync.Mutex
	events      []string
	instruments map[string]map[string]bool // event → 见过的品种
}

func (r *eventRecorder) sink(event string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if inst, ok := fields["instrument"].(string); ok {
		if r.instruments == nil {
			r.instruments = make(map[string]map[string]bool)
		}
		if r.instruments[event] == nil {
			r.instruments[event] = make(map[string]bool)
		}
		r.instruments[event][inst] = true
	}
}

func (r *eventRecorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// overlap 报告是否已有品种同时出现过持仓更新与行情更新。
func (r *eventRecorder) overlap() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for inst := range r.instruments["position_update"] {
		if r.instruments["market_update"][inst] {
			return true
		}
	}
	return false
}

func TestNewRunnerValidation(t *testing.T) {
	_, err := NewRunner(RunnerConfig{TradeInterval: 0, MarketInterval: time.Second})
	assert.Error(t, err)
	_, err = NewRunner(RunnerConfig{TradeInterval: time.Second, MarketInterval: 0})
	assert.Error(t, err)
}

// 启动 kick：绑定 sink 并同步生成第一笔成交，随后 ticker 继续驱动整条链。
func TestRunnerStartKicksGraph(t *testing.T) {
	rec := &eventRecorder{}
	table := sink.NewTable(50, "quantity", "price")
	r, err := NewRunner(RunnerConfig{
		Universe:       feed.DefaultUniverse(),
		TradeInterval:  5 * time.Millisecond,
		MarketInterval: 5 * time.Millisecond,
		Seed:           7,
		EventSink:      rec.sink,
		SinkTarget:     table,
		BindOnStart:    true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))

	// 节点状态只在分发协程上变，这里通过带锁的事件记录器观察进度，
	// 停止后再读节点访问器。
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rec.count("trade_generated") >= 3 && rec.overlap() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	assert.GreaterOrEqual(t, r.Trades.RowCount(), 3)
	assert.NotEmpty(t, r.Positions.Positions(), "positions must follow trades")
	assert.NotEmpty(t, r.Market.Prices(), "market ticker must have fired")
	assert.NotEmpty(t, r.Pnl.Current(), "pnl must follow both upstreams")

	assert.Equal(t, 1, rec.count("sink_bound"))
	assert.Zero(t, rec.count("sink_bind_error"))
	assert.NotEmpty(t, table.Series("quantity"), "bound sink must receive trade fields")
	assert.NotEmpty(t, table.Series("price"))
}

// 绑定失败只记事件，feed 照常出数。
func TestRunnerStartSinkBindError(t *testing.T) {
	rec := &eventRecorder{}
	r, err := NewRunner(RunnerConfig{
		Universe:       feed.DefaultUniverse(),
		TradeInterval:  5 * time.Millisecond,
		MarketInterval: time.Hour,
		Seed:           7,
		EventSink:      rec.sink,
		SinkTarget:     nil, // 全局注册表为空 → 自动发现失败
		BindOnStart:    true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, r.Start(ctx))

	deadline := time.Now().Add(2 * time.Second)
	for rec.count("trade_generated") < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	assert.Equal(t, 1, rec.count("sink_bind_error"))
	assert.GreaterOrEqual(t, r.Trades.RowCount(), 2)
}

func TestRunnerSchedulerExposed(t *testing.T) {
	r, err := NewRunner(RunnerConfig{
		Universe:       feed.DefaultUniverse(),
		TradeInterval:  time.Second,
		MarketInterval: 2 * time.Second,
	})
	require.NoError(t, err)
	s := r.Scheduler()
	require.NotNil(t, s)
	assert.Equal(t, time.Second, s.Interval(TaskTrades))
	assert.Equal(t, 2*time.Second, s.Interval(TaskMarket))
}
