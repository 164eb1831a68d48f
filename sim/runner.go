package sim

import (
	"context"
	"fmt"
	"time"

	"market-sim-go/feed"
)

// 调度任务名。
const (
	TaskTrades = "trades"
	TaskMarket = "market"
)

// RunnerConfig 装配参数。
type RunnerConfig struct {
	Universe       feed.Universe
	TradeInterval  time.Duration
	MarketInterval time.Duration
	Seed           int64
	EventSink      feed.EventSink
	// SinkTarget 传给成交流的 BindSink；nil 表示全局自动发现。
	SinkTarget any
	// BindOnStart 启动时是否执行默认 sink 绑定。
	BindOnStart bool
}

// Runner 按依赖顺序构建四个节点并接上调度器：
// trades → positions → market → pnl。
type Runner struct {
	Trades    *feed.TradesData
	Positions *feed.PositionsData
	Market    *feed.MarketData
	Pnl       *feed.PnlData

	sched *Scheduler
	cfg   RunnerConfig
}

// NewRunner 构建节点图与周期任务（不启动）。
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.TradeInterval <= 0 {
		return nil, fmt.Errorf("trade interval must be > 0")
	}
	if cfg.MarketInterval <= 0 {
		return nil, fmt.Errorf("market interval must be > 0")
	}
	trades := feed.NewTradesData(cfg.Universe, cfg.Seed, cfg.EventSink)
	positions := feed.NewPositionsData(trades, cfg.EventSink)
	market := feed.NewMarketData(cfg.Universe, cfg.Seed+1, cfg.EventSink)
	pnl := feed.NewPnlData(positions, market, cfg.EventSink)

	sched := NewScheduler()
	if err := sched.Add(TaskTrades, cfg.TradeInterval, trades.Tick); err != nil {
		return nil, err
	}
	if err := sched.Add(TaskMarket, cfg.MarketInterval, market.Tick); err != nil {
		return nil, err
	}

	return &Runner{
		Trades:    trades,
		Positions: positions,
		Market:    market,
		Pnl:       pnl,
		sched:     sched,
		cfg:       cfg,
	}, nil
}

// Scheduler 暴露调度器，供热更新与指标挂钩。
func (r *Runner) Scheduler() *Scheduler {
	return r.sched
}

// Start 启动仿真：先在分发线程上执行启动 kick
// （默认 sink 绑定 + 成交生成器的首个同步 tick），随后两路 ticker 开始驱动。
// sink 绑定失败记日志但不致命：这是配置错误，feed 本身照常运行。
func (r *Runner) Start(ctx context.Context) error {
	r.sched.Post("startup", func() {
		if r.cfg.BindOnStart {
			if err := r.Trades.BindSink(r.cfg.SinkTarget); err != nil && r.cfg.EventSink != nil {
				r.cfg.EventSink("sink_bind_error", map[string]interface{}{
					"node":  r.Trades.Name(),
					"error": err.Error(),
				})
			}
		}
		r.Trades.Initialise()
	})
	return r.sched.Start(ctx)
}

// Stop 停止调度器；正在执行的 cascade 跑完后才返回。
func (r *Runner) Stop() {
	r.sched.Stop()
}
