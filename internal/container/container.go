package container

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"market-sim-go/config"
	"market-sim-go/feed"
	"market-sim-go/infrastructure/logger"
	"market-sim-go/metrics"
	"market-sim-go/monitor/logschema"
	"market-sim-go/sim"
	"market-sim-go/sink"
)

// Container 依赖注入容器，管理所有组件的生命周期
type Container struct {
	// 配置
	cfg *config.AppConfig

	// 基础设施
	logger *logger.Logger

	// 外部消费端
	table      *sink.Table
	hub        *sink.Hub
	registered sink.Sink

	// 核心仿真
	runner *sim.Runner

	// 生命周期管理
	lifecycle *LifecycleManager
}

// New 创建新的Container实例
func New(configPath string) (*Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	return &Container{
		cfg:       &cfg,
		lifecycle: NewLifecycleManager(),
	}, nil
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}

	if err := c.buildSinks(); err != nil {
		return fmt.Errorf("build sinks failed: %w", err)
	}

	if err := c.buildCore(); err != nil {
		return fmt.Errorf("build core failed: %w", err)
	}

	c.registerLifecycleComponents()
	c.logger.Info("container built successfully")
	return nil
}

func (c *Container) buildInfrastructure() error {
	var err error
	c.logger, err = logger.New(c.cfg.Logger)
	if err != nil {
		return fmt.Errorf("create logger failed: %w", err)
	}

	c.logger.Info("infrastructure built")
	return nil
}

// buildSinks 装配外部消费端并注册到全局发现表。
// 注册有且只有一个候选：需要同时喂内存表和 ws 推送时，注册一个 Tee。
func (c *Container) buildSinks() error {
	c.table = sink.NewTable(c.cfg.Sink.Retention, c.cfg.Sink.Keys...)

	if c.cfg.Sink.WSAddr != "" {
		c.hub = sink.NewHub(c.cfg.Sink.Keys...)
		c.hub.SetEventSink(c.logger.EventSink())
		c.registered = sink.NewTee(c.table, c.hub)
	} else {
		c.registered = c.table
	}
	sink.Register(c.registered)

	c.logger.Info("sinks built")
	return nil
}

func (c *Container) buildCore() error {
	seed := c.cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	runner, err := sim.NewRunner(sim.RunnerConfig{
		Universe: feed.Universe{
			Instruments: c.cfg.Universe.Instruments,
			Traders:     c.cfg.Universe.Traders,
			Books:       c.cfg.Universe.Books,
			MaxQuantity: c.cfg.Universe.MaxQuantity,
			MaxPrice:    c.cfg.Universe.MaxPrice,
			PriceDelta:  c.cfg.Universe.PriceDelta,
		},
		TradeInterval:  c.cfg.Sim.TradeInterval(),
		MarketInterval: c.cfg.Sim.MarketInterval(),
		Seed:           seed,
		EventSink:      c.eventSink(),
		BindOnStart:    true, // SinkTarget 留空，走全局自动发现
	})
	if err != nil {
		return fmt.Errorf("build runner failed: %w", err)
	}
	c.runner = runner

	// 指标作为额外订阅者挂到各节点信号上，feed 包自身不依赖 prometheus。
	runner.Trades.Changed().Connect("metrics", func(feed.Trade) {
		metrics.TradesGenerated.Inc()
	})
	runner.Positions.Changed().Connect("metrics", metrics.UpdatePositions)
	runner.Market.Changed().Connect("metrics", metrics.UpdateMarket)
	runner.Pnl.Changed().Connect("metrics", metrics.UpdatePnl)
	runner.Scheduler().OnCascade = metrics.ObserveCascade

	c.logger.Info("core built")
	return nil
}

// eventSink 组合日志钩子：先按 logschema 校验字段，再写结构化日志。
func (c *Container) eventSink() feed.EventSink {
	return func(event string, fields map[string]interface{}) {
		if err := logschema.Validate(event, fields); err != nil {
			c.logger.LogError(err, map[string]interface{}{"event": event})
		}
		if event == "sink_bind_error" {
			metrics.SinkBindErrors.Inc()
		}
		c.logger.LogEvent(event, fields)
	}
}

func (c *Container) registerLifecycleComponents() {
	c.lifecycle.Register(&runnerComponent{runner: c.runner})

	if c.cfg.MetricsAddr != "" {
		c.lifecycle.Register(&httpServerComponent{
			name:    "metrics_server",
			handler: promhttp.Handler(),
			addr:    c.cfg.MetricsAddr,
			logger:  c.logger,
		})
	}
	if c.hub != nil {
		c.lifecycle.Register(&httpServerComponent{
			name:    "ws_server",
			handler: c.hub,
			addr:    c.cfg.Sink.WSAddr,
			logger:  c.logger,
		})
	}
}

// Start 启动所有组件
func (c *Container) Start(ctx context.Context) error {
	c.logger.Info("starting container...")

	if err := c.lifecycle.StartAll(ctx); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	c.logger.Info("container started")
	return nil
}

// Stop 逆序停止组件并清理注册表
func (c *Container) Stop() error {
	c.logger.Info("stopping container...")

	err := c.lifecycle.StopAll()
	if err != nil {
		c.logger.LogError(err, map[string]interface{}{"action": "stop"})
	}

	if c.hub != nil {
		c.hub.Close()
	}
	if c.registered != nil {
		sink.Deregister(c.registered)
	}

	if c.logger != nil {
		c.logger.Close()
	}
	return err
}

// HealthCheck 检查组件健康状态
func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}

// Runner 暴露仿真 runner（配置热更新等场景使用）
func (c *Container) Runner() *sim.Runner {
	return c.runner
}

// Logger 暴露结构化日志器
func (c *Container) Logger() *logger.Logger {
	return c.logger
}

// Table 暴露内存表 sink，便于调试接口读取序列
func (c *Container) Table() *sink.Table {
	return c.table
}

// Config 返回已加载配置
func (c *Container) Config() config.AppConfig {
	return *c.cfg
}

// runnerComponent 仿真调度组件
type runnerComponent struct {
	runner  *sim.Runner
	started bool
	mu      sync.Mutex
}

func (r *runnerComponent) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	if err := r.runner.Start(ctx); err != nil {
		return err
	}
	r.started = true
	return nil
}

func (r *runnerComponent) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	r.runner.Stop()
	r.started = false
	return nil
}

func (r *runnerComponent) Health() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return fmt.Errorf("runner not started")
	}
	return nil
}
