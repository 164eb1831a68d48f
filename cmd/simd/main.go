package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"market-sim-go/config"
	"market-sim-go/internal/container"
	"market-sim-go/sim"
)

// simd 是仿真行情源守护进程：构建节点图、启动两路定时源，
// 并暴露 /metrics 与可选的 ws 推送端口。
func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	watch := flag.Bool("watch", true, "监听配置文件，热更新 tick 周期")
	flag.Parse()

	c, err := container.New(*cfgPath)
	if err != nil {
		log.Fatalf("初始化容器失败: %v", err)
	}
	if err := c.Build(); err != nil {
		log.Fatalf("构建组件失败: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := c.Start(ctx); err != nil {
		log.Fatalf("启动失败: %v", err)
	}
	defer c.Stop()

	if *watch {
		go watchConfig(ctx, *cfgPath, c)
	}

	// systemd 集成：就绪通知 + watchdog 喂狗（非 systemd 环境下是 no-op）。
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	go watchdogLoop(ctx, c)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	c.Logger().Info("received signal, shutting down: " + sig.String())
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
}

// watchConfig 配置热更新：只有 tick 周期允许在线调整，
// 其余字段改动需要重启进程。
func watchConfig(ctx context.Context, path string, c *container.Container) {
	w := config.Watcher{
		Path: path,
		OnError: func(err error) {
			c.Logger().LogError(err, map[string]interface{}{"action": "config_reload"})
		},
	}
	err := w.Start(ctx, func(cfg config.AppConfig) {
		sched := c.Runner().Scheduler()
		if err := sched.SetInterval(sim.TaskTrades, cfg.Sim.TradeInterval()); err != nil {
			c.Logger().LogError(err, map[string]interface{}{"task": sim.TaskTrades})
		}
		if err := sched.SetInterval(sim.TaskMarket, cfg.Sim.MarketInterval()); err != nil {
			c.Logger().LogError(err, map[string]interface{}{"task": sim.TaskMarket})
		}
		c.Logger().LogEvent("config_reloaded", map[string]interface{}{
			"tradeIntervalMs":  cfg.Sim.TradeIntervalMs,
			"marketIntervalMs": cfg.Sim.MarketIntervalMs,
		})
	})
	if err != nil && ctx.Err() == nil {
		c.Logger().LogError(err, map[string]interface{}{"action": "config_watch"})
	}
}

func watchdogLoop(ctx context.Context, c *container.Container) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.HealthCheck() == nil {
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}
}
