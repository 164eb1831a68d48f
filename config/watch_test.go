package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "sim:\n  tradeIntervalMs: 100\n  marketIntervalMs: 100\n")

	updates := make(chan AppConfig, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watcher{Path: path, Cooldown: time.Millisecond}.Start(ctx, func(cfg AppConfig) {
			updates <- cfg
		})
	}()

	// 给 watcher 一点时间把目录挂上
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path,
		[]byte("sim:\n  tradeIntervalMs: 777\n  marketIntervalMs: 100\n"), 0o644))

	select {
	case cfg := <-updates:
		assert.Equal(t, 777, cfg.Sim.TradeIntervalMs)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

// 写入坏配置：报错回调触发，旧配置继续生效，不产生 onUpdate。
func TestWatcherKeepsOldConfigOnBadReload(t *testing.T) {
	path := writeConfig(t, "sim:\n  tradeIntervalMs: 100\n  marketIntervalMs: 100\n")

	updates := make(chan AppConfig, 4)
	errs := make(chan error, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watcher{
			Path:     path,
			Cooldown: time.Millisecond,
			OnError:  func(err error) { errs <- err },
		}.Start(ctx, func(cfg AppConfig) { updates <- cfg })
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path,
		[]byte("sim:\n  tradeIntervalMs: -1\n  marketIntervalMs: 100\n"), 0o644))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error observed")
	}
	select {
	case cfg := <-updates:
		t.Fatalf("unexpected update with config %+v", cfg)
	default:
	}
}
