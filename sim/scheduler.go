// Package sim drives the feed graph: independent periodic sources feed a
// single-consumer job queue drained by one dispatch goroutine, so a tick's
// full cascade completes before the next tick's cascade starts.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type job struct {
	source string
	fn     func()
}

type periodic struct {
	name     string
	interval time.Duration
	fn       func()
	stop     chan struct{}
}

// Scheduler 任务调度器。所有节点状态变更都发生在它的分发协程上，
// 图本身因此不需要加锁；跨 cascade 的先后顺序由入队顺序决定。
type Scheduler struct {
	queue chan job

	mu      sync.Mutex
	tasks   map[string]*periodic
	order   []string
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// OnCascade 每个 cascade 完成后回调（来源名 + 耗时），用于指标。
	OnCascade func(source string, took time.Duration)
}

const defaultQueueSize = 128

func NewScheduler() *Scheduler {
	return &Scheduler{
		queue: make(chan job, defaultQueueSize),
		tasks: make(map[string]*periodic),
	}
}

// Add 注册一个周期任务。重名或已启动后注册返回错误。
func (s *Scheduler) Add(name string, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be > 0", name)
	}
	if fn == nil {
		return fmt.Errorf("task %s: fn is required", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already started")
	}
	if _, ok := s.tasks[name]; ok {
		return fmt.Errorf("task %s already registered", name)
	}
	s.tasks[name] = &periodic{name: name, interval: interval, fn: fn}
	s.order = append(s.order, name)
	return nil
}

// Post 向队列投递一次性任务，排在已入队的 tick 之后按序执行。
func (s *Scheduler) Post(source string, fn func()) {
	if fn == nil {
		return
	}
	s.queue <- job{source: source, fn: fn}
}

// SetInterval 热更新周期任务的间隔；运行中会重启对应的 ticker。
func (s *Scheduler) SetInterval(name string, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be > 0", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	if !ok {
		return fmt.Errorf("task %s not registered", name)
	}
	if t.interval == interval {
		return nil
	}
	t.interval = interval
	if s.running {
		close(t.stop)
		t.stop = make(chan struct{})
		s.wg.Add(1)
		go s.runTicker(t, t.stop, interval)
	}
	return nil
}

// Interval 返回任务当前间隔；未注册返回 0。
func (s *Scheduler) Interval(name string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		return t.interval
	}
	return 0
}

// Start 启动分发协程与全部 ticker。重复启动返回错误。
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("scheduler already started")
	}
	s.running = true
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.dispatch()
	for _, name := range s.order {
		t := s.tasks[name]
		t.stop = make(chan struct{})
		s.wg.Add(1)
		go s.runTicker(t, t.stop, t.interval)
	}
	return nil
}

// Stop 取消上下文并等待所有协程退出。in-flight 的 cascade 总是跑完。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// dispatch 唯一的消费协程：逐个执行队列里的任务。
func (s *Scheduler) dispatch() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case j := <-s.queue:
			start := time.Now()
			j.fn()
			if s.OnCascade != nil {
				s.OnCascade(j.source, time.Since(start))
			}
		}
	}
}

// interval 作为参数传入：t.interval 可能被后续 SetInterval 再次改写，
// 本协程不回读共享字段。
func (s *Scheduler) runTicker(t *periodic, stop chan struct{}, interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			// 队列满时在此阻塞：宁可延迟下一个 tick，也不并发跑 cascade。
			select {
			case s.queue <- job{source: t.name, fn: t.fn}:
			case <-s.ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}
}
