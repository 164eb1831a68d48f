package sink

import (
	"fmt"
	"sync"
)

// Registry 进程内 sink 注册表。注册通常发生在启动装配阶段，
// 发现则可能在调度线程上触发，因此这里加锁。
type Registry struct {
	mu    sync.Mutex
	sinks []Sink
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register 注册一个候选 sink；重复注册同一实例为 no-op。
func (r *Registry) Register(s Sink) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sinks {
		if existing == s {
			return
		}
	}
	r.sinks = append(r.sinks, s)
}

// Deregister 移除候选；不存在时为 no-op。
func (r *Registry) Deregister(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.sinks {
		if existing == s {
			r.sinks = append(r.sinks[:i], r.sinks[i+1:]...)
			return
		}
	}
}

// Discover 返回唯一注册的 sink；零个或多个候选都是配置错误。
func (r *Registry) Discover() (Sink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch len(r.sinks) {
	case 0:
		return nil, ErrNoSink
	case 1:
		return r.sinks[0], nil
	default:
		return nil, fmt.Errorf("%w (found %d)", ErrAmbiguousSink, len(r.sinks))
	}
}

// Len 当前候选数量。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sinks)
}

// 默认全局注册表，供 BindSink(nil) 自动发现使用。
var defaultRegistry = NewRegistry()

func Register(s Sink)         { defaultRegistry.Register(s) }
func Deregister(s Sink)       { defaultRegistry.Deregister(s) }
func Discover() (Sink, error) { return defaultRegistry.Discover() }
func RegisteredCount() int    { return defaultRegistry.Len() }
