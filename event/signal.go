// Package event provides the synchronous signal primitive the feed graph
// is wired with.
package event

// Handler 订阅回调，接收一次发射的载荷。
type Handler[T any] func(v T)

// Signal 单线程同步事件信号：按连接顺序逐个调用订阅者。
// 每个节点实例持有自己的 Signal，订阅绑定到具体实例，不存在跨实例泄漏。
// 内部不加锁，只允许在驱动仿真的调度线程上调用（见 sim.Scheduler）。
type Signal[T any] struct {
	keys     []string
	handlers map[string]Handler[T]
}

func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{handlers: make(map[string]Handler[T])}
}

// Connect 以 key 注册回调。同一 key 重复注册不会造成重复调用：
// 回调被替换，保留首次连接时的顺序位置。
func (s *Signal[T]) Connect(key string, fn Handler[T]) {
	if fn == nil {
		return
	}
	if _, ok := s.handlers[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.handlers[key] = fn
}

// Disconnect 取消注册；key 不存在时为 no-op。
func (s *Signal[T]) Disconnect(key string) {
	if _, ok := s.handlers[key]; !ok {
		return
	}
	delete(s.handlers, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Connected 报告 key 是否已注册。
func (s *Signal[T]) Connected(key string) bool {
	_, ok := s.handlers[key]
	return ok
}

// Len 当前订阅者数量。
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

// Emit 同步调用所有当前订阅者，按连接顺序。
// 发射开始时对订阅列表做快照：回调中的 Connect/Disconnect
// 不影响本轮发射，只对下一轮生效。
func (s *Signal[T]) Emit(v T) {
	if len(s.keys) == 0 {
		return
	}
	snapshot := make([]Handler[T], 0, len(s.keys))
	for _, k := range s.keys {
		snapshot = append(snapshot, s.handlers[k])
	}
	for _, fn := range snapshot {
		fn(v)
	}
}
