package feed

import (
	"fmt"
	"time"

	"market-sim-go/event"
	"market-sim-go/sink"
)

// EventSink 结构化日志钩子，由装配方接到 zap（见 internal/container）。
type EventSink func(event string, fields map[string]interface{})

// provider 节点公共骨架：变更信号、形状查询、sink 绑定与转发。
// 组合使用（各节点内嵌一个 provider），节点自身的行为是纯粹的
// (当前状态, 上游事件) → 新状态 更新函数，这里不做任何虚分派。
type provider[T any] struct {
	name    string
	changed *event.Signal[T]

	rows   func() int
	cols   func() int
	fields func(T) map[string]float64 // payload → 数值记录，供 sink 转发
	keys   func() []string            // 本节点已知字段，重绑定时用于清空历史

	bound     sink.Sink
	eventSink EventSink
	now       func() time.Time
}

func newProvider[T any](name string, es EventSink) provider[T] {
	return provider[T]{
		name:      name,
		changed:   event.NewSignal[T](),
		eventSink: es,
		now:       time.Now,
	}
}

// Name 节点名，也是下游订阅时的默认 key。
func (p *provider[T]) Name() string {
	return p.name
}

// Changed 节点的变更信号；聚合状态每次变化后在其上发射。
func (p *provider[T]) Changed() *event.Signal[T] {
	return p.changed
}

// RowCount 聚合状态的记录条数（语义随子类型而定）。
func (p *provider[T]) RowCount() int {
	if p.rows == nil {
		return 0
	}
	return p.rows()
}

// ColumnCount 首条记录的宽度；只有行形状的叶子节点真正使用。
func (p *provider[T]) ColumnCount() int {
	if p.cols == nil {
		return 0
	}
	return p.cols()
}

// BindSink 绑定外部 sink。target 为 nil 时走全局自动发现，
// 解析失败返回错误且保持旧绑定不变。重绑定替换旧绑定，
// 并清空新 sink 中本节点已知字段的历史；首次绑定不动已有数据。
func (p *provider[T]) BindSink(target any) error {
	s, err := sink.Resolve(target)
	if err != nil {
		return fmt.Errorf("%s: bind sink: %w", p.name, err)
	}
	if r, ok := s.(sink.Resetter); ok && p.bound != nil && p.keys != nil {
		if known := p.keys(); len(known) > 0 {
			r.Reset(known...)
		}
	}
	p.bound = s
	p.logEvent("sink_bound", map[string]interface{}{"node": p.name})
	return nil
}

// UnbindSink 解除绑定；未绑定时为 no-op。
func (p *provider[T]) UnbindSink() {
	p.bound = nil
}

// emit 广播载荷，随后向已绑定 sink 追加带时间戳的部分记录：
// 只转发同时出现在载荷和 sink schema 中的字段。
func (p *provider[T]) emit(v T) {
	p.changed.Emit(v)
	if p.bound == nil || p.fields == nil {
		return
	}
	ts := p.now()
	for k, val := range p.fields(v) {
		if p.bound.HasKey(k) {
			p.bound.Append(k, val, ts)
		}
	}
}

func (p *provider[T]) logEvent(event string, fields map[string]interface{}) {
	if p.eventSink != nil {
		p.eventSink(event, fields)
	}
}
