// Package sink defines the narrow capability interface the feed graph uses
// to forward snapshots to an external consumer (plotting data source), plus
// a global registry supporting auto-discovery.
package sink

import (
	"errors"
	"fmt"
	"time"
)

// 绑定失败的两类配置错误。
var (
	ErrNoSink        = errors.New("sink: no sink registered")
	ErrAmbiguousSink = errors.New("sink: multiple sink candidates")
	ErrInvalidTarget = errors.New("sink: target is neither a sink nor a container")
)

// Sink 外部消费端句柄：按字段名追加带时间戳的快照值。
// 保留窗口（默认最近 100 条）由实现自行裁剪。
type Sink interface {
	Append(key string, value float64, ts time.Time)
	HasKey(key string) bool
}

// Container 持有若干子句柄的复合目标（例如一个图表布局持有多个数据源）。
// 显式声明能力，绑定边界做检查，不做鸭子类型猜测。
type Container interface {
	Sinks() []Sink
}

// Resetter 可清空指定字段历史的 sink；重绑定时由 provider 探测调用。
type Resetter interface {
	Reset(keys ...string)
}

// Resolve 将任意绑定目标解析为一个具体 Sink：
//   - nil        → 全局注册表自动发现（恰好注册了一个才成功）
//   - Sink       → 直接使用
//   - Container  → 展开子句柄，要求恰好解析出一个 Sink
//
// 其余情况返回 ErrInvalidTarget。解析失败不产生任何副作用。
func Resolve(target any) (Sink, error) {
	if target == nil {
		return Discover()
	}
	// Container 在前：嵌套容器为了进 Sinks() 切片也会实现 Sink。
	switch t := target.(type) {
	case Container:
		flat := flatten(t)
		switch len(flat) {
		case 0:
			return nil, fmt.Errorf("resolve container: %w", ErrNoSink)
		case 1:
			return flat[0], nil
		default:
			return nil, fmt.Errorf("resolve container: %w", ErrAmbiguousSink)
		}
	case Sink:
		return t, nil
	default:
		return nil, fmt.Errorf("%w (got %T)", ErrInvalidTarget, target)
	}
}

func flatten(c Container) []Sink {
	var out []Sink
	for _, s := range c.Sinks() {
		if nested, ok := s.(Container); ok {
			out = append(out, flatten(nested)...)
			continue
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
