package sink

import "time"

// Tee 把快照同时转发给多个下游 sink 的组合器。
// 全局注册表要求恰好一个候选，需要"内存表 + ws 推送"并存时注册一个 Tee。
type Tee struct {
	targets []Sink
}

func NewTee(targets ...Sink) *Tee {
	out := make([]Sink, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &Tee{targets: out}
}

// HasKey 任一下游认识该字段即认识。
func (t *Tee) HasKey(key string) bool {
	for _, s := range t.targets {
		if s.HasKey(key) {
			return true
		}
	}
	return false
}

// Append 逐个转发；不认识该字段的下游由其自身丢弃。
func (t *Tee) Append(key string, value float64, ts time.Time) {
	for _, s := range t.targets {
		s.Append(key, value, ts)
	}
}

// Reset 转发给实现了 Resetter 的下游。
func (t *Tee) Reset(keys ...string) {
	for _, s := range t.targets {
		if r, ok := s.(Resetter); ok {
			r.Reset(keys...)
		}
	}
}
