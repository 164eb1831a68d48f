package sink

import (
	"sync"
	"time"
)

// DefaultRetention 每个字段保留的最近快照条数。
const DefaultRetention = 100

// Point 一条带时间戳的快照值。
type Point struct {
	Ts    time.Time
	Value float64
}

// Table 内存表格 sink：每个字段维护一条定长时间序列，
// 是图表数据源的进程内替身，也是单测里最常用的观察端。
type Table struct {
	mu        sync.RWMutex
	retention int
	schema    map[string]struct{}
	series    map[string][]Point
}

// NewTable 以固定字段集构建。retention <= 0 时取 DefaultRetention。
func NewTable(retention int, keys ...string) *Table {
	if retention <= 0 {
		retention = DefaultRetention
	}
	schema := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		schema[k] = struct{}{}
	}
	return &Table{
		retention: retention,
		schema:    schema,
		series:    make(map[string][]Point, len(keys)),
	}
}

// HasKey 报告字段是否属于表格 schema。
func (t *Table) HasKey(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.schema[key]
	return ok
}

// Append 追加一条快照；schema 外的字段直接丢弃。
// 超出保留窗口时裁掉最旧的记录。
func (t *Table) Append(key string, value float64, ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.schema[key]; !ok {
		return
	}
	s := append(t.series[key], Point{Ts: ts, Value: value})
	if len(s) > t.retention {
		s = s[len(s)-t.retention:]
	}
	t.series[key] = s
}

// Series 返回字段当前序列的副本。
func (t *Table) Series(key string) []Point {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.series[key]
	if len(s) == 0 {
		return nil
	}
	out := make([]Point, len(s))
	copy(out, s)
	return out
}

// Len 字段当前缓存条数。
func (t *Table) Len(key string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.series[key])
}

// Reset 清空指定字段的历史；不带参数时清空全部。
func (t *Table) Reset(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(keys) == 0 {
		t.series = make(map[string][]Point, len(t.schema))
		return
	}
	for _, k := range keys {
		delete(t.series, k)
	}
}

// Keys 返回 schema 字段名（无序）。
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.schema))
	for k := range t.schema {
		out = append(out, k)
	}
	return out
}
