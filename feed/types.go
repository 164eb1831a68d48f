// Package feed implements the reactive dataflow graph:
// trade generation → position aggregation → market prices → P&L.
// Each node owns its aggregate exclusively and publishes change events
// through a per-instance event.Signal; cross-node influence only flows
// through emitted payloads.
package feed

import (
	"sort"
	"time"
)

// Direction 成交方向。
type Direction string

const (
	DirectionBuy  Direction = "Buy"
	DirectionSell Direction = "Sell"
)

// Trade 一条合成成交记录，生成后不可变。
type Trade struct {
	ID         string
	Trader     string
	Instrument string
	Quantity   float64
	Price      float64
	Direction  Direction
	Book       string
	Ts         time.Time
}

// PositionMap 品种 → 净持仓（带符号）。条目首次出现时按 0 懒初始化，
// 之后永不删除。
type PositionMap map[string]float64

// MarketMap 品种 → 价格水平。合成随机游走，允许为负。
type MarketMap map[string]float64

// PnlEntry 单个品种的逐日盯市盈亏。
type PnlEntry struct {
	Instrument string
	Value      float64
}

// PnlList 按品种名排序的盈亏序列，每次触发整体重算、整体替换。
type PnlList []PnlEntry

func (l PnlList) sort() {
	sort.Slice(l, func(i, j int) bool { return l[i].Instrument < l[j].Instrument })
}

// Universe 随机生成用的固定枚举与取值范围。
type Universe struct {
	Instruments []string
	Traders     []string
	Books       []string
	MaxQuantity float64 // quantity ∈ [0, MaxQuantity)
	MaxPrice    float64 // price ∈ [0, MaxPrice)
	PriceDelta  float64 // market tick delta ∈ [-PriceDelta, PriceDelta)
}

// DefaultUniverse 返回内置枚举。
func DefaultUniverse() Universe {
	return Universe{
		Instruments: []string{"MSFT", "IBM", "GOOG", "AAPL", "ORCL"},
		Traders:     []string{"Lee", "Vijay", "Sunil", "Maria", "Olga"},
		Books:       []string{"book1", "book2", "book3"},
		MaxQuantity: 100,
		MaxPrice:    10,
		PriceDelta:  5,
	}
}

func (u *Universe) applyDefaults() {
	if u.MaxQuantity <= 0 {
		u.MaxQuantity = 100
	}
	if u.MaxPrice <= 0 {
		u.MaxPrice = 10
	}
	if u.PriceDelta <= 0 {
		u.PriceDelta = 5
	}
}
