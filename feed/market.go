package feed

import (
	"maps"
	"math/rand"
)

// MarketData 叶子生成器：每个 tick 随机扰动一个品种的价格并发射整张价格表。
// 合成随机游走，价格允许为负。
type MarketData struct {
	provider[MarketMap]

	universe Universe
	rng      *rand.Rand
	prices   MarketMap
}

// NewMarketData 构建价格生成器。
func NewMarketData(u Universe, seed int64, es EventSink) *MarketData {
	u.applyDefaults()
	m := &MarketData{
		provider: newProvider[MarketMap]("market", es),
		universe: u,
		rng:      rand.New(rand.NewSource(seed)),
	}
	m.prices = make(MarketMap)
	m.rows = func() int { return len(m.prices) }
	m.cols = func() int { return 2 }
	m.fields = func(mm MarketMap) map[string]float64 { return mm }
	m.keys = m.instruments
	return m
}

// Tick 均匀抽取一个品种，叠加 [-PriceDelta, PriceDelta) 的随机增量。
func (m *MarketData) Tick() {
	inst := pick(m.rng, m.universe.Instruments)
	if inst == "" {
		return
	}
	delta := (m.rng.Float64()*2 - 1) * m.universe.PriceDelta
	m.Perturb(inst, delta)
}

// Perturb 对品种价格叠加 delta（未见过的品种按 0 懒初始化）并发射副本。
func (m *MarketData) Perturb(instrument string, delta float64) {
	m.prices[instrument] += delta
	m.logEvent("market_update", map[string]interface{}{
		"instrument": instrument,
		"delta":      delta,
		"price":      m.prices[instrument],
	})
	m.emit(maps.Clone(m.prices))
}

// Prices 返回当前价格表副本。
func (m *MarketData) Prices() MarketMap {
	return maps.Clone(m.prices)
}

func (m *MarketData) instruments() []string {
	out := make([]string, 0, len(m.prices))
	for k := range m.prices {
		out = append(out, k)
	}
	return out
}
