package feed

import "maps"

// PnlData 订阅持仓与行情两路信号，任一更新都触发整表重算：
// 对同时出现在两张表里的品种计算 数量 × 价格。
// 行情表缺失的品种静默跳过；两路上游都未发射过时结果为空表，不会崩溃。
type PnlData struct {
	provider[PnlList]

	positions PositionMap
	market    MarketMap
	current   PnlList
}

// NewPnlData 构建并在构造时订阅两路上游信号。
func NewPnlData(pos *PositionsData, mkt *MarketData, es EventSink) *PnlData {
	p := &PnlData{
		provider:  newProvider[PnlList]("pnl", es),
		positions: make(PositionMap),
		market:    make(MarketMap),
	}
	p.rows = func() int { return len(p.current) }
	p.cols = func() int { return 2 }
	p.fields = func(l PnlList) map[string]float64 {
		out := make(map[string]float64, len(l))
		for _, e := range l {
			out[e.Instrument] = e.Value
		}
		return out
	}
	p.keys = func() []string {
		out := make([]string, 0, len(p.current))
		for _, e := range p.current {
			out = append(out, e.Instrument)
		}
		return out
	}
	if pos != nil {
		pos.Changed().Connect(p.name, p.OnPositions)
	}
	if mkt != nil {
		mkt.Changed().Connect(p.name, p.OnMarket)
	}
	return p
}

// OnPositions 存下最新持仓快照并重算。
func (p *PnlData) OnPositions(pm PositionMap) {
	p.positions = maps.Clone(pm)
	p.recompute()
}

// OnMarket 存下最新行情快照并重算。
func (p *PnlData) OnMarket(mm MarketMap) {
	p.market = maps.Clone(mm)
	p.recompute()
}

// recompute 全量重建盈亏表（不做增量补丁），替换旧表并发射。
// 结果按品种名排序，同样的输入总产生同样的输出。
func (p *PnlData) recompute() {
	list := make(PnlList, 0, len(p.positions))
	for inst, qty := range p.positions {
		price, ok := p.market[inst]
		if !ok {
			continue
		}
		list = append(list, PnlEntry{Instrument: inst, Value: qty * price})
	}
	list.sort()
	p.current = list
	p.logEvent("pnl_update", map[string]interface{}{
		"instruments": len(list),
	})
	emitted := make(PnlList, len(list))
	copy(emitted, list)
	p.emit(emitted)
}

// Current 返回最近一次重算结果的副本。
func (p *PnlData) Current() PnlList {
	out := make(PnlList, len(p.current))
	copy(out, p.current)
	return out
}
