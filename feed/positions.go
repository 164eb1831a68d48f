package feed

import "maps"

// PositionsData 订阅成交流，维护品种净持仓。
// 是成交序列前缀的纯函数：从空状态重放同一序列总得到同一张持仓表。
type PositionsData struct {
	provider[PositionMap]

	positions PositionMap
}

// NewPositionsData 构建并在构造时订阅上游成交信号。
func NewPositionsData(src *TradesData, es EventSink) *PositionsData {
	d := &PositionsData{
		provider:  newProvider[PositionMap]("positions", es),
		positions: make(PositionMap),
	}
	d.rows = func() int { return len(d.positions) }
	d.cols = func() int { return 2 }
	d.fields = func(pm PositionMap) map[string]float64 { return pm }
	d.keys = d.instruments
	if src != nil {
		src.Changed().Connect(d.name, d.ApplyTrade)
	}
	return d
}

// ApplyTrade 按成交方向累加净持仓并发射整张表的副本。
// Buy 加、Sell 减；未知方向按畸形载荷处理，跳过该条（尽力而为，不报错）。
func (d *PositionsData) ApplyTrade(tr Trade) {
	switch tr.Direction {
	case DirectionBuy:
		d.positions[tr.Instrument] += tr.Quantity
	case DirectionSell:
		d.positions[tr.Instrument] -= tr.Quantity
	default:
		return
	}
	d.logEvent("position_update", map[string]interface{}{
		"instrument": tr.Instrument,
		"net":        d.positions[tr.Instrument],
		"trade_id":   tr.ID,
	})
	d.emit(maps.Clone(d.positions))
}

// Positions 返回当前持仓表副本。
func (d *PositionsData) Positions() PositionMap {
	return maps.Clone(d.positions)
}

func (d *PositionsData) instruments() []string {
	out := make([]string, 0, len(d.positions))
	for k := range d.positions {
		out = append(out, k)
	}
	return out
}
