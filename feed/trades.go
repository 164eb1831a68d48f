package feed

import (
	"fmt"
	"math/rand"
)

const tradeIDPrefix = "TradeID_"

// TradesData 叶子生成器：每个 tick 合成一条随机成交，追加到内部日志并发射。
// Initialise 之前处于空闲态，不产生任何数据；Initialise 同步执行首个 tick。
type TradesData struct {
	provider[Trade]

	universe Universe
	rng      *rand.Rand
	log      []Trade
	seq      int
	running  bool
}

// NewTradesData 构建生成器。seed 固定时整条成交序列可复现。
func NewTradesData(u Universe, seed int64, es EventSink) *TradesData {
	u.applyDefaults()
	t := &TradesData{
		provider: newProvider[Trade]("trades", es),
		universe: u,
		rng:      rand.New(rand.NewSource(seed)),
	}
	t.rows = func() int { return len(t.log) }
	t.cols = func() int { return 7 }
	t.fields = func(tr Trade) map[string]float64 {
		return map[string]float64{
			"quantity": tr.Quantity,
			"price":    tr.Price,
		}
	}
	t.keys = func() []string { return []string{"quantity", "price"} }
	return t
}

// Initialise 进入 running 态并同步生成第一条成交。重复调用为 no-op。
func (t *TradesData) Initialise() {
	if t.running {
		return
	}
	t.running = true
	t.Tick()
}

// Tick 生成一条随机成交。未 Initialise 时不生成。
func (t *TradesData) Tick() {
	if !t.running {
		return
	}
	tr := t.generate()
	t.log = append(t.log, tr)
	t.logEvent("trade_generated", map[string]interface{}{
		"id":         tr.ID,
		"trader":     tr.Trader,
		"instrument": tr.Instrument,
		"quantity":   tr.Quantity,
		"price":      tr.Price,
		"direction":  string(tr.Direction),
		"book":       tr.Book,
	})
	t.emit(tr)
}

func (t *TradesData) generate() Trade {
	t.seq++
	dir := DirectionBuy
	if t.rng.Intn(2) == 1 {
		dir = DirectionSell
	}
	return Trade{
		// 序号从 1 开始（首条为 TradeID_0001）。
		ID:         fmt.Sprintf("%s%04d", tradeIDPrefix, t.seq),
		Trader:     pick(t.rng, t.universe.Traders),
		Instrument: pick(t.rng, t.universe.Instruments),
		Quantity:   t.rng.Float64() * t.universe.MaxQuantity,
		Price:      t.rng.Float64() * t.universe.MaxPrice,
		Direction:  dir,
		Book:       pick(t.rng, t.universe.Books),
		Ts:         t.now(),
	}
}

// Running 报告生成器是否已启动。
func (t *TradesData) Running() bool {
	return t.running
}

// Log 返回成交日志副本。日志无界，有界内存需求由调用方自行截断。
func (t *TradesData) Log() []Trade {
	out := make([]Trade, len(t.log))
	copy(out, t.log)
	return out
}

func pick(rng *rand.Rand, xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	return xs[rng.Intn(len(xs))]
}
