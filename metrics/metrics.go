// Package metrics provides Prometheus metrics for the simulation feed
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"market-sim-go/feed"
)

var (
	// TradesGenerated 已生成的成交条数
	TradesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_trades_total",
		Help: "已生成的合成成交数量",
	})

	// Cascades 各来源触发的 cascade 次数
	Cascades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_cascades_total",
		Help: "各定时源触发的 cascade 次数",
	}, []string{"source"})

	// CascadeDuration cascade 全链路耗时
	CascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_cascade_duration_seconds",
		Help:    "单次 cascade 从生成到静止的耗时",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// Position 各品种净持仓
	Position = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_position",
		Help: "品种净持仓",
	}, []string{"instrument"})

	// Price 各品种当前价格
	Price = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_price",
		Help: "品种当前价格（合成随机游走）",
	}, []string{"instrument"})

	// Pnl 各品种盯市盈亏
	Pnl = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_pnl",
		Help: "品种盯市盈亏",
	}, []string{"instrument"})

	// SinkBindErrors sink 绑定失败次数
	SinkBindErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_sink_bind_errors_total",
		Help: "sink 绑定失败次数",
	})
)

// UpdatePositions 把整张持仓表同步到 gauge。
func UpdatePositions(pm feed.PositionMap) {
	for inst, qty := range pm {
		Position.WithLabelValues(inst).Set(qty)
	}
}

// UpdateMarket 把整张价格表同步到 gauge。
func UpdateMarket(mm feed.MarketMap) {
	for inst, price := range mm {
		Price.WithLabelValues(inst).Set(price)
	}
}

// UpdatePnl 把盈亏表同步到 gauge。
func UpdatePnl(list feed.PnlList) {
	for _, e := range list {
		Pnl.WithLabelValues(e.Instrument).Set(e.Value)
	}
}

// ObserveCascade 记录一次 cascade 的来源与耗时。
func ObserveCascade(source string, took time.Duration) {
	Cascades.WithLabelValues(source).Inc()
	CascadeDuration.WithLabelValues(source).Observe(took.Seconds())
}
