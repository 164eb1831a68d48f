package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-sim-go/sink"
)

func TestBindSinkForwardsSchemaIntersection(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	// schema 只认识 price，quantity 被过滤掉
	tbl := sink.NewTable(10, "price", "volume")
	require.NoError(t, g.BindSink(tbl))

	g.Initialise()
	g.Tick()

	require.Equal(t, 2, tbl.Len("price"))
	assert.Zero(t, tbl.Len("quantity"))
	assert.Zero(t, tbl.Len("volume"))

	series := tbl.Series("price")
	assert.InDelta(t, g.Log()[0].Price, series[0].Value, 1e-9)
	assert.False(t, series[0].Ts.IsZero(), "forwarded records carry timestamps")
}

func TestBindSinkNilDiscoversUniqueSink(t *testing.T) {
	tbl := sink.NewTable(10, "quantity", "price")
	sink.Register(tbl)
	defer sink.Deregister(tbl)

	g := NewTradesData(DefaultUniverse(), 1, nil)
	require.NoError(t, g.BindSink(nil))

	g.Initialise()
	assert.Equal(t, 1, tbl.Len("quantity"))
}

func TestBindSinkAmbiguousDiscovery(t *testing.T) {
	a := sink.NewTable(10, "quantity")
	b := sink.NewTable(10, "quantity")
	sink.Register(a)
	sink.Register(b)
	defer sink.Deregister(a)
	defer sink.Deregister(b)

	g := NewTradesData(DefaultUniverse(), 1, nil)
	err := g.BindSink(nil)
	require.ErrorIs(t, err, sink.ErrAmbiguousSink)

	// 绑定失败无任何副作用
	g.Initialise()
	assert.Zero(t, a.Len("quantity"))
	assert.Zero(t, b.Len("quantity"))
}

func TestBindSinkNoCandidate(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	require.ErrorIs(t, g.BindSink(nil), sink.ErrNoSink)
}

func TestBindSinkInvalidTarget(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	require.ErrorIs(t, g.BindSink(42), sink.ErrInvalidTarget)
}

func TestBindSinkFailureKeepsPriorBinding(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	tbl := sink.NewTable(10, "quantity", "price")
	require.NoError(t, g.BindSink(tbl))
	require.Error(t, g.BindSink("bogus"))

	g.Initialise()
	assert.Equal(t, 1, tbl.Len("quantity"), "prior binding must stay effective")
}

// 首次绑定不清历史：sink 里已有的数据只在重绑定时才被清掉。
func TestFirstBindKeepsExistingHistory(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	tbl := sink.NewTable(10, "quantity", "price")
	tbl.Append("quantity", 7, time.Now())

	require.NoError(t, g.BindSink(tbl))
	assert.Equal(t, 1, tbl.Len("quantity"), "first bind must not reset sink history")

	g.Initialise()
	assert.Equal(t, 2, tbl.Len("quantity"))
}

func TestRebindResetsKnownKeys(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	tbl := sink.NewTable(10, "quantity", "price", "other")
	tbl.Append("other", 1, time.Now())

	require.NoError(t, g.BindSink(tbl))
	g.Initialise()
	require.Equal(t, 1, tbl.Len("quantity"))

	// 重绑定同一 sink：本节点已知字段的历史被清空，无关字段保留
	require.NoError(t, g.BindSink(tbl))
	assert.Zero(t, tbl.Len("quantity"))
	assert.Zero(t, tbl.Len("price"))
	assert.Equal(t, 1, tbl.Len("other"))
}

func TestUnbindSinkStopsForwarding(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	tbl := sink.NewTable(10, "quantity", "price")
	require.NoError(t, g.BindSink(tbl))
	g.Initialise()
	g.UnbindSink()
	g.Tick()
	assert.Equal(t, 1, tbl.Len("quantity"))
}

func TestBindSinkContainer(t *testing.T) {
	tbl := sink.NewTable(10, "quantity", "price")
	g := NewTradesData(DefaultUniverse(), 1, nil)
	require.NoError(t, g.BindSink(stubContainer{sinks: []sink.Sink{tbl}}))

	g.Initialise()
	assert.Equal(t, 1, tbl.Len("quantity"))
}

func TestBindSinkContainerAmbiguous(t *testing.T) {
	g := NewTradesData(DefaultUniverse(), 1, nil)
	c := stubContainer{sinks: []sink.Sink{
		sink.NewTable(10, "quantity"),
		sink.NewTable(10, "quantity"),
	}}
	require.ErrorIs(t, g.BindSink(c), sink.ErrAmbiguousSink)
}

func TestMapShapedNodeForwardsInstruments(t *testing.T) {
	m := NewMarketData(DefaultUniverse(), 1, nil)
	tbl := sink.NewTable(10, "MSFT", "IBM")
	require.NoError(t, m.BindSink(tbl))

	m.Perturb("MSFT", 3)
	m.Perturb("GOOG", 4) // schema 外，丢弃
	m.Perturb("IBM", 5)

	// 载荷是整张表，每次发射都会重转发 schema 内的已知字段
	assert.Equal(t, 3, tbl.Len("MSFT"))
	assert.Equal(t, 1, tbl.Len("IBM"))
}

type stubContainer struct {
	sinks []sink.Sink
}

func (s stubContainer) Sinks() []sink.Sink { return s.sinks }
