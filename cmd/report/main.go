package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"market-sim-go/feed"
)

// 一个无定时器的本地模拟：固定种子下同步驱动两路生成器若干 tick，
// 打印最终持仓与盈亏表。同样的参数总是得到同样的输出。
func main() {
	seed := flag.Int64("seed", 1, "随机种子")
	trades := flag.Int("trades", 20, "生成的成交条数")
	marketTicks := flag.Int("marketTicks", 20, "行情扰动次数")
	flag.Parse()

	u := feed.DefaultUniverse()
	gen := feed.NewTradesData(u, *seed, nil)
	positions := feed.NewPositionsData(gen, nil)
	market := feed.NewMarketData(u, *seed+1, nil)
	pnl := feed.NewPnlData(positions, market, nil)

	gen.Initialise()
	for i := 1; i < *trades; i++ {
		gen.Tick()
	}
	for i := 0; i < *marketTicks; i++ {
		market.Tick()
	}

	fmt.Printf("trades=%d marketTicks=%d seed=%d\n\n", gen.RowCount(), *marketTicks, *seed)
	printPositions(positions.Positions(), market.Prices())
	fmt.Println()
	printPnl(pnl.Current())
}

func printPositions(pm feed.PositionMap, mm feed.MarketMap) {
	insts := make([]string, 0, len(pm))
	for k := range pm {
		insts = append(insts, k)
	}
	sort.Strings(insts)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Instrument", "Net Position", "Price")
	for _, inst := range insts {
		price := "-"
		if p, ok := mm[inst]; ok {
			price = fmt.Sprintf("%.2f", p)
		}
		table.Append(inst, fmt.Sprintf("%.2f", pm[inst]), price)
	}
	table.Render()
}

func printPnl(list feed.PnlList) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Instrument", "PnL")
	for _, e := range list {
		table.Append(e.Instrument, fmt.Sprintf("%.2f", e.Value))
	}
	table.Render()
}
