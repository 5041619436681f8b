package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/smartdca/kraken-smart-dca/internal/backtest"
)

// PrintBacktestReport renders the replay summary and the per-purchase
// breakdown to stdout.
func PrintBacktestReport(res *backtest.Result, displayPair string) {
	printSummaryTable(res, displayPair)
	printPurchasesTable(res)
}

func printSummaryTable(res *backtest.Result, displayPair string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("BACKTEST RESULTS - %s", displayPair)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"💰 Total Invested", fmt.Sprintf("£%.2f", res.TotalInvested)},
		{"🪙 Asset Acquired", fmt.Sprintf("%.8f", res.TotalVolume)},
		{"💰 Final Value", fmt.Sprintf("£%.2f (@ £%.2f)", res.FinalValue, res.FinalPrice)},
		{"📈 Return", fmt.Sprintf("%.2f%%", res.ReturnPct)},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"📅 Baseline Invested", fmt.Sprintf("£%.2f", res.Baseline.TotalInvested)},
		{"📅 Baseline Return", fmt.Sprintf("%.2f%%", res.Baseline.ReturnPct)},
		{"🎯 Edge vs Baseline", fmt.Sprintf("%+.2f pp", res.EdgePct)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

func printPurchasesTable(res *backtest.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SIMULATED PURCHASES")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Window", "Filled", "Regime", "Rule", "Price", "Cost", "Volume", "Wait"})
	for _, p := range res.Purchases {
		regimeLabel := p.Regime.String()
		if p.MassiveBear {
			regimeLabel += " (massive)"
		}
		t.AppendRow(table.Row{
			p.Anchor.Format("2006-01-02"),
			p.Time.Format("2006-01-02"),
			regimeLabel,
			p.Verdict.Rule,
			fmt.Sprintf("£%.2f", p.Price),
			fmt.Sprintf("£%.2f", p.Cost),
			fmt.Sprintf("%.8f", p.Volume),
			fmt.Sprintf("%.1fd", p.WaitDays),
		})
	}

	t.Render()
	fmt.Println()
}
