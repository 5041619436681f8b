package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartdca/kraken-smart-dca/internal/backtest"
)

// WritePurchasesCSV writes the simulated purchase log to a CSV file.
// An .xlsx path is delegated to the Excel writer.
func WritePurchasesCSV(res *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WritePurchasesXLSX(res, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Window_Open",
		"Filled_At",
		"Regime",
		"Massive_Bear",
		"Rule",
		"Fallback",
		"Wait_Days",
		"Price",
		"Cost",
		"Volume",
		"Verdict",
	}); err != nil {
		return err
	}

	for _, p := range res.Purchases {
		row := []string{
			p.Anchor.Format("2006-01-02 15:04:05"),
			p.Time.Format("2006-01-02 15:04:05"),
			p.Regime.String(),
			fmt.Sprintf("%t", p.MassiveBear),
			p.Verdict.Rule,
			fmt.Sprintf("%t", p.Fallback),
			fmt.Sprintf("%.2f", p.WaitDays),
			fmt.Sprintf("%.2f", p.Price),
			fmt.Sprintf("%.2f", p.Cost),
			fmt.Sprintf("%.8f", p.Volume),
			p.Verdict.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := []string{
		"TOTAL", "", "", "", "", "", "",
		fmt.Sprintf("%.2f", res.FinalPrice),
		fmt.Sprintf("%.2f", res.TotalInvested),
		fmt.Sprintf("%.8f", res.TotalVolume),
		fmt.Sprintf("return %.2f%% vs baseline %.2f%%", res.ReturnPct, res.Baseline.ReturnPct),
	}
	return w.Write(summary)
}
