package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/smartdca/kraken-smart-dca/internal/backtest"
)

type excelStyles struct {
	header   int
	currency int
	percent  int
}

// WritePurchasesXLSX writes the purchase log and a summary sheet to an
// Excel workbook.
func WritePurchasesXLSX(res *backtest.Result, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const purchasesSheet = "Purchases"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), purchasesSheet)
	fx.NewSheet(summarySheet)

	styles, err := createStyles(fx)
	if err != nil {
		return err
	}

	if err := writePurchasesSheet(fx, purchasesSheet, res, styles); err != nil {
		return err
	}
	if err := writeSummarySheet(fx, summarySheet, res, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func createStyles(fx *excelize.File) (excelStyles, error) {
	var styles excelStyles
	var err error

	styles.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.currency, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return styles, err
	}

	styles.percent, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	return styles, err
}

func writePurchasesSheet(fx *excelize.File, sheet string, res *backtest.Result, styles excelStyles) error {
	headers := []interface{}{
		"Window Open", "Filled At", "Regime", "Massive Bear", "Rule",
		"Fallback", "Wait Days", "Price", "Cost", "Volume",
	}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "J1", styles.header); err != nil {
		return err
	}

	for i, p := range res.Purchases {
		row := []interface{}{
			p.Anchor.Format("2006-01-02 15:04"),
			p.Time.Format("2006-01-02 15:04"),
			p.Regime.String(),
			p.MassiveBear,
			p.Verdict.Rule,
			p.Fallback,
			p.WaitDays,
			p.Price,
			p.Cost,
			p.Volume,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(res.Purchases) > 0 {
		last := len(res.Purchases) + 1
		if err := fx.SetCellStyle(sheet, "H2", fmt.Sprintf("I%d", last), styles.currency); err != nil {
			return err
		}
	}

	fx.SetColWidth(sheet, "A", "B", 18)
	fx.SetColWidth(sheet, "C", "F", 13)
	fx.SetColWidth(sheet, "G", "J", 12)
	return nil
}

func writeSummarySheet(fx *excelize.File, sheet string, res *backtest.Result, styles excelStyles) error {
	rows := [][]interface{}{
		{"Metric", "Strategy", "Baseline"},
		{"Total Invested", res.TotalInvested, res.Baseline.TotalInvested},
		{"Asset Acquired", res.TotalVolume, res.Baseline.TotalVolume},
		{"Final Value", res.FinalValue, res.Baseline.FinalValue},
		{"Return", res.ReturnPct / 100, res.Baseline.ReturnPct / 100},
		{"Final Price", res.FinalPrice, ""},
		{"Edge (pp)", res.EdgePct, ""},
	}
	for i := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := fx.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}

	if err := fx.SetCellStyle(sheet, "A1", "C1", styles.header); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "B5", "C5", styles.percent); err != nil {
		return err
	}

	fx.SetColWidth(sheet, "A", "C", 18)
	return nil
}
