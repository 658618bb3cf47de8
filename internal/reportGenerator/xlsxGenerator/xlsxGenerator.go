package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders a valuation report: one sheet with the holdings table and
// a totals block. Unpriced holdings are marked so a zero market value is not
// mistaken for a zero price.
func (g *XLSXGenerator) Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSheet(f, summary); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, summary model.PortfolioSummary) error {
	sheetName := fmt.Sprintf("%d. %s", summary.PortfolioID, summary.Name)
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Holdings")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#cfe2f3"},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, "A1", "A1", headerStyle); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "symbol")
	_ = f.SetCellStr(sheetName, "B2", "quantity")
	_ = f.SetCellStr(sheetName, "C2", "avg cost")
	_ = f.SetCellStr(sheetName, "D2", "market price")
	_ = f.SetCellStr(sheetName, "E2", "market value")
	_ = f.SetCellStr(sheetName, "F2", "realized P&L")
	_ = f.SetCellStr(sheetName, "G2", "quote time")

	row := 3
	for _, holding := range summary.Holdings {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), holding.Symbol)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), holding.Quantity.String())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", row), holding.AvgCost().StringFixed(2))
		if holding.Priced {
			_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), holding.MarketPrice.String())
			_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", row), holding.ObservedAt.Format("2006-01-02 15:04:05"))
		} else {
			_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", row), "-")
			_ = f.SetCellStr(sheetName, fmt.Sprintf("G%d", row), "no quote")
		}
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", row), holding.MarketValue.StringFixed(2))
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", row), holding.RealizedPL.StringFixed(2))
		row++
	}

	row++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "total value")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), summary.TotalValue.StringFixed(2))
	row++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "total cost")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), summary.TotalCost.StringFixed(2))
	row++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", row), "unrealized P&L")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", row), summary.UnrealizedPL.StringFixed(2))

	return nil
}
