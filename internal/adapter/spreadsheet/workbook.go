// Package spreadsheet exports the analysis report as an Excel workbook with
// one sheet per result table.
package spreadsheet

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/xuri/excelize/v2"
)

// FileName is the workbook written into the output directory.
const FileName = "report.xlsx"

// Sheet names in workbook order.
const (
	SheetClimatology  = "Climatology"
	SheetHottest      = "Hottest years"
	SheetAnomalies    = "Monthly anomalies"
	SheetDistribution = "Distribution"
	SheetExtremes     = "Hot days"
)

// Writer writes the report workbook. It implements pipeline.Sink.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "spreadsheet" }

// Path returns the location of the workbook.
func (w *Writer) Path() string { return filepath.Join(w.dir, FileName) }

// Load builds the workbook from the report and saves it.
func (w *Writer) Load(ctx context.Context, r domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create spreadsheet dir: %w", err)
	}
	if err := f.SaveAs(w.Path()); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("spreadsheet written", "path", w.Path())
	return nil
}

// Build lays out the report tables. Missing values are left as empty cells.
func Build(r domain.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetClimatology, climatologyRows(r)},
		{SheetHottest, hottestRows(r)},
		{SheetAnomalies, anomalyRows(r)},
		{SheetDistribution, distributionRows(r)},
		{SheetExtremes, extremeRows(r)},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeRows(f, s.name, s.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %q: %w", s.name, err)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		return f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

func climatologyRows(r domain.Report) [][]any {
	rows := [][]any{{"Month", "tl_mittel", "tlmin", "tlmax"}}
	for i, t := range r.Climatology.Months {
		rows = append(rows, append([]any{i + 1}, temps(t)...))
	}
	return rows
}

func hottestRows(r domain.Report) [][]any {
	rows := [][]any{{"Variable", "Rank", "Year", "Anomaly"}}
	for _, ranking := range r.Rankings {
		for i, y := range ranking.Hottest {
			rows = append(rows, []any{ranking.Variable, i + 1, y.Year, cell(y.Value)})
		}
	}
	return rows
}

func anomalyRows(r domain.Report) [][]any {
	rows := [][]any{{"Year", "Month", "tl_mittel", "tlmin", "tlmax"}}
	for _, a := range r.Anomalies {
		rows = append(rows, append([]any{a.Year, int(a.Month)}, temps(a.Values)...))
	}
	return rows
}

func distributionRows(r domain.Report) [][]any {
	rows := [][]any{{"Month", "Variable", "Days", "Median", "P10", "P25", "P75", "P90", "IQR", "IDR"}}
	for _, m := range r.Distribution.Months {
		for _, v := range domain.Variables() {
			q := m.Get(v)
			rows = append(rows, []any{
				int(m.Month), v.Column(), m.Days,
				cell(q.Median), cell(q.P10), cell(q.P25), cell(q.P75), cell(q.P90),
				cell(q.IQR()), cell(q.IDR()),
			})
		}
	}
	return rows
}

func extremeRows(r domain.Report) [][]any {
	rows := [][]any{{"Year", "Days", "Hot days", "Tropical nights"}}
	for _, e := range r.Extremes {
		rows = append(rows, []any{e.Year, e.Days, e.HotDays, e.TropicalNights})
	}
	return rows
}

func temps(t domain.Temps) []any {
	return []any{cell(t.Mean), cell(t.Min), cell(t.Max)}
}

// cell maps NaN to an empty cell.
func cell(f float64) any {
	if math.IsNaN(f) {
		return nil
	}
	return f
}
