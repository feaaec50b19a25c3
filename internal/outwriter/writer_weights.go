package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/internal/parquet"
	"github.com/huangsam/statweights/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// WriteWeightsTable outputs the EP table, dispatching based on the output format configured.
func WriteWeightsTable(table schema.WeightsTable, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, newWeightsDocument(table))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, newWeightsDocument(table))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsCSV(w, table, fmtFloat)
		}, "Wrote CSV")
	case schema.XLSXOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsXLSX(w, table)
		}, "Wrote XLSX")
	case schema.ParquetOut:
		records := parquet.ConvertWeightsTable(table, time.Now())
		if err := parquet.WriteWeightsParquet(records, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeWeightsText(w, table, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// weightsDocument is the JSON and YAML shape of a weights table.
type weightsDocument struct {
	StatsType         schema.StatsType     `json:"stats_type" yaml:"stats_type"`
	HasResult         bool                 `json:"has_result" yaml:"has_result"`
	Iterations        int                  `json:"iterations" yaml:"iterations"`
	Ratios            map[string]float64   `json:"ratios" yaml:"ratios"`
	References        map[string]string    `json:"references" yaml:"references"`
	Rows              []weightsRowDocument `json:"rows" yaml:"rows"`
	AggregatedEP      map[string]float64   `json:"aggregated_ep,omitempty" yaml:"aggregated_ep,omitempty"`
	AggregatedWeights map[string]float64   `json:"aggregated_weights,omitempty" yaml:"aggregated_weights,omitempty"`
}

type weightsRowDocument struct {
	Stat    string                `json:"stat" yaml:"stat"`
	Name    string                `json:"name" yaml:"name"`
	Total   float64               `json:"total" yaml:"total"`
	Current float64               `json:"current" yaml:"current"`
	Delta   string                `json:"delta" yaml:"delta"`
	Metrics []metricCellsDocument `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type metricCellsDocument struct {
	Metric        string  `json:"metric" yaml:"metric"`
	NotApplicable bool    `json:"not_applicable,omitempty" yaml:"not_applicable,omitempty"`
	Weight        float64 `json:"weight" yaml:"weight"`
	WeightConf90  float64 `json:"weight_conf90" yaml:"weight_conf90"`
	EP            float64 `json:"ep" yaml:"ep"`
	EPConf90      float64 `json:"ep_conf90" yaml:"ep_conf90"`
	WeightUnused  bool    `json:"weight_unused,omitempty" yaml:"weight_unused,omitempty"`
	EPUnused      bool    `json:"ep_unused,omitempty" yaml:"ep_unused,omitempty"`
	Delta         string  `json:"delta,omitempty" yaml:"delta,omitempty"`
}

func newWeightsDocument(table schema.WeightsTable) weightsDocument {
	doc := weightsDocument{
		StatsType:  table.StatsType,
		HasResult:  table.HasResult,
		Iterations: table.Iterations,
		Ratios:     make(map[string]float64, len(table.Metrics)),
		References: make(map[string]string, len(table.References)),
		Rows:       make([]weightsRowDocument, 0, len(table.Rows)),
	}
	for _, kind := range table.Metrics {
		doc.Ratios[string(kind)] = table.Ratios.Get(kind)
	}
	for _, ref := range table.References {
		doc.References[string(ref.Group)] = ref.Stat.Key()
	}
	if table.HasResult {
		doc.AggregatedEP = table.AggregatedEP.ToMap()
		doc.AggregatedWeights = table.AggregatedWeights.ToMap()
	}
	for _, row := range table.Rows {
		rd := weightsRowDocument{
			Stat:    row.Stat.Key(),
			Name:    row.Name,
			Total:   row.Total,
			Current: row.Current,
			Delta:   contract.GetPlainDeltaLabel(row.Delta),
		}
		for _, c := range row.Metrics {
			rd.Metrics = append(rd.Metrics, metricCellsDocument{
				Metric:        string(c.Metric),
				NotApplicable: c.NotApplicable,
				Weight:        c.Weight.Value,
				WeightConf90:  c.Weight.Conf90,
				EP:            c.EP.Value,
				EPConf90:      c.EP.Conf90,
				WeightUnused:  c.Weight.Unused,
				EPUnused:      c.EP.Unused,
				Delta:         contract.GetPlainDeltaLabel(c.Delta),
			})
		}
		doc.Rows = append(doc.Rows, rd)
	}
	return doc
}

// weightsHeader returns the flat column names shared by CSV and XLSX.
func weightsHeader(table schema.WeightsTable) []string {
	header := []string{"stat", "name"}
	for _, kind := range table.Metrics {
		k := string(kind)
		header = append(header, k+"_weight", k+"_weight_conf90", k+"_ep", k+"_ep_conf90")
	}
	return append(header, "total", "current", "delta")
}

// weightsRecord formats one row to match weightsHeader. Cells of metrics
// without values are left empty.
func weightsRecord(table schema.WeightsTable, row schema.WeightsRow, fmtFloat func(float64) string) []string {
	rec := []string{row.Stat.Key(), row.Name}
	for _, kind := range table.Metrics {
		c, ok := row.Cell(kind)
		if !ok || c.NotApplicable {
			rec = append(rec, "", "", "", "")
			continue
		}
		rec = append(rec, fmtFloat(c.Weight.Value), fmtFloat(c.Weight.Conf90), fmtFloat(c.EP.Value), fmtFloat(c.EP.Conf90))
	}
	return append(rec, fmtFloat(row.Total), fmtFloat(row.Current), contract.GetPlainDeltaLabel(row.Delta))
}

// writeWeightsCSV writes the weights table in CSV format.
func writeWeightsCSV(w io.Writer, table schema.WeightsTable, fmtFloat func(float64) string) error {
	return writeCSVWithHeader(w, weightsHeader(table), func(cw *csv.Writer) error {
		for _, row := range table.Rows {
			if err := cw.Write(weightsRecord(table, row, fmtFloat)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeWeightsXLSX writes a workbook with a Weights sheet and a Ratios sheet.
func writeWeightsXLSX(w io.Writer, table schema.WeightsTable) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Weights"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	increaseStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "2E7D32"}})
	if err != nil {
		return err
	}
	decreaseStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "C62828"}})
	if err != nil {
		return err
	}

	header := weightsHeader(table)
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	totalCol := len(header) - 2
	for r, row := range table.Rows {
		excelRow := r + 2
		values := []any{row.Stat.Key(), row.Name}
		for _, kind := range table.Metrics {
			c, ok := row.Cell(kind)
			if !ok || c.NotApplicable {
				values = append(values, nil, nil, nil, nil)
				continue
			}
			values = append(values, c.Weight.Value, c.Weight.Conf90, c.EP.Value, c.EP.Conf90)
		}
		values = append(values, row.Total, row.Current, contract.GetPlainDeltaLabel(row.Delta))

		start, _ := excelize.CoordinatesToCellName(1, excelRow)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}

		var style int
		switch row.Delta {
		case schema.DeltaIncrease:
			style = increaseStyle
		case schema.DeltaDecrease:
			style = decreaseStyle
		}
		if style != 0 {
			cell, _ := excelize.CoordinatesToCellName(totalCol, excelRow)
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 28); err != nil {
		return err
	}

	const ratioSheet = "Ratios"
	if _, err := f.NewSheet(ratioSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(ratioSheet, "A1", &[]any{"metric", "ratio", "reference"}); err != nil {
		return err
	}
	refs := make(map[schema.ReferenceGroup]schema.UnitStat, len(table.References))
	for _, ref := range table.References {
		refs[ref.Group] = ref.Stat
	}
	for i, kind := range table.Metrics {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{string(kind), table.Ratios.Get(kind), refs[kind.Group()].Key()}
		if err := f.SetSheetRow(ratioSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// writeWeightsText renders the human-readable table. Each metric shows the
// configured stats type; metrics with a zero ratio are dimmed.
func writeWeightsText(w io.Writer, table schema.WeightsTable, cfg *contract.Config, fmtFloat func(float64) string) error {
	withConf := showConfidence(cfg, len(table.Metrics))
	paint := func(text string, dir schema.DeltaDirection) string {
		if !cfg.UseColors {
			return text
		}
		return contract.ColorizeDelta(text, dir)
	}
	dim := func(text string) string {
		if !cfg.UseColors {
			return text
		}
		return contract.UnusedColor.Sprint(text)
	}

	suffix := "EP"
	if table.StatsType == schema.WeightStatsType {
		suffix = "Wt"
	}
	headers := []string{"Stat"}
	for _, kind := range table.Metrics {
		headers = append(headers, kind.Label()+" "+suffix)
	}
	headers = append(headers, "Total", "Current", "Δ")

	tbl := tablewriter.NewWriter(w)
	tbl.Header(headers)
	tbl.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range table.Rows {
		rec := []string{row.Name}
		for _, kind := range table.Metrics {
			c, ok := row.Cell(kind)
			switch {
			case !table.HasResult:
				rec = append(rec, "")
			case !ok || c.NotApplicable:
				rec = append(rec, "-")
			default:
				cell := c.EP
				if table.StatsType == schema.WeightStatsType {
					cell = c.Weight
				}
				text := fmtFloat(cell.Value)
				if withConf {
					text += " ± " + fmtFloat(cell.Conf90)
				}
				if cell.Unused {
					text = dim(text)
				} else if table.StatsType == schema.EPStatsType {
					text = paint(text, c.Delta)
				}
				rec = append(rec, text)
			}
		}
		total := ""
		if table.HasResult {
			total = paint(fmtFloat(row.Total), row.Delta)
		}
		rec = append(rec, total, fmtFloat(row.Current), contract.GetPlainDeltaLabel(row.Delta))
		data = append(data, rec)
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	return writeTextFooter(w, table, fmtFloat)
}

func writeTextFooter(w io.Writer, table schema.WeightsTable, fmtFloat func(float64) string) error {
	ratios := make([]string, 0, len(table.Metrics))
	for _, kind := range table.Metrics {
		ratios = append(ratios, fmt.Sprintf("%s=%s", kind.Label(), fmtFloat(table.Ratios.Get(kind))))
	}
	refs := make([]string, 0, len(table.References))
	for _, ref := range table.References {
		label := ref.Stat.Name()
		if !ref.Explicit {
			label += " (default)"
		}
		refs = append(refs, fmt.Sprintf("%s: %s", ref.Group, label))
	}

	if _, err := fmt.Fprintf(w, "EP ratios: %s\n", strings.Join(ratios, ", ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Reference stats: %s\n", strings.Join(refs, ", ")); err != nil {
		return err
	}
	if !table.HasResult {
		_, err := fmt.Fprintln(w, "No stat weights computed yet.")
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d stats from a %d-iteration run\n", len(table.Rows), table.Iterations)
	return err
}
