package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

// statEntry is the exported shape of one unit stat.
type statEntry struct {
	Index int    `json:"index" yaml:"index"`
	Key   string `json:"key" yaml:"key"`
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	EP    bool   `json:"ep" yaml:"ep"`
}

func newStatEntries(stats []schema.UnitStat) []statEntry {
	entries := make([]statEntry, 0, len(stats))
	for _, s := range stats {
		kind := "primary"
		if s.IsPseudoStat() {
			kind = "pseudo"
		}
		entries = append(entries, statEntry{Index: int(s), Key: s.Key(), Name: s.Name(), Kind: kind, EP: s.IsEP()})
	}
	return entries
}

// WriteStatList outputs the unit stat catalog. Parquet is not offered for it.
func WriteStatList(stats []schema.UnitStat, cfg *contract.Config) error {
	entries := newStatEntries(stats)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, entries)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsCSV(w, entries)
		}, "Wrote CSV")
	case schema.XLSXOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsXLSX(w, entries)
		}, "Wrote XLSX")
	case schema.ParquetOut:
		return fmt.Errorf("%w: parquet output is only available for weights tables", contract.ErrConfiguration)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsText(w, entries)
		}, "Wrote table")
	}
}

func statRecord(e statEntry) []string {
	ep := "no"
	if e.EP {
		ep = "yes"
	}
	return []string{fmt.Sprintf("%d", e.Index), e.Key, e.Name, e.Kind, ep}
}

func writeStatsCSV(w io.Writer, entries []statEntry) error {
	return writeCSVWithHeader(w, []string{"index", "key", "name", "kind", "ep"}, func(cw *csv.Writer) error {
		for _, e := range entries {
			if err := cw.Write(statRecord(e)); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeStatsText(w io.Writer, entries []statEntry) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Key", "Name", "Kind", "EP"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, statRecord(e))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeStatsXLSX(w io.Writer, entries []statEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Stats"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"index", "key", "name", "kind", "ep"}); err != nil {
		return err
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{e.Index, e.Key, e.Name, e.Kind, e.EP}); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
