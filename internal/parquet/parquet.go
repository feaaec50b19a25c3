// Package parquet exports stat weight tables to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/statweights/schema"
	"github.com/parquet-go/parquet-go"
)

// WeightRecord is one stat and metric pair of a weights table.
type WeightRecord struct {
	// ExportTime is when the table was exported
	ExportTime time.Time `parquet:"export_time,snappy"`

	// Iterations is the iteration count of the run behind the values (0 if none)
	Iterations int32 `parquet:"iterations,snappy"`

	// Stat is the unit stat key, e.g. "attack_power"
	Stat string `parquet:"stat,snappy"`

	// StatName is the display name of the stat
	StatName string `parquet:"stat_name,snappy"`

	// Metric is the metric key, e.g. "dps"
	Metric string `parquet:"metric,snappy"`

	// Ratio is the metric's EP ratio at export time
	Ratio float64 `parquet:"ratio,snappy"`

	// Weight and WeightConf90 are the raw weight and its 90% half-width (nullable)
	Weight       *float64 `parquet:"weight,optional,snappy"`
	WeightConf90 *float64 `parquet:"weight_conf90,optional,snappy"`

	// EP and EPConf90 are the normalized value and its 90% half-width (nullable)
	EP       *float64 `parquet:"ep,optional,snappy"`
	EPConf90 *float64 `parquet:"ep_conf90,optional,snappy"`

	// Total is the ratio-weighted EP sum of the stat
	Total float64 `parquet:"total,snappy"`

	// Current is the active weight of the stat
	Current float64 `parquet:"current,snappy"`

	// Delta is the highlight direction of the stat row
	Delta string `parquet:"delta,snappy"`
}

// WriteWeightsParquet writes a slice of WeightRecord structs to a Parquet file.
func WriteWeightsParquet(data []WeightRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is derived from the WeightRecord struct tags
	writer := parquet.NewGenericWriter[WeightRecord](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadWeightsParquet reads back a file written by WriteWeightsParquet.
func ReadWeightsParquet(path string) ([]WeightRecord, error) {
	rows, err := parquet.ReadFile[WeightRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

// ConvertWeightsTable flattens a weights table into one record per stat and metric.
// Values of metrics the last result lacks are left null.
func ConvertWeightsTable(table schema.WeightsTable, exportTime time.Time) []WeightRecord {
	records := make([]WeightRecord, 0, len(table.Rows)*len(table.Metrics))
	for _, row := range table.Rows {
		for _, kind := range table.Metrics {
			rec := WeightRecord{
				ExportTime: exportTime,
				Iterations: int32(table.Iterations),
				Stat:       row.Stat.Key(),
				StatName:   row.Name,
				Metric:     string(kind),
				Ratio:      table.Ratios.Get(kind),
				Total:      row.Total,
				Current:    row.Current,
				Delta:      string(row.Delta),
			}
			if cell, ok := row.Cell(kind); ok && !cell.NotApplicable {
				rec.Weight = ptr(cell.Weight.Value)
				rec.WeightConf90 = ptr(cell.Weight.Conf90)
				rec.EP = ptr(cell.EP.Value)
				rec.EPConf90 = ptr(cell.EP.Conf90)
			}
			records = append(records, rec)
		}
	}
	return records
}

func ptr(v float64) *float64 { return &v }
