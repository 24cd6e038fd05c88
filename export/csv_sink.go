package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"namematcher/matching"
)

// CSVSink выгрузка в CSV с заголовком
type CSVSink struct {
	w io.Writer
}

// NewCSVSink создает CSV-выгрузку
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: w}
}

// Write записывает заголовок и по строке на результат
func (s *CSVSink) Write(results []matching.MatchResult) error {
	writer := csv.NewWriter(s.w)

	if err := writer.Write(Columns()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(row(result)); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
