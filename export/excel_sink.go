package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"namematcher/matching"
)

// MatchesSheet имя листа с результатами
const MatchesSheet = "Matches"

// ExcelSink выгрузка в xlsx
type ExcelSink struct {
	w io.Writer
}

// NewExcelSink создает xlsx-выгрузку
func NewExcelSink(w io.Writer) *ExcelSink {
	return &ExcelSink{w: w}
}

// Write строит книгу с листом Matches и пишет ее в w
func (s *ExcelSink) Write(results []matching.MatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), MatchesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := Columns()
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(MatchesSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		f.SetCellStyle(MatchesSheet, cell, cell, headerStyle)
	}

	for rowIdx, result := range results {
		values := row(result)
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			var cellValue interface{} = value
			// Оценка числом, чтобы по ней работали фильтры
			if headers[colIdx] == "similarity_score" && result.Score != nil {
				cellValue = *result.Score
			}
			if err := f.SetCellValue(MatchesSheet, cell, cellValue); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(MatchesSheet, col, col, 18)
	}
	f.SetColWidth(MatchesSheet, "A", "A", 40)
	f.SetPanes(MatchesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if _, err := f.WriteTo(s.w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
