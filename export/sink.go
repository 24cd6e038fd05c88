package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"namematcher/matching"
	"namematcher/registry"
)

// ErrUnsupportedFormat формат выгрузки не поддерживается
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format формат выгрузки
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatJSON  Format = "json"
)

// Sink получатель результатов сопоставления
type Sink interface {
	Write(results []matching.MatchResult) error
}

// ParseFormat разбирает имя формата; "excel" и "xls" считаются xlsx
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "xls", "excel":
		return FormatExcel, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// FormatForPath определяет формат по расширению файла
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: file %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// ContentType MIME-тип формата
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// NewSink создает получатель для формата поверх w
func NewSink(format Format, w io.Writer) (Sink, error) {
	switch format {
	case FormatCSV:
		return NewCSVSink(w), nil
	case FormatExcel:
		return NewExcelSink(w), nil
	case FormatJSON:
		return NewJSONSink(w), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileSink пишет результаты в файл, формат по расширению
type FileSink struct {
	path   string
	format Format
}

// NewSinkForPath проверяет расширение; файл создается при Write
func NewSinkForPath(path string) (*FileSink, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{path: path, format: format}, nil
}

// Format формат файла
func (s *FileSink) Format() Format {
	return s.format
}

// Write создает файл и записывает результаты
func (s *FileSink) Write(results []matching.MatchResult) error {
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	sink, err := NewSink(s.format, file)
	if err != nil {
		file.Close()
		return err
	}
	if err := sink.Write(results); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// Columns заголовки табличной выгрузки
func Columns() []string {
	columns := []string{
		"original_name",
		"source",
		"page",
		"line_index",
		"strategy",
		"matched_name",
		"similarity_score",
		"outcome",
	}
	columns = append(columns, registry.FieldOrder...)
	return append(columns, "address_suspect", "error")
}

// row значения строки выгрузки; nil выводится пустой строкой
func row(result matching.MatchResult) []string {
	values := []string{
		result.Candidate.Text,
		result.Candidate.Origin.SourceID,
		optionalInt(result.Candidate.Origin.Page),
		optionalInt(result.Candidate.Origin.LineIndex),
		string(result.Candidate.Strategy),
		optionalString(result.MatchedName),
		optionalScore(result.Score),
		string(result.Outcome),
	}
	for _, field := range registry.FieldOrder {
		values = append(values, optionalString(result.RegistryFields[field]))
	}
	return append(values, strconv.FormatBool(result.AddressSuspect), result.Error)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalScore(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
