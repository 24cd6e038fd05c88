package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"namematcher/extractors"
	"namematcher/matching"
	"namematcher/registry"
)

func sampleResults() []matching.MatchResult {
	page := 2
	line := 7
	matchedName := "ACME TECHNOLOGIES LIMITED"
	score := 91.5

	return []matching.MatchResult{
		{
			Candidate: extractors.EntityCandidate{
				Text:     "Acme Technologies Limited",
				Origin:   extractors.ProvenanceRef{SourceID: "members.pdf", Page: &page, LineIndex: &line},
				Strategy: extractors.StrategyPattern,
			},
			MatchedName: &matchedName,
			Score:       &score,
			RegistryFields: map[string]*string{
				registry.FieldJurisdiction:  registry.StringField("gb"),
				registry.FieldCompanyNumber: registry.StringField("01234567"),
				registry.FieldSource:        registry.StringField("OpenCorporates"),
			},
			Outcome: matching.OutcomeMatched,
		},
		{
			Candidate: extractors.EntityCandidate{
				Text:     "221B Baker Street Holdings",
				Origin:   extractors.ProvenanceRef{SourceID: "pasted"},
				Strategy: extractors.StrategyCommaPattern,
			},
			Outcome:        matching.OutcomeLookupFailed,
			Error:          "registry timeout",
			AddressSuspect: true,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "csv", want: FormatCSV},
		{input: "XLSX", want: FormatExcel},
		{input: "excel", want: FormatExcel},
		{input: "xls", want: FormatExcel},
		{input: " json ", want: FormatJSON},
		{input: "pdf", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	format, err := FormatForPath("/tmp/results.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatExcel, format)

	_, err = FormatForPath("/tmp/results")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = NewSinkForPath("/tmp/results.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestColumns(t *testing.T) {
	columns := Columns()

	assert.Equal(t, "original_name", columns[0])
	assert.Contains(t, columns, "address_suspect")
	assert.Contains(t, columns, registry.FieldCompanyNumber)
	assert.Len(t, columns, 8+len(registry.FieldOrder)+2)
}

func TestCSVSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVSink(&buf).Write(sampleResults()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, Columns(), header)

	index := func(name string) int {
		for i, column := range header {
			if column == name {
				return i
			}
		}
		t.Fatalf("column %s not found", name)
		return -1
	}

	first := records[1]
	assert.Equal(t, "Acme Technologies Limited", first[index("original_name")])
	assert.Equal(t, "2", first[index("page")])
	assert.Equal(t, "7", first[index("line_index")])
	assert.Equal(t, "91.50", first[index("similarity_score")])
	assert.Equal(t, "matched", first[index("outcome")])
	assert.Equal(t, "01234567", first[index(registry.FieldCompanyNumber)])
	assert.Equal(t, "", first[index(registry.FieldStatus)])
	assert.Equal(t, "false", first[index("address_suspect")])

	second := records[2]
	assert.Equal(t, "", second[index("page")])
	assert.Equal(t, "", second[index("matched_name")])
	assert.Equal(t, "", second[index("similarity_score")])
	assert.Equal(t, "lookup_failed", second[index("outcome")])
	assert.Equal(t, "true", second[index("address_suspect")])
	assert.Equal(t, "registry timeout", second[index("error")])
}

func TestJSONSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONSink(&buf)
	sink.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, sink.Write(sampleResults()))

	var payload struct {
		ExportedAt string                 `json:"exported_at"`
		Total      int                    `json:"total"`
		Results    []matching.MatchResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, "2024-03-01T10:00:00Z", payload.ExportedAt)
	assert.Equal(t, 2, payload.Total)
	require.Len(t, payload.Results, 2)
	assert.Equal(t, "ACME TECHNOLOGIES LIMITED", *payload.Results[0].MatchedName)
	assert.Nil(t, payload.Results[1].Score)
}

func TestJSONSink_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONSink(&buf).Write(nil))
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestExcelSink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelSink(&buf).Write(sampleResults()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, MatchesSheet, f.GetSheetName(0))

	rows, err := f.GetRows(MatchesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "original_name", rows[0][0])
	assert.Equal(t, "Acme Technologies Limited", rows[1][0])
	assert.Equal(t, "221B Baker Street Holdings", rows[2][0])

	scoreCell, _ := excelize.CoordinatesToCellName(7, 2)
	value, err := f.GetCellValue(MatchesSheet, scoreCell)
	require.NoError(t, err)
	assert.Equal(t, "91.5", value)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"results.csv", "results.xlsx", "results.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			sink, err := NewSinkForPath(path)
			require.NoError(t, err)
			require.NoError(t, sink.Write(sampleResults()))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestNewSink(t *testing.T) {
	var buf bytes.Buffer

	sink, err := NewSink(FormatCSV, &buf)
	require.NoError(t, err)
	assert.IsType(t, &CSVSink{}, sink)

	_, err = NewSink(Format("yaml"), &buf)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	assert.Contains(t, FormatExcel.ContentType(), "spreadsheetml")
}
