package extractors

import (
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSplitByPattern(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "org keywords with qualifier",
			input: "Institute of International Finance Heritage Foundation",
			want:  []string{"Institute of International Finance", "Heritage Foundation"},
		},
		{
			name:  "corporate suffixes",
			input: "Acme Inc. Globex GmbH Initech LLC",
			want:  []string{"Acme Inc.", "Globex GmbH", "Initech LLC"},
		},
		{
			name:  "keyword followed by lowercase is rejected",
			input: "Acme Foundation bill Beta",
			want:  []string{"Acme Foundation bill Beta"},
		},
		{
			name:  "multi-word keyword",
			input: "Bluffs Area Chamber Of Commerce Nebraska Chamber Of Commerce",
			want:  []string{"Bluffs Area Chamber Of Commerce", "Nebraska Chamber Of Commerce"},
		},
		{
			name:  "relations closes a name",
			input: "Council on Foreign Relations Heritage Foundation",
			want:  []string{"Council on Foreign Relations", "Heritage Foundation"},
		},
		{
			name:  "no boundaries returns trimmed text",
			input: "  Globex  ",
			want:  []string{"Globex"},
		},
		{
			name:  "empty",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitByPattern(tt.input))
		})
	}
}

func TestSplitByCommaThenPattern_ChamberScenario(t *testing.T) {
	got := SplitByCommaThenPattern("Delaware State Chamber Of Commerce, New York Building Congress")

	assert.Equal(t, []string{"Delaware State Chamber Of Commerce", "New York Building Congress"}, got)
}

func TestSplitByCommaThenPattern_CommaIsAuthoritative(t *testing.T) {
	got := SplitByCommaThenPattern("Acme Holdings, Globex Inc. Initech Ltd, , Umbrella")

	assert.Equal(t, []string{"Acme Holdings", "Globex Inc.", "Initech Ltd", "Umbrella"}, got)
}

func TestSplitAggressive(t *testing.T) {
	got := SplitAggressive("Dallas Regional Chamber Netchoice United", DefaultCapitalizationMinLength)
	assert.Equal(t, []string{"Regional Chamber", "Netchoice United"}, got)

	// все сегменты короче порога: возвращается исходный сегмент
	got = SplitAggressive("Acme Widgets", DefaultCapitalizationMinLength)
	assert.Equal(t, []string{"Acme Widgets"}, got)
}

func TestDetectCapitalizationBoundaries(t *testing.T) {
	assert.Equal(t, []int{7, 24}, DetectCapitalizationBoundaries("Dallas Regional Chamber Netchoice United"))
	assert.Nil(t, DetectCapitalizationBoundaries("IBM Corp"))
	// слово короче трех рун не начинает новый сегмент
	assert.Nil(t, DetectCapitalizationBoundaries("acme Co"))
}

func TestDetectPatternBoundaries_OffsetsAreASet(t *testing.T) {
	text := "Trump Vance Inaugural Committee"

	// "Inaugural Committee" и "Committee" заканчиваются в одной позиции
	assert.Equal(t, []int{len(text)}, DetectPatternBoundaries(text))
}

func TestApplyBoundaries(t *testing.T) {
	text := "Acme Inc. Bo Globex Ltd"

	assert.Equal(t, []string{"Acme Inc.", "Bo Globex Ltd"}, ApplyBoundaries(text, []int{9}, 4))
	assert.Equal(t, []string{"Acme Inc.", "Globex Ltd"}, ApplyBoundaries(text, []int{9, 12}, 4))
	assert.Equal(t, []string{text}, ApplyBoundaries(text, nil, 4))
	assert.Equal(t, []string{text}, ApplyBoundaries(text, []int{9}, 100))
}

func TestSplitByPattern_NeverFabricatesCharacters(t *testing.T) {
	faker := gofakeit.New(11)

	for i := 0; i < 200; i++ {
		var parts []string
		count := faker.Number(1, 5)
		for j := 0; j < count; j++ {
			parts = append(parts, faker.Company()+" "+faker.RandomString([]string{"Inc.", "Foundation", "GmbH", "Ltd", "Institute of Peace", "group"}))
		}
		text := strings.Join(parts, " ")

		pos := 0
		for _, seg := range SplitByPattern(text) {
			idx := strings.Index(text[pos:], seg)
			require.GreaterOrEqual(t, idx, 0, "segment %q not found in order in %q", seg, text)
			pos += idx + len(seg)
		}
	}
}

func TestMergeLines(t *testing.T) {
	lines := []TextLine{
		{SourceID: "doc", Page: intPtr(1), LineIndex: 0, Text: "Acme Technologies"},
		{SourceID: "doc", Page: intPtr(1), LineIndex: 1, Text: "Limited"},
		{SourceID: "doc", Page: intPtr(1), LineIndex: 2, Text: "Columbia Sportswear"},
		{SourceID: "doc", Page: intPtr(1), LineIndex: 3, Text: "Columbia University"},
		{SourceID: "doc", Page: intPtr(1), LineIndex: 4, Text: "Globex"},
		{SourceID: "doc", Page: intPtr(2), LineIndex: 0, Text: "GmbH"},
		{SourceID: "doc", Page: intPtr(2), LineIndex: 1, Text: "   "},
		{SourceID: "doc", Page: intPtr(2), LineIndex: 2, Text: "Samsung Electronics"},
		{SourceID: "doc", Page: intPtr(2), LineIndex: 3, Text: "Co., Ltd."},
	}

	got := MergeLines(lines)

	texts := make([]string, 0, len(got))
	for _, line := range got {
		texts = append(texts, line.Text)
	}
	assert.Equal(t, []string{
		"Acme Technologies Limited",
		"Columbia Sportswear",
		"Columbia University",
		"Globex",
		"GmbH",
		"Samsung Electronics Co., Ltd.",
	}, texts)
	assert.Equal(t, 0, got[0].LineIndex)
	assert.Equal(t, 2, got[5].LineIndex)
}

func TestMergeLines_NoChaining(t *testing.T) {
	lines := []TextLine{
		{SourceID: "doc", LineIndex: 0, Text: "Acme"},
		{SourceID: "doc", LineIndex: 1, Text: "Ltd"},
		{SourceID: "doc", LineIndex: 2, Text: "GmbH"},
	}

	got := MergeLines(lines)

	require.Len(t, got, 2)
	assert.Equal(t, "Acme Ltd", got[0].Text)
	assert.Equal(t, "GmbH", got[1].Text)
}

func TestSegmentLines_MergeScenario(t *testing.T) {
	seg, err := NewSegmenter(DefaultOptions())
	require.NoError(t, err)

	got := seg.SegmentLines([]TextLine{
		{SourceID: "report.pdf", Page: intPtr(3), LineIndex: 7, Text: "Acme Technologies"},
		{SourceID: "report.pdf", Page: intPtr(3), LineIndex: 8, Text: "Limited"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Acme Technologies Limited", got[0].Text)
	assert.Equal(t, StrategyCommaPattern, got[0].Strategy)
	assert.Equal(t, "report.pdf", got[0].Origin.SourceID)
	require.NotNil(t, got[0].Origin.Page)
	assert.Equal(t, 3, *got[0].Origin.Page)
	require.NotNil(t, got[0].Origin.LineIndex)
	assert.Equal(t, 7, *got[0].Origin.LineIndex)
}

func TestSegmentLines_OrderAndFiltering(t *testing.T) {
	seg, err := NewSegmenter(Options{Mode: ModePattern, CapitalizationMinLength: 8})
	require.NoError(t, err)

	got := seg.SegmentText("paste", "Acme Inc. Globex GmbH\n\nIBM\nInitech LLC")

	texts := make([]string, 0, len(got))
	for _, c := range got {
		texts = append(texts, c.Text)
		assert.Equal(t, StrategyPattern, c.Strategy)
	}
	assert.Equal(t, []string{"Acme Inc.", "Globex GmbH", "Initech LLC"}, texts)
	assert.Equal(t, 0, *got[0].Origin.LineIndex)
	assert.Equal(t, 3, *got[2].Origin.LineIndex)
	assert.Nil(t, got[0].Origin.Page)
}

func TestSegmentLines_AggressiveStrategyTagging(t *testing.T) {
	seg, err := NewSegmenter(Options{Mode: ModeAggressive, CapitalizationMinLength: 8})
	require.NoError(t, err)

	got := seg.SegmentText("paste", "Dallas Regional Chamber Netchoice United, Acme Widgets")

	require.Len(t, got, 3)
	assert.Equal(t, StrategyCapitalization, got[0].Strategy)
	assert.Equal(t, StrategyCapitalization, got[1].Strategy)
	assert.Equal(t, "Acme Widgets", got[2].Text)
	assert.Equal(t, StrategyCommaPattern, got[2].Strategy)
}

func TestSegmentText_EmptyInput(t *testing.T) {
	seg, err := NewSegmenter(DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, seg.SegmentText("paste", ""))
	assert.Empty(t, seg.SegmentText("paste", " \n\t\n "))
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "aggressive ten", opts: Options{Mode: ModeAggressive, CapitalizationMinLength: 10}},
		{name: "unknown mode", opts: Options{Mode: "fuzzy", CapitalizationMinLength: 8}, wantErr: true},
		{name: "min length too small", opts: Options{Mode: ModePattern, CapitalizationMinLength: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidOptions))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Aggressive ")
	require.NoError(t, err)
	assert.Equal(t, ModeAggressive, mode)

	_, err = ParseMode("nope")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestBoundaryRules(t *testing.T) {
	rules := BoundaryRules()

	categories := map[BoundaryCategory]int{}
	for _, r := range rules {
		require.NotNil(t, r.Pattern, r.Name)
		categories[r.Category]++
	}
	assert.Greater(t, categories[OrgKeyword], 0)
	assert.Greater(t, categories[CorporateSuffix], 0)
	assert.Equal(t, 1, categories[CapitalizationShift])
	assert.Equal(t, "corporate_suffix", CorporateSuffix.String())
}
