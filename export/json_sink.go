package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"namematcher/matching"
)

// JSONSink выгрузка в JSON
type JSONSink struct {
	w   io.Writer
	now func() time.Time
}

// NewJSONSink создает JSON-выгрузку
func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w, now: time.Now}
}

// Write пишет объект {exported_at, total, results}
func (s *JSONSink) Write(results []matching.MatchResult) error {
	if results == nil {
		results = []matching.MatchResult{}
	}

	encoder := json.NewEncoder(s.w)
	encoder.SetIndent("", "  ")

	payload := map[string]interface{}{
		"exported_at": s.now().UTC().Format(time.RFC3339),
		"total":       len(results),
		"results":     results,
	}

	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
