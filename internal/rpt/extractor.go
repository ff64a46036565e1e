package rpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cikgulab/cikguplanner/internal/gemini"
)

// ErrEmptyInput is returned when the RPT text is blank. It is raised
// before any inference call is made.
var ErrEmptyInput = errors.New("rpt text is empty")

// Inferencer is the narrow inference-service interface the extractor needs.
type Inferencer interface {
	Generate(ctx context.Context, model, system, prompt string, schema *gemini.Schema) (string, error)
}

// Extractor converts raw RPT text into an ordered sequence of weekly plans
// via a single structured inference call.
type Extractor struct {
	client Inferencer
	model  string
}

// NewExtractor creates an Extractor using the given client and model name.
func NewExtractor(client Inferencer, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

// Extract analyses rawText and returns the weeks it describes, sorted
// ascending by week number. Rows missing any required field are dropped
// rather than failing the batch; duplicate week numbers are preserved in
// arrival order. An empty result with a nil error means the service
// understood the call but found no weeks.
func (e *Extractor) Extract(ctx context.Context, rawText string) ([]WeeklyPlan, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, ErrEmptyInput
	}

	raw, err := e.client.Generate(ctx, e.model, extractionSystemPrompt, BuildExtractionPrompt(rawText), ExtractionSchema())
	if err != nil {
		return nil, fmt.Errorf("analyzing rpt: %w", err)
	}

	var rows []WeeklyPlan
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, &gemini.ServiceError{Message: "malformed extraction payload", Err: err}
	}

	valid := rows[:0:0]
	dropped := 0
	for _, row := range rows {
		if !hasRequiredFields(row) {
			dropped++
			continue
		}
		valid = append(valid, row)
	}
	if dropped > 0 {
		slog.Warn("dropped malformed weekly plans from extraction", "dropped", dropped, "kept", len(valid))
	}

	// Stable: equal week numbers keep their arrival order.
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].WeekNumber < valid[j].WeekNumber
	})

	return valid, nil
}

func hasRequiredFields(w WeeklyPlan) bool {
	return w.WeekNumber > 0 &&
		strings.TrimSpace(w.Theme) != "" &&
		strings.TrimSpace(w.Topic) != "" &&
		strings.TrimSpace(w.ContentStandard) != "" &&
		strings.TrimSpace(w.LearningStandard) != ""
}
