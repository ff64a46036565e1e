package rph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cikgulab/cikguplanner/internal/gemini"
)

// Inferencer is the narrow inference-service interface the generator needs.
type Inferencer interface {
	Generate(ctx context.Context, model, system, prompt string, schema *gemini.Schema) (string, error)
}

// Generator produces daily lesson-plan content from a weekly record plus
// a day/class/time selection. It has no storage access: generation and
// saving are separate steps, so a failed generation can never leave a
// partial record behind.
type Generator struct {
	client Inferencer
	model  string
}

// NewGenerator creates a Generator using the given client and model name.
func NewGenerator(client Inferencer, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Generate validates req, composes a single inference request embedding
// the weekly standards, chosen field and extra context, and returns the
// generated content. When req.RenderJawi is set a second call renders the
// content into Jawi script; that rendering is best-effort and its failure
// only logs a warning. Two identical calls may return different content;
// identity is assigned at save time, not here.
func (g *Generator) Generate(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	content, err := g.client.Generate(ctx, g.model, generationSystemPrompt, BuildGenerationPrompt(req), nil)
	if err != nil {
		return Result{}, &GenerationError{Err: err}
	}
	if strings.TrimSpace(content) == "" {
		return Result{}, &GenerationError{Err: fmt.Errorf("service returned empty content")}
	}

	res := Result{Content: content}
	if req.RenderJawi {
		jawi, err := g.client.Generate(ctx, g.model, jawiSystemPrompt, content, nil)
		if err != nil {
			slog.Warn("jawi rendering failed, keeping rumi content only", "error", err)
		} else if strings.TrimSpace(jawi) != "" {
			res.JawiContent = &jawi
		}
	}

	return res, nil
}

func validate(req Request) error {
	if !IsSchoolDay(req.Day) {
		return &ValidationError{Field: "day", Reason: fmt.Sprintf("%q is not a school day", req.Day)}
	}
	if strings.TrimSpace(req.ClassName) == "" {
		return &ValidationError{Field: "className", Reason: "must not be blank"}
	}
	if strings.TrimSpace(req.Time) == "" {
		return &ValidationError{Field: "time", Reason: "must not be blank"}
	}
	if strings.TrimSpace(req.Week.Topic) == "" || strings.TrimSpace(req.Week.ContentStandard) == "" {
		return &ValidationError{Field: "weekItem", Reason: "must be a complete weekly plan record"}
	}
	return nil
}
