package rph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cikgulab/cikguplanner/internal/gemini"
	"github.com/cikgulab/cikguplanner/internal/rpt"
)

// mockInferencer replays queued responses and records each prompt.
type mockInferencer struct {
	responses []string
	errs      []error
	prompts   []string
	systems   []string
}

func (m *mockInferencer) Generate(ctx context.Context, model, system, prompt string, schema *gemini.Schema) (string, error) {
	i := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, system)
	var resp string
	var err error
	if i < len(m.responses) {
		resp = m.responses[i]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return resp, err
}

func validRequest() Request {
	return Request{
		Week: rpt.WeeklyPlan{
			WeekNumber:       12,
			Theme:            "Ibadah",
			Topic:            "Solat Fardu",
			Fields:           []string{"Ibadah", "Jawi"},
			ContentStandard:  "3.2 Memahami konsep solat",
			LearningStandard: "3.2.1 Menyatakan rukun solat",
		},
		Day:       "Isnin",
		Date:      "2024-05-06",
		ClassName: "4 Amanah",
		Time:      "8:00-9:00",
	}
}

func TestGenerate_Validation(t *testing.T) {
	mock := &mockInferencer{responses: []string{"# RPH"}}
	g := NewGenerator(mock, "m")

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"unknown day", func(r *Request) { r.Day = "Ahad" }, "day"},
		{"blank class", func(r *Request) { r.ClassName = "  " }, "className"},
		{"blank time", func(r *Request) { r.Time = "" }, "time"},
		{"incomplete week", func(r *Request) { r.Week.Topic = "" }, "weekItem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := g.Generate(context.Background(), req)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
	if len(mock.prompts) != 0 {
		t.Errorf("inference calls = %d, want 0 for invalid requests", len(mock.prompts))
	}
}

func TestGenerate_PromptEmbedsStandardsAndContext(t *testing.T) {
	mock := &mockInferencer{responses: []string{"# RPH content"}}
	g := NewGenerator(mock, "m")

	req := validRequest()
	req.SelectedField = "Jawi"
	req.AdditionalContext = "murid lemah membaca"

	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Content != "# RPH content" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.JawiContent != nil {
		t.Error("JawiContent set without RenderJawi")
	}

	prompt := mock.prompts[0]
	for _, want := range []string{
		"3.2 Memahami konsep solat",
		"3.2.1 Menyatakan rukun solat",
		"Bidang: Jawi",
		"murid lemah membaca",
		"Isnin",
		"4 Amanah",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerate_ServiceFailureIsGenerationError(t *testing.T) {
	mock := &mockInferencer{errs: []error{&gemini.ServiceError{StatusCode: 500, Message: "boom"}}}
	g := NewGenerator(mock, "m")

	_, err := g.Generate(context.Background(), validRequest())

	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	var se *gemini.ServiceError
	if !errors.As(err, &se) {
		t.Error("GenerationError should wrap the underlying service error")
	}
}

func TestGenerate_JawiRendering(t *testing.T) {
	mock := &mockInferencer{responses: []string{"# RPH", "جاوي"}}
	g := NewGenerator(mock, "m")

	req := validRequest()
	req.RenderJawi = true

	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.JawiContent == nil || *res.JawiContent != "جاوي" {
		t.Errorf("JawiContent = %v, want rendered text", res.JawiContent)
	}
	if len(mock.prompts) != 2 {
		t.Fatalf("inference calls = %d, want 2", len(mock.prompts))
	}
	if mock.prompts[1] != "# RPH" {
		t.Errorf("jawi call input = %q, want generated content", mock.prompts[1])
	}
}

func TestGenerate_JawiFailureDegrades(t *testing.T) {
	mock := &mockInferencer{
		responses: []string{"# RPH", ""},
		errs:      []error{nil, errors.New("jawi backend down")},
	}
	g := NewGenerator(mock, "m")

	req := validRequest()
	req.RenderJawi = true

	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v, want success despite jawi failure", err)
	}
	if res.Content != "# RPH" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.JawiContent != nil {
		t.Errorf("JawiContent = %v, want nil", res.JawiContent)
	}
}

func TestIsSchoolDay(t *testing.T) {
	for _, d := range DaysOfWeek {
		if !IsSchoolDay(d) {
			t.Errorf("IsSchoolDay(%q) = false", d)
		}
	}
	for _, d := range []string{"Sabtu", "Ahad", "isnin", ""} {
		if IsSchoolDay(d) {
			t.Errorf("IsSchoolDay(%q) = true", d)
		}
	}
}
