package rpt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cikgulab/cikguplanner/internal/gemini"
)

// mockInferencer counts calls and returns a canned response.
type mockInferencer struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (m *mockInferencer) Generate(ctx context.Context, model, system, prompt string, schema *gemini.Schema) (string, error) {
	m.calls++
	m.lastUser = prompt
	return m.response, m.err
}

func TestExtract_BlankInputSkipsService(t *testing.T) {
	mock := &mockInferencer{response: "[]"}
	e := NewExtractor(mock, "gemini-2.5-flash")

	for _, input := range []string{"", "   ", "\n\t  \n"} {
		_, err := e.Extract(context.Background(), input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Extract(%q) error = %v, want ErrEmptyInput", input, err)
		}
	}
	if mock.calls != 0 {
		t.Errorf("inference calls = %d, want 0 for blank input", mock.calls)
	}
}

func TestExtract_SortsByWeekNumber(t *testing.T) {
	mock := &mockInferencer{
		response: `[
			{"minggu":2,"tema":"Akhlak","topik":"Adab","standardKandungan":"2.1","standardPembelajaran":"2.1.1"},
			{"minggu":1,"tema":"Iman","topik":"Rukun","standardKandungan":"1.1","standardPembelajaran":"1.1.1"},
			{"minggu":3,"tema":"Ibadah","topik":"Solat","standardKandungan":"3.1","standardPembelajaran":"3.1.1"}
		]`,
	}
	e := NewExtractor(mock, "m")
	got, err := e.Extract(context.Background(), "some rpt text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i].WeekNumber != want {
			t.Errorf("week[%d].WeekNumber = %d, want %d", i, got[i].WeekNumber, want)
		}
	}
}

func TestExtract_DropsRowsMissingRequiredFields(t *testing.T) {
	mock := &mockInferencer{
		response: `[
			{"minggu":1,"tema":"Iman","topik":"Rukun","standardKandungan":"1.1","standardPembelajaran":"1.1.1"},
			{"minggu":2,"tema":"Akhlak","topik":"Adab","standardKandungan":"2.1","standardPembelajaran":""}
		]`,
	}
	e := NewExtractor(mock, "m")
	got, err := e.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (malformed row dropped)", len(got))
	}
	if got[0].WeekNumber != 1 {
		t.Errorf("kept week = %d, want 1", got[0].WeekNumber)
	}
}

func TestExtract_DuplicateWeeksPreservedStably(t *testing.T) {
	mock := &mockInferencer{
		response: `[
			{"minggu":4,"tema":"A","topik":"first","standardKandungan":"k","standardPembelajaran":"p"},
			{"minggu":1,"tema":"B","topik":"other","standardKandungan":"k","standardPembelajaran":"p"},
			{"minggu":4,"tema":"C","topik":"second","standardKandungan":"k","standardPembelajaran":"p"}
		]`,
	}
	e := NewExtractor(mock, "m")
	got, err := e.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (duplicates kept)", len(got))
	}
	if got[1].Topic != "first" || got[2].Topic != "second" {
		t.Errorf("duplicate week order = [%s %s], want arrival order", got[1].Topic, got[2].Topic)
	}
}

func TestExtract_EmptyResultIsNotAnError(t *testing.T) {
	mock := &mockInferencer{response: "[]"}
	e := NewExtractor(mock, "m")
	got, err := e.Extract(context.Background(), "text with no weeks")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestExtract_ServiceFailurePropagates(t *testing.T) {
	mock := &mockInferencer{err: &gemini.ServiceError{StatusCode: 503, Message: "unavailable"}}
	e := NewExtractor(mock, "m")
	_, err := e.Extract(context.Background(), "text")

	var se *gemini.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *gemini.ServiceError", err)
	}
}

func TestExtract_MalformedPayloadIsServiceError(t *testing.T) {
	mock := &mockInferencer{response: "not json {{"}
	e := NewExtractor(mock, "m")
	_, err := e.Extract(context.Background(), "text")

	var se *gemini.ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *gemini.ServiceError for malformed payload", err)
	}
}

func TestExtract_PromptEmbedsDocument(t *testing.T) {
	mock := &mockInferencer{response: "[]"}
	e := NewExtractor(mock, "m")
	if _, err := e.Extract(context.Background(), "MINGGU 1 Tauhid"); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(mock.lastUser, "MINGGU 1 Tauhid") {
		t.Errorf("prompt does not embed document text: %q", mock.lastUser)
	}
}
