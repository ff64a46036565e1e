package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cikgulab/cikguplanner/internal/archive"
	"github.com/cikgulab/cikguplanner/internal/gemini"
	"github.com/cikgulab/cikguplanner/internal/ingest"
	"github.com/cikgulab/cikguplanner/internal/rph"
	"github.com/cikgulab/cikguplanner/internal/rpt"
)

const maxRequestBodySize = 1 << 20   // 1MB for JSON bodies
const maxUploadSize = 20 << 20       // 20MB for document uploads

// Extractor converts raw RPT text into weekly plans.
type Extractor interface {
	Extract(ctx context.Context, rawText string) ([]rpt.WeeklyPlan, error)
}

// Generator produces daily lesson-plan content.
type Generator interface {
	Generate(ctx context.Context, req rph.Request) (rph.Result, error)
}

// Deps holds the wiring for the HTTP surface.
type Deps struct {
	Extractor Extractor
	Generator Generator
	Weeks     *rpt.WeekStore
	Archive   *archive.Archive
	Calendar  *archive.Calendar
	Token     string
}

// NewHandler builds the planner HTTP API. Everything except /health
// requires the bearer token.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/ingest", handleIngest(deps))
		r.Post("/extract", handleExtract(deps))
		r.Get("/weeks", handleListWeeks(deps))
		r.Post("/generate", handleGenerate(deps))
		r.Post("/rph", handleSaveRPH(deps))
		r.Get("/rph", handleListRPH(deps))
		r.Get("/rph/{id}", handleGetRPH(deps))
		r.Delete("/rph/{id}", handleDeleteRPH(deps))
		r.Get("/calendar", handleCalendar(deps))
		r.Get("/calendar/{date}", handleCalendarDate(deps))
	})

	return r
}

func handleIngest(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "missing file upload: %v", err)
			return
		}
		defer file.Close()

		text, err := ingest.ExtractText(header.Filename, file)
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			httpError(w, http.StatusUnsupportedMediaType, "invalid_request_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "ingest_error", "extracting text: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"text": text})
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

func handleExtract(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		weeks, err := deps.Extractor.Extract(r.Context(), req.Text)
		if errors.Is(err, rpt.ErrEmptyInput) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "rpt text must not be blank")
			return
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		// A successful extraction replaces the whole session sequence,
		// even when it found nothing. Saved plans are never touched.
		deps.Weeks.Replace(weeks)

		if weeks == nil {
			weeks = []rpt.WeeklyPlan{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(weeks)
	}
}

func handleListWeeks(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weeks := deps.Weeks.List()
		if weeks == nil {
			weeks = []rpt.WeeklyPlan{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(weeks)
	}
}

func handleGenerate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req rph.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		result, err := deps.Generator.Generate(r.Context(), req)
		if err != nil {
			var ve *rph.ValidationError
			if errors.As(err, &ve) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", ve)
				return
			}
			var ge *rph.GenerationError
			if errors.As(err, &ge) {
				httpError(w, http.StatusBadGateway, "generation_error", "%v", ge)
				return
			}
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}

func handleSaveRPH(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		var draft rph.DailyPlan
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		saved, err := deps.Archive.Save(draft)
		if err != nil {
			var ve *rph.ValidationError
			if errors.As(err, &ve) {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", ve)
				return
			}
			httpError(w, http.StatusInternalServerError, "api_error", "saving rph: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(saved)
	}
}

func handleListRPH(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans := deps.Archive.List()
		if plans == nil {
			plans = []rph.DailyPlan{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plans)
	}
}

func handleGetRPH(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		plan, err := deps.Archive.Get(id)
		if errors.Is(err, archive.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "rph not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading rph: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plan)
	}
}

func handleDeleteRPH(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		// Absent ids are a no-op; delete is idempotent.
		if err := deps.Archive.Delete(id); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting rph: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

type calendarResponse struct {
	Dates       []string        `json:"dates"`
	Unscheduled []rph.DailyPlan `json:"unscheduled"`
}

func handleCalendar(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := calendarResponse{
			Dates:       deps.Calendar.Dates(),
			Unscheduled: deps.Calendar.Unscheduled(),
		}
		if resp.Dates == nil {
			resp.Dates = []string{}
		}
		if resp.Unscheduled == nil {
			resp.Unscheduled = []rph.DailyPlan{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleCalendarDate(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")

		plans := deps.Calendar.ByDate(date)
		if plans == nil {
			plans = []rph.DailyPlan{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(plans)
	}
}

// writeServiceError maps inference-service failures onto 502 so callers
// can tell "service unreachable" apart from their own bad input.
func writeServiceError(w http.ResponseWriter, err error) {
	var se *gemini.ServiceError
	if errors.As(err, &se) {
		httpError(w, http.StatusBadGateway, "service_error", "%v", se)
		return
	}
	httpError(w, http.StatusInternalServerError, "api_error", "%v", err)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
