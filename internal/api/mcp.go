package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cikgulab/cikguplanner/internal/rph"
	"github.com/cikgulab/cikguplanner/internal/rpt"
)

// MCPDeps holds dependencies for the MCP server. It reuses the same
// extractor/generator/store wiring as the HTTP surface.
type MCPDeps struct {
	Extractor Extractor
	Generator Generator
	Weeks     *rpt.WeekStore
	Archive   Archiver
	Calendar  Calendarer
}

// Archiver is the archive surface the MCP layer needs.
type Archiver interface {
	Save(p rph.DailyPlan) (rph.DailyPlan, error)
	List() []rph.DailyPlan
	Delete(id string) error
}

// Calendarer is the calendar surface the MCP layer needs.
type Calendarer interface {
	Dates() []string
	ByDate(date string) []rph.DailyPlan
	Unscheduled() []rph.DailyPlan
}

// NewMCPServer creates an MCP server exposing the planner operations as
// tools for agent clients.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"cikguplanner",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("cikguplanner — turns an RPT (yearly teaching plan) into weekly plans and generates dated daily RPH lesson plans saved to a local calendar."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("analyze_rpt",
			mcp.WithDescription("Analyze raw RPT text and replace the session's weekly plan sequence with the extracted weeks."),
			mcp.WithString("text", mcp.Description("Raw RPT document text"), mcp.Required()),
		),
		mcpAnalyzeRPT(deps),
	)

	s.AddTool(
		mcp.NewTool("list_weeks",
			mcp.WithDescription("List the weekly plans of the current session."),
		),
		mcpListWeeks(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_rph",
			mcp.WithDescription("Generate a daily RPH for a week in the current session. Generation does not save; call save_rph with the result."),
			mcp.WithNumber("week", mcp.Description("Week number from the session sequence"), mcp.Required()),
			mcp.WithString("day", mcp.Description("School day: Isnin, Selasa, Rabu, Khamis or Jumaat"), mcp.Required()),
			mcp.WithString("date", mcp.Description("Calendar date YYYY-MM-DD (optional)")),
			mcp.WithString("class_name", mcp.Description("Class name, e.g. 4 Amanah"), mcp.Required()),
			mcp.WithString("time", mcp.Description("Lesson slot, e.g. 8:00-9:00"), mcp.Required()),
			mcp.WithString("field", mcp.Description("Subject field to focus on (optional)")),
			mcp.WithString("context", mcp.Description("Extra context from the teacher (optional)")),
		),
		mcpGenerateRPH(deps),
	)

	s.AddTool(
		mcp.NewTool("save_rph",
			mcp.WithDescription("Save a generated RPH to the archive. Every save is a new record; delete the old one first to replace it."),
			mcp.WithNumber("week", mcp.Description("Week number from the session sequence"), mcp.Required()),
			mcp.WithString("day", mcp.Description("School day"), mcp.Required()),
			mcp.WithString("date", mcp.Description("Calendar date YYYY-MM-DD (optional)")),
			mcp.WithString("class_name", mcp.Description("Class name"), mcp.Required()),
			mcp.WithString("time", mcp.Description("Lesson slot"), mcp.Required()),
			mcp.WithString("field", mcp.Description("Subject field the plan addresses (optional)")),
			mcp.WithString("content", mcp.Description("Generated lesson plan content"), mcp.Required()),
		),
		mcpSaveRPH(deps),
	)

	s.AddTool(
		mcp.NewTool("list_rph",
			mcp.WithDescription("List saved RPHs, newest first, optionally filtered by date."),
			mcp.WithString("date", mcp.Description("Calendar date YYYY-MM-DD (optional)")),
		),
		mcpListRPH(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_rph",
			mcp.WithDescription("Delete a saved RPH by id. Deleting an unknown id is a no-op."),
			mcp.WithString("id", mcp.Description("RPH id"), mcp.Required()),
		),
		mcpDeleteRPH(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"rph://calendar",
			"RPH Calendar",
			mcp.WithResourceDescription("Dates with saved RPHs plus unscheduled entries, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceCalendar(deps),
	)

	return s
}

func mcpAnalyzeRPT(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcpError("text is required"), nil
		}

		weeks, err := deps.Extractor.Extract(ctx, text)
		if errors.Is(err, rpt.ErrEmptyInput) {
			return mcpError("rpt text must not be blank"), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		deps.Weeks.Replace(weeks)

		if len(weeks) == 0 {
			return mcpText("No weekly plans found in the document."), nil
		}
		return mcpJSON(weeks)
	}
}

func mcpListWeeks(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		weeks := deps.Weeks.List()
		if len(weeks) == 0 {
			return mcpText("No weekly plans in this session. Run analyze_rpt first."), nil
		}
		return mcpJSON(weeks)
	}
}

func scheduleFromRequest(deps MCPDeps, req mcp.CallToolRequest) (rph.Request, *mcp.CallToolResult) {
	weekNum := req.GetInt("week", 0)
	if weekNum <= 0 {
		return rph.Request{}, mcpError("week is required")
	}
	week, ok := deps.Weeks.Get(weekNum)
	if !ok {
		return rph.Request{}, mcpError(fmt.Sprintf("week %d is not in the current session", weekNum))
	}

	day, err := req.RequireString("day")
	if err != nil {
		return rph.Request{}, mcpError("day is required")
	}
	className, err := req.RequireString("class_name")
	if err != nil {
		return rph.Request{}, mcpError("class_name is required")
	}
	timeSlot, err := req.RequireString("time")
	if err != nil {
		return rph.Request{}, mcpError("time is required")
	}

	return rph.Request{
		Week:              week,
		Day:               day,
		Date:              req.GetString("date", ""),
		ClassName:         className,
		Time:              timeSlot,
		SelectedField:     req.GetString("field", ""),
		AdditionalContext: req.GetString("context", ""),
	}, nil
}

func mcpGenerateRPH(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		genReq, errResult := scheduleFromRequest(deps, req)
		if errResult != nil {
			return errResult, nil
		}

		result, err := deps.Generator.Generate(ctx, genReq)
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}
		return mcpText(result.Content), nil
	}
}

func mcpSaveRPH(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		genReq, errResult := scheduleFromRequest(deps, req)
		if errResult != nil {
			return errResult, nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}

		saved, err := deps.Archive.Save(rph.DailyPlan{
			Week:          genReq.Week,
			Day:           genReq.Day,
			Date:          genReq.Date,
			ClassName:     genReq.ClassName,
			Time:          genReq.Time,
			SelectedField: genReq.SelectedField,
			Content:       content,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("save failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Saved RPH %s", saved.ID)), nil
	}
}

func mcpListRPH(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := req.GetString("date", "")

		var plans []rph.DailyPlan
		if date != "" {
			plans = deps.Calendar.ByDate(date)
		} else {
			plans = deps.Archive.List()
		}
		if len(plans) == 0 {
			return mcpText("[]"), nil
		}

		// Summaries only; full content stays behind the HTTP surface.
		type planSummary struct {
			ID        string `json:"id"`
			Day       string `json:"day"`
			Date      string `json:"date,omitempty"`
			ClassName string `json:"className"`
			Time      string `json:"time"`
			Week      int    `json:"week"`
			Topic     string `json:"topic"`
		}
		out := make([]planSummary, len(plans))
		for i, p := range plans {
			out[i] = planSummary{
				ID:        p.ID,
				Day:       p.Day,
				Date:      p.Date,
				ClassName: p.ClassName,
				Time:      p.Time,
				Week:      p.Week.WeekNumber,
				Topic:     p.Week.Topic,
			}
		}
		return mcpJSON(out)
	}
}

func mcpDeleteRPH(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		if err := deps.Archive.Delete(id); err != nil {
			return mcpError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Deleted RPH %s", id)), nil
	}
}

func mcpResourceCalendar(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		snapshot := map[string]any{
			"dates":       deps.Calendar.Dates(),
			"unscheduled": deps.Calendar.Unscheduled(),
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("marshaling calendar: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "rph://calendar",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

func mcpError(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(msg)
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("marshaling result: %v", err)), nil
	}
	return mcpText(string(data)), nil
}
