package advisory

import (
	"context"
	"math"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

// CalendarRequest describes the plan a calendar is generated for.
type CalendarRequest struct {
	Crop       string
	LandAcres  float64
	SowingDate string // YYYY-MM-DD
	Location   string
	SoilType   string
}

var (
	calendarFields = []llmjson.Field{
		llmjson.F("tasks", "tasks", "Tasks", "calendar"),
	}
	taskFields = []llmjson.Field{
		llmjson.F("dayFromSowing", "dayFromSowing", "day_from_sowing", "day", "days"),
		llmjson.F("stage", "stage", "Stage"),
		llmjson.F("title", "title", "Title", "task"),
		llmjson.F("description", "description", "Description", "details"),
		llmjson.F("quantityHint", "quantityHint", "quantity_hint", "quantity"),
	}
)

const (
	defaultStage = "Vegetative"
	defaultTitle = "Task"
)

// CropCalendar builds task templates relative to the sowing day. Tasks
// without a numeric day are skipped; when none are left the static template
// set for the crop is used.
func (s *Service) CropCalendar(ctx context.Context, req CalendarRequest, lang types.Language) types.Result[[]types.CropCalendarTaskTemplate] {
	a := s.begin(DomainCalendar)
	fb := fallback.CalendarTasks(req.Crop, req.LandAcres)

	doc, reason := a.call(ctx, s.text, llm.Request{Prompt: calendarPrompt(req, lang), JSON: true})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}

	// a bare array of tasks is accepted as well
	if arr, ok := doc.([]any); ok {
		doc = map[string]any{"tasks": arr}
	}
	f := llmjson.Normalize(doc, calendarFields)
	a.to(types.StateValidating)
	raw, ok := llmjson.List(f.Get("tasks"))
	if !ok {
		return fellBack(a, fb, types.ReasonShape)
	}

	out := make([]types.CropCalendarTaskTemplate, 0, len(raw))
	for _, el := range raw {
		if _, ok := el.(map[string]any); !ok {
			continue
		}
		tf := llmjson.Normalize(el, taskFields)
		day, ok := llmjson.Number(tf.Get("dayFromSowing"))
		if !ok {
			continue
		}
		out = append(out, types.CropCalendarTaskTemplate{
			DayFromSowing: int(math.Round(day)),
			Stage:         llmjson.StringOr(tf.Get("stage"), 1, defaultStage),
			Title:         llmjson.StringOr(tf.Get("title"), 1, defaultTitle),
			Description:   llmjson.StringOr(tf.Get("description"), 1, ""),
			QuantityHint:  llmjson.StringOr(tf.Get("quantityHint"), 1, ""),
		})
	}
	if len(out) == 0 {
		return fellBack(a, fb, types.ReasonShape)
	}
	return accepted(a, out, nil)
}
