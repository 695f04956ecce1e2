package advisory

import (
	"context"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

var (
	advisoryFields = []llmjson.Field{
		llmjson.F("crop"),
		llmjson.F("stage"),
		llmjson.F("recommendations", "recommendations", "Recommendations", "recommendation"),
		llmjson.F("schedule", "schedule", "Schedule", "plan"),
		llmjson.F("weatherRisk", "weatherRisk", "weather_risk"),
		llmjson.F("warnings", "warnings", "Warnings", "warning"),
	}
	recommendationFields = []llmjson.Field{
		llmjson.F("fertilizer"),
		llmjson.F("dosage", "dosage", "dose"),
		llmjson.F("pestControl", "pestControl", "pest_control"),
		llmjson.F("costSavingTip", "costSavingTip", "cost_saving_tip"),
		llmjson.F("soilHealthImpact", "soilHealthImpact", "soil_health_impact"),
	}
	scheduleFields = []llmjson.Field{
		llmjson.F("day", "day", "Day", "days"),
		llmjson.F("activity", "activity", "Activity", "task"),
	}
)

// CropAdvisory gives stage-specific advice for a crop. The model answer is
// used as a whole when it carries at least one recommendation.
func (s *Service) CropAdvisory(ctx context.Context, crop, stage, soilType string, lang types.Language) types.Result[types.AdvisoryResponse] {
	a := s.begin(DomainAdvisory)
	fb := fallback.Advisory(crop, stage, lang)

	doc, reason := a.call(ctx, s.text, llm.Request{Prompt: advisoryPrompt(crop, stage, soilType, lang), JSON: true})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}
	if _, ok := doc.(map[string]any); !ok {
		return fellBack(a, fb, types.ReasonShape)
	}
	f := llmjson.Normalize(doc, advisoryFields)
	a.to(types.StateValidating)

	if _, ok := llmjson.Object(f.Get("recommendations")); !ok {
		return fellBack(a, fb, types.ReasonShape)
	}
	rf := f.Object("recommendations", recommendationFields)
	rec := types.Recommendations{
		Fertilizer:       llmjson.StringOr(rf.Get("fertilizer"), 1, ""),
		Dosage:           llmjson.StringOr(rf.Get("dosage"), 1, ""),
		PestControl:      llmjson.StringOr(rf.Get("pestControl"), 1, ""),
		CostSavingTip:    llmjson.StringOr(rf.Get("costSavingTip"), 1, ""),
		SoilHealthImpact: llmjson.StringOr(rf.Get("soilHealthImpact"), 1, ""),
	}
	if rec == (types.Recommendations{}) {
		return fellBack(a, fb, types.ReasonShape)
	}

	out := types.AdvisoryResponse{
		Crop:            llmjson.StringOr(f.Get("crop"), 1, crop),
		Stage:           llmjson.StringOr(f.Get("stage"), 1, stage),
		Recommendations: rec,
		Schedule:        []types.ScheduleEntry{},
		WeatherRisk:     llmjson.StringOr(f.Get("weatherRisk"), 1, ""),
		Warnings:        []string{},
	}
	if entries, ok := llmjson.List(f.Get("schedule")); ok {
		for _, e := range entries {
			if _, ok := e.(map[string]any); !ok {
				continue
			}
			ef := llmjson.Normalize(e, scheduleFields)
			activity, ok := llmjson.String(ef.Get("activity"), 1)
			if !ok {
				continue
			}
			out.Schedule = append(out.Schedule, types.ScheduleEntry{
				Day:      llmjson.StringOr(ef.Get("day"), 1, ""),
				Activity: activity,
			})
		}
	}
	if w, ok := llmjson.StringList(f.Get("warnings")); ok {
		out.Warnings = w
	} else if w, ok := llmjson.String(f.Get("warnings"), 1); ok {
		out.Warnings = []string{w}
	}
	return accepted(a, out, nil)
}
