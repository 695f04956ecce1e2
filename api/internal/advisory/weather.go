package advisory

import (
	"context"
	"strings"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

var weatherFields = []llmjson.Field{
	llmjson.F("type", "type", "Type", "alertType", "alert_type"),
	llmjson.F("severity", "severity", "Severity", "level"),
	llmjson.F("title", "title", "Title", "headline"),
	llmjson.F("description", "description", "Description", "details"),
	llmjson.F("action", "action", "Action", "advice"),
}

const weatherMaxTokens = 800

// alertAliases maps names models commonly use to the closed set.
var alertAliases = map[string]types.AlertType{
	"HEATWAVE":     types.AlertHeat,
	"HEAT_WAVE":    types.AlertHeat,
	"RAINFALL":     types.AlertRain,
	"HEAVY_RAIN":   types.AlertRain,
	"CYCLONE":      types.AlertStorm,
	"THUNDERSTORM": types.AlertStorm,
}

// WeatherAlerts reports severe weather near location. An empty array is a
// valid model answer; one malformed alert drops the whole answer.
func (s *Service) WeatherAlerts(ctx context.Context, location string, lang types.Language) types.Result[[]types.WeatherAlert] {
	a := s.begin(DomainWeather)
	fb := fallback.Weather()

	doc, reason := a.call(ctx, s.weather, llm.Request{Prompt: weatherPrompt(location, lang), MaxTokens: weatherMaxTokens})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}
	a.to(types.StateValidating)
	arr, ok := doc.([]any)
	if !ok {
		return fellBack(a, fb, types.ReasonShape)
	}

	out := make([]types.WeatherAlert, 0, len(arr))
	for _, el := range arr {
		if _, ok := el.(map[string]any); !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		f := llmjson.Normalize(el, weatherFields)
		typ, ok := alertType(llmjson.StringOr(f.Get("type"), 1, ""))
		if !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		sev, ok := types.ParseSeverity(llmjson.StringOr(f.Get("severity"), 1, ""))
		if !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		title, ok := llmjson.String(f.Get("title"), 1)
		if !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		out = append(out, types.WeatherAlert{
			Type:        typ,
			Severity:    sev,
			Title:       title,
			Description: llmjson.StringOr(f.Get("description"), 1, ""),
			Action:      llmjson.StringOr(f.Get("action"), 1, ""),
		})
	}
	return accepted(a, out, nil)
}

func alertType(s string) (types.AlertType, bool) {
	if t, ok := types.ParseAlertType(s); ok {
		return t, true
	}
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
	t, ok := alertAliases[key]
	return t, ok
}
