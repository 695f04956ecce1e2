package telegram

import (
	"fmt"
	"strings"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
)

func header(b *strings.Builder, icon, title string, outcome types.Outcome, lang types.Language) {
	b.WriteString(icon + " " + title)
	if outcome == types.OutcomeFallback {
		b.WriteString(" (" + fallback.Label(lang, "offline") + ")")
	}
	b.WriteString("\n")
}

func footer(b *strings.Builder, outcome types.Outcome, lang types.Language) {
	if outcome == types.OutcomeFallback {
		b.WriteString("\nℹ️ " + fallback.Label(lang, "fallback_note"))
	}
}

func line(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func bullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + ":\n")
	for _, it := range items {
		b.WriteString("• " + it + "\n")
	}
}

var statusIcon = map[types.VerificationStatus]string{
	types.StatusGenuine:    "✅",
	types.StatusSuspicious: "⚠️",
	types.StatusFake:       "❌",
	types.StatusUnknown:    "❔",
}

func renderVerification(res types.Result[types.VerificationResult], lang types.Language) string {
	v := res.Value
	var b strings.Builder
	header(&b, statusIcon[v.Status], string(v.Status), res.Outcome, lang)
	line(&b, fallback.Label(lang, "confidence"), fmt.Sprintf("%.0f%%", v.Confidence))
	line(&b, fallback.Label(lang, "product"), v.ProductName)
	line(&b, fallback.Label(lang, "manufacturer"), v.Manufacturer)
	line(&b, fallback.Label(lang, "batch_code"), v.BatchCode)
	line(&b, fallback.Label(lang, "reasoning"), v.Reasoning)
	line(&b, fallback.Label(lang, "safety"), v.SafetyCheck)
	footer(&b, res.Outcome, lang)
	return strings.TrimSpace(b.String())
}

func renderAdvisory(res types.Result[types.AdvisoryResponse], lang types.Language) string {
	v := res.Value
	var b strings.Builder
	header(&b, "🌱", v.Crop+" / "+v.Stage, res.Outcome, lang)
	b.WriteString("\n" + fallback.Label(lang, "recommendations") + ":\n")
	rec := v.Recommendations
	for _, s := range []string{rec.Fertilizer, rec.Dosage, rec.PestControl, rec.CostSavingTip, rec.SoilHealthImpact} {
		if s != "" {
			b.WriteString("• " + s + "\n")
		}
	}
	if len(v.Schedule) > 0 {
		b.WriteString("\n" + fallback.Label(lang, "schedule") + ":\n")
		for _, s := range v.Schedule {
			fmt.Fprintf(&b, "%s: %s\n", s.Day, s.Activity)
		}
	}
	if v.WeatherRisk != "" {
		b.WriteString("\n")
		line(&b, fallback.Label(lang, "weather_risk"), v.WeatherRisk)
	}
	bullets(&b, fallback.Label(lang, "warnings"), v.Warnings)
	footer(&b, res.Outcome, lang)
	return strings.TrimSpace(b.String())
}

var trendIcon = map[types.Trend]string{
	types.TrendUp:     "📈",
	types.TrendDown:   "📉",
	types.TrendStable: "➖",
}

func renderMarket(res types.Result[[]types.MarketData], lang types.Language) string {
	var b strings.Builder
	header(&b, "💰", fallback.Label(lang, "market"), res.Outcome, lang)
	if len(res.Value) == 0 {
		b.WriteString(fallback.Label(lang, "no_market"))
		return b.String()
	}
	for _, m := range res.Value {
		fmt.Fprintf(&b, "%s %s: ₹%.0f/%s\n", trendIcon[m.Trend], m.Item, m.AvgPrice, m.Unit)
		for _, v := range m.Vendors {
			fmt.Fprintf(&b, "   %s ₹%.0f", v.Name, v.Price)
			if v.Distance != "" {
				b.WriteString(" (" + v.Distance + ")")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

var severityIcon = map[types.Severity]string{
	types.SeverityLow:      "🟢",
	types.SeverityModerate: "🟡",
	types.SeverityHigh:     "🟠",
	types.SeverityExtreme:  "🔴",
}

func renderWeather(res types.Result[[]types.WeatherAlert], lang types.Language) string {
	var b strings.Builder
	header(&b, "🌦", fallback.Label(lang, "weather"), res.Outcome, lang)
	if len(res.Value) == 0 {
		b.WriteString(fallback.Label(lang, "no_alerts"))
		return b.String()
	}
	for _, a := range res.Value {
		fmt.Fprintf(&b, "\n%s %s [%s]\n", severityIcon[a.Severity], a.Title, a.Type)
		if a.Description != "" {
			b.WriteString(a.Description + "\n")
		}
		if a.Action != "" {
			b.WriteString("→ " + a.Action + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func renderSoil(res types.Result[types.SoilAnalysis], lang types.Language) string {
	v := res.Value
	var b strings.Builder
	header(&b, "🧪", fallback.Label(lang, "summary"), res.Outcome, lang)
	b.WriteString(v.Summary + "\n")

	b.WriteString("\n" + fallback.Label(lang, "nutrients") + ":\n")
	ns := v.NutrientStatus
	for _, n := range []struct {
		name string
		a    types.NutrientAssessment
	}{
		{"pH", ns.PH}, {"N", ns.Nitrogen}, {"P", ns.Phosphorus}, {"K", ns.Potassium}, {"OM", ns.OrganicMatter},
	} {
		fmt.Fprintf(&b, "• %s: %s. %s\n", n.name, n.a.Status, n.a.Action)
	}

	if len(v.FertilizerRecommendations) > 0 {
		b.WriteString("\n" + fallback.Label(lang, "fertilizers") + ":\n")
		for _, f := range v.FertilizerRecommendations {
			fmt.Fprintf(&b, "• %s: %s (%s)\n", f.Name, f.Dosage, f.Timing)
		}
	}
	bullets(&b, fallback.Label(lang, "suitable_crops"), v.SuitableCrops)
	if len(v.ProfitableCrops) > 0 {
		b.WriteString("\n" + fallback.Label(lang, "profitable_crops") + ":\n")
		for _, p := range v.ProfitableCrops {
			fmt.Fprintf(&b, "• %s: %s\n", p.Crop, p.ProfitNote)
		}
	}
	bullets(&b, fallback.Label(lang, "farm_management"), v.FarmManagement)
	bullets(&b, fallback.Label(lang, "tips"), v.ImprovementTips)
	bullets(&b, fallback.Label(lang, "warnings"), v.Warnings)
	footer(&b, res.Outcome, lang)
	return strings.TrimSpace(b.String())
}

func renderCalendar(req advisory.CalendarRequest, tasks []types.CalendarTask, outcome types.Outcome, lang types.Language) string {
	var b strings.Builder
	header(&b, "📅", fmt.Sprintf("%s: %s, %s", fallback.Label(lang, "calendar"), req.Crop, req.SowingDate), outcome, lang)
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s  %s: %s\n", t.Date, t.Stage, t.Title)
	}
	footer(&b, outcome, lang)
	return strings.TrimSpace(b.String())
}

func renderTasks(tasks []types.CalendarTask, days int, lang types.Language) string {
	if len(tasks) == 0 {
		return fmt.Sprintf(fallback.Label(lang, "no_tasks"), days)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗓 "+fallback.Label(lang, "upcoming_tasks")+"\n", days)
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s  %s: %s\n", t.Date, t.Stage, t.Title)
		if t.QuantityHint != "" {
			fmt.Fprintf(&b, "   %s\n", t.QuantityHint)
		}
	}
	return strings.TrimSpace(b.String())
}
