package advisory

import (
	"context"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

var (
	soilFields = []llmjson.Field{
		llmjson.F("summary"),
		llmjson.F("nutrientStatus", "nutrientStatus", "nutrient_status"),
		llmjson.F("fertilizerRecommendations", "fertilizerRecommendations", "fertilizer_recommendations"),
		llmjson.F("suitableCrops", "suitableCrops", "suitable_crops"),
		llmjson.F("profitableCrops", "profitableCrops", "profitable_crops"),
		llmjson.F("farmManagement", "farmManagement", "farm_management"),
		llmjson.F("improvementTips", "improvementTips", "improvement_tips"),
		llmjson.F("warnings"),
	}
	nutrientFields = []llmjson.Field{
		llmjson.F("pH", "pH", "ph", "Ph"),
		llmjson.F("nitrogen", "nitrogen", "Nitrogen", "nitrogen_kg_ha"),
		llmjson.F("phosphorus", "phosphorus", "Phosphorus", "phosphorus_kg_ha"),
		llmjson.F("potassium", "potassium", "Potassium", "potassium_kg_ha"),
		llmjson.F("organicMatter", "organicMatter", "organic_matter", "OrganicMatter"),
	}
	assessmentFields = []llmjson.Field{
		llmjson.F("status"),
		llmjson.F("interpretation"),
		llmjson.F("action"),
	}
	fertilizerFields = []llmjson.Field{
		llmjson.F("name", "name", "Name"),
		llmjson.F("dosage", "dosage", "Dosage"),
		llmjson.F("timing", "timing", "Timing"),
		llmjson.F("notes", "notes", "Notes"),
	}
	profitableFields = []llmjson.Field{
		llmjson.F("crop", "crop", "Crop"),
		llmjson.F("profitNote", "profitNote", "profit_note", "reason"),
		llmjson.F("estimatedMargin", "estimatedMargin", "estimated_margin", "margin"),
	}
)

const (
	summaryMinLen = 10
	missingText   = "—"
)

// SoilAnalysis analyses a soil test. Each field is taken from the model when
// it passes validation and from the rule-based analysis otherwise; the result
// is never partially empty. in must already be validated.
func (s *Service) SoilAnalysis(ctx context.Context, in types.SoilInputs, lang types.Language) types.Result[types.SoilAnalysis] {
	a := s.begin(DomainSoil)
	fb := fallback.Soil(in, lang)

	doc, reason := a.call(ctx, s.text, llm.Request{Prompt: soilPrompt(in, lang), JSON: true})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}

	fields := llmjson.Normalize(doc, soilFields)
	a.to(types.StateValidating)
	merged, fromFallback, fromModel := mergeSoil(fields, fb)
	if fromModel == 0 {
		return fellBack(a, fb, types.ReasonShape)
	}
	return accepted(a, merged, fromFallback)
}

// mergeSoil takes each canonical field from the model when valid and from fb
// otherwise. It returns the merged value, the names that came from fb and the
// number of fields that came from the model.
func mergeSoil(f llmjson.Fields, fb types.SoilAnalysis) (types.SoilAnalysis, []string, int) {
	out := fb
	var fromFallback []string
	fromModel := 0
	take := func(name string, ok bool) {
		if ok {
			fromModel++
		} else {
			fromFallback = append(fromFallback, name)
		}
	}

	if v, ok := llmjson.String(f.Get("summary"), summaryMinLen); ok {
		out.Summary = v
		take("summary", true)
	} else {
		take("summary", false)
	}

	ns := f.Object("nutrientStatus", nutrientFields)
	for _, n := range []struct {
		name string
		kind types.NutrientKind
		dst  *types.NutrientAssessment
	}{
		{"pH", types.KindPH, &out.NutrientStatus.PH},
		{"nitrogen", types.KindMacro, &out.NutrientStatus.Nitrogen},
		{"phosphorus", types.KindMacro, &out.NutrientStatus.Phosphorus},
		{"potassium", types.KindMacro, &out.NutrientStatus.Potassium},
		{"organicMatter", types.KindOrganicMatter, &out.NutrientStatus.OrganicMatter},
	} {
		a, ok := assessment(ns.Get(n.name), n.kind)
		if ok {
			*n.dst = a
		}
		take("nutrientStatus."+n.name, ok)
	}

	if recs, ok := llmjson.RecordList(f.Get("fertilizerRecommendations"), "name", "dosage"); ok {
		out.FertilizerRecommendations = make([]types.FertilizerRecommendation, 0, len(recs))
		for _, r := range recs {
			rf := llmjson.Normalize(r, fertilizerFields)
			out.FertilizerRecommendations = append(out.FertilizerRecommendations, types.FertilizerRecommendation{
				Name:   llmjson.StringOr(rf.Get("name"), 1, missingText),
				Dosage: llmjson.StringOr(rf.Get("dosage"), 1, missingText),
				Timing: llmjson.StringOr(rf.Get("timing"), 1, missingText),
				Notes:  llmjson.StringOr(rf.Get("notes"), 1, ""),
			})
		}
		take("fertilizerRecommendations", true)
	} else {
		take("fertilizerRecommendations", false)
	}

	if v, ok := llmjson.StringList(f.Get("suitableCrops")); ok {
		out.SuitableCrops = v
		take("suitableCrops", true)
	} else {
		take("suitableCrops", false)
	}

	if recs, ok := llmjson.RecordList(f.Get("profitableCrops"), "crop"); ok {
		out.ProfitableCrops = make([]types.ProfitableCrop, 0, len(recs))
		for _, r := range recs {
			pf := llmjson.Normalize(r, profitableFields)
			out.ProfitableCrops = append(out.ProfitableCrops, types.ProfitableCrop{
				Crop:            llmjson.StringOr(pf.Get("crop"), 1, missingText),
				ProfitNote:      llmjson.StringOr(pf.Get("profitNote"), 1, missingText),
				EstimatedMargin: llmjson.StringOr(pf.Get("estimatedMargin"), 1, ""),
			})
		}
		take("profitableCrops", true)
	} else {
		take("profitableCrops", false)
	}

	for _, l := range []struct {
		name string
		dst  *[]string
	}{
		{"farmManagement", &out.FarmManagement},
		{"improvementTips", &out.ImprovementTips},
		{"warnings", &out.Warnings},
	} {
		v, ok := llmjson.StringList(f.Get(l.name))
		if ok {
			*l.dst = v
		}
		take(l.name, ok)
	}

	return out, fromFallback, fromModel
}

// assessment accepts a nutrient entry only when status, interpretation and
// action are all usable, so an entry is never half model, half rules.
func assessment(v llmjson.Value, kind types.NutrientKind) (types.NutrientAssessment, bool) {
	af := llmjson.Normalize(v.Raw, assessmentFields)
	statusText, ok := llmjson.String(af.Get("status"), 1)
	if !ok {
		return types.NutrientAssessment{}, false
	}
	status, ok := types.ParseNutrientStatus(kind, statusText)
	if !ok {
		return types.NutrientAssessment{}, false
	}
	interp, ok := llmjson.String(af.Get("interpretation"), 1)
	if !ok {
		return types.NutrientAssessment{}, false
	}
	action, ok := llmjson.String(af.Get("action"), 1)
	if !ok {
		return types.NutrientAssessment{}, false
	}
	return types.NutrientAssessment{Status: status, Interpretation: interp, Action: action}, true
}
