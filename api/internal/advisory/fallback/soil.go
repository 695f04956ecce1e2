package fallback

import (
	"strconv"
	"strings"

	"krishi-advisor/api/internal/advisory/types"
)

// ClassifyPH: <6 low, <=7.5 optimal, else high.
func ClassifyPH(v float64) types.NutrientStatus {
	switch {
	case v < 6:
		return types.NutrientLow
	case v <= 7.5:
		return types.NutrientOptimal
	default:
		return types.NutrientHigh
	}
}

func classifyMacro(v, deficientBelow, moderateUpTo float64) types.NutrientStatus {
	switch {
	case v < deficientBelow:
		return types.NutrientDeficient
	case v <= moderateUpTo:
		return types.NutrientModerate
	default:
		return types.NutrientSufficient
	}
}

// ClassifyNitrogen: <250 deficient, <=500 moderate, else sufficient (kg/ha).
func ClassifyNitrogen(v float64) types.NutrientStatus { return classifyMacro(v, 250, 500) }

// ClassifyPhosphorus: <22 deficient, <=56 moderate, else sufficient (kg/ha).
func ClassifyPhosphorus(v float64) types.NutrientStatus { return classifyMacro(v, 22, 56) }

// ClassifyPotassium: <33 deficient, <=83 moderate, else sufficient (kg/ha).
func ClassifyPotassium(v float64) types.NutrientStatus { return classifyMacro(v, 33, 83) }

// ClassifyOrganicMatter: <0.5 low, <=1.5 moderate, <=3 good, else high (%).
func ClassifyOrganicMatter(v float64) types.NutrientStatus {
	switch {
	case v < 0.5:
		return types.NutrientLow
	case v <= 1.5:
		return types.NutrientModerate
	case v <= 3:
		return types.NutrientGood
	default:
		return types.NutrientHigh
	}
}

func assess(nutrient string, st types.NutrientStatus, lang types.Language) types.NutrientAssessment {
	txt := table.Nutrients[nutrient][string(st)].pick(lang)
	return types.NutrientAssessment{Status: st, Interpretation: txt.Interpretation, Action: txt.Action}
}

// Soil computes a complete analysis from the measured values alone. It is a
// pure function of its inputs and always returns a fully populated value.
func Soil(in types.SoilInputs, lang types.Language) types.SoilAnalysis {
	phSt := ClassifyPH(in.PH)
	nSt := ClassifyNitrogen(in.Nitrogen)
	pSt := ClassifyPhosphorus(in.Phosphorus)
	kSt := ClassifyPotassium(in.Potassium)
	omSt := ClassifyOrganicMatter(in.OrganicMatter)

	return types.SoilAnalysis{
		Summary: soilSummary(in, lang, phSt, nSt, pSt, kSt),
		NutrientStatus: types.NutrientStatusSet{
			PH:            assess("ph", phSt, lang),
			Nitrogen:      assess("nitrogen", nSt, lang),
			Phosphorus:    assess("phosphorus", pSt, lang),
			Potassium:     assess("potassium", kSt, lang),
			OrganicMatter: assess("organic_matter", omSt, lang),
		},
		FertilizerRecommendations: fertilizers(nSt, pSt, kSt, lang),
		SuitableCrops:             clone(table.SuitableCrops.pick(lang)),
		ProfitableCrops:           profitableCrops(lang),
		FarmManagement:            clone(table.FarmManagement.pick(lang)),
		ImprovementTips:           improvementTips(in.OrganicMatter, lang),
		Warnings:                  soilWarnings(in.PH, lang),
	}
}

func soilSummary(in types.SoilInputs, lang types.Language, ph, n, p, k types.NutrientStatus) string {
	tpl := table.Summary.pick(lang)
	good := ph == types.NutrientOptimal
	if tpl.Strict {
		good = good && n == types.NutrientModerate &&
			p != types.NutrientDeficient && k != types.NutrientDeficient
	}
	r := strings.NewReplacer(
		"{ph}", formatNumber(in.PH),
		"{n}", formatNumber(in.Nitrogen),
		"{p}", formatNumber(in.Phosphorus),
		"{k}", formatNumber(in.Potassium),
		"{om}", formatNumber(in.OrganicMatter),
	)
	tail := tpl.Improve
	if good {
		tail = tpl.Good
	}
	return r.Replace(tpl.Text) + tail
}

// fertilizers: DAP for N or P deficiency, urea for N deficiency while the
// list is shorter than two, MOP for K deficiency, balanced NPK otherwise.
func fertilizers(n, p, k types.NutrientStatus, lang types.Language) []types.FertilizerRecommendation {
	var out []types.FertilizerRecommendation
	add := func(key string) {
		f := table.Fertilizers[key].pick(lang)
		out = append(out, types.FertilizerRecommendation{
			Name: f.Name, Dosage: f.Dosage, Timing: f.Timing, Notes: f.Notes,
		})
	}
	if n == types.NutrientDeficient || p == types.NutrientDeficient {
		add("dap")
	}
	if n == types.NutrientDeficient && len(out) < 2 {
		add("urea")
	}
	if k == types.NutrientDeficient {
		add("mop")
	}
	if len(out) == 0 {
		add("npk")
	}
	return out
}

func profitableCrops(lang types.Language) []types.ProfitableCrop {
	src := table.ProfitableCrops.pick(lang)
	out := make([]types.ProfitableCrop, 0, len(src))
	for _, c := range src {
		out = append(out, types.ProfitableCrop{Crop: c.Crop, ProfitNote: c.ProfitNote, EstimatedMargin: c.EstimatedMargin})
	}
	return out
}

func improvementTips(om float64, lang types.Language) []string {
	key := "maintain"
	if om < 1 {
		key = "low_organic_matter"
	}
	return []string{table.ImprovementTips[key].pick(lang)}
}

// soilWarnings is non-empty only for pH below 5.5 or above 8.
func soilWarnings(ph float64, lang types.Language) []string {
	if ph < 5.5 || ph > 8 {
		return []string{table.Warnings["ph_extreme"].pick(lang)}
	}
	return []string{}
}

// formatNumber renders 7 as "7" and 6.5 as "6.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
