package advisory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
)

var poorSoil = types.SoilInputs{PH: 5.2, Nitrogen: 180, Phosphorus: 15, Potassium: 20, OrganicMatter: 0.6, Location: "Satara"}

func TestSoilAnalysisFullModelAnswer(t *testing.T) {
	s := New(Config{Text: reply("```json\n" + `{
  "summary": "Acidic soil, low in N, P and K.",
  "nutrient_status": {
    "ph": {"status": "Low", "interpretation": "Acidic", "action": "Apply lime 2 t/ha"},
    "Nitrogen": {"status": "deficient", "interpretation": "Very low N", "action": "Split urea"},
    "phosphorus": {"status": "deficient", "interpretation": "Low P", "action": "Apply DAP"},
    "potassium": {"status": "deficient", "interpretation": "Low K", "action": "Apply MOP"},
    "organic_matter": {"status": "low", "interpretation": "Poor OM", "action": "Add FYM"}
  },
  "fertilizerRecommendations": [{"Name": "Lime", "dosage": "2 t/ha"}, "junk"],
  "suitableCrops": ["Ragi", " ", 42],
  "profitableCrops": [{"crop": "Groundnut", "profit_note": "Good demand", "margin": "₹30,000/acre"}],
  "farm_management": ["Mulch"],
  "improvementTips": ["Green manure"],
  "warnings": ["Avoid ammonium sulphate"]
}` + "\n```")})

	got := s.SoilAnalysis(context.Background(), poorSoil, types.English)

	require.Equal(t, types.OutcomeModel, got.Outcome)
	assert.Equal(t, types.StateAssembled, got.State)
	assert.Empty(t, got.FallbackFields)
	v := got.Value
	assert.Equal(t, "Acidic soil, low in N, P and K.", v.Summary)
	assert.Equal(t, types.NutrientAssessment{Status: types.NutrientLow, Interpretation: "Acidic", Action: "Apply lime 2 t/ha"}, v.NutrientStatus.PH)
	assert.Equal(t, types.NutrientDeficient, v.NutrientStatus.Nitrogen.Status)
	assert.Equal(t, []types.FertilizerRecommendation{{Name: "Lime", Dosage: "2 t/ha", Timing: "—"}}, v.FertilizerRecommendations)
	assert.Equal(t, []string{"Ragi", "42"}, v.SuitableCrops)
	assert.Equal(t, []types.ProfitableCrop{{Crop: "Groundnut", ProfitNote: "Good demand", EstimatedMargin: "₹30,000/acre"}}, v.ProfitableCrops)
	assert.Equal(t, []string{"Mulch"}, v.FarmManagement)
}

func TestSoilAnalysisPartialMerge(t *testing.T) {
	s := New(Config{Text: reply(`{
  "summary": "short",
  "nutrientStatus": {
    "pH": {"status": "optimal", "interpretation": "Fine", "action": "None"},
    "nitrogen": {"status": "very low", "interpretation": "x", "action": "y"},
    "phosphorus": {"status": "moderate", "interpretation": "OK"},
    "potassium": {"status": "optimal", "interpretation": "wrong vocabulary", "action": "z"}
  },
  "fertilizerRecommendations": [{"timing": "basal"}],
  "suitableCrops": ["Jowar", "Bajra"],
  "warnings": []
}`)})
	fb := fallback.Soil(poorSoil, types.Hindi)

	got := s.SoilAnalysis(context.Background(), poorSoil, types.Hindi)

	require.Equal(t, types.OutcomeModel, got.Outcome)
	v := got.Value
	assert.Equal(t, fb.Summary, v.Summary)
	assert.Equal(t, types.NutrientOptimal, v.NutrientStatus.PH.Status)
	assert.Equal(t, "Fine", v.NutrientStatus.PH.Interpretation)
	assert.Equal(t, fb.NutrientStatus.Nitrogen, v.NutrientStatus.Nitrogen)
	assert.Equal(t, fb.NutrientStatus.Phosphorus, v.NutrientStatus.Phosphorus)
	assert.Equal(t, fb.NutrientStatus.Potassium, v.NutrientStatus.Potassium)
	assert.Equal(t, fb.NutrientStatus.OrganicMatter, v.NutrientStatus.OrganicMatter)
	assert.Equal(t, fb.FertilizerRecommendations, v.FertilizerRecommendations)
	assert.Equal(t, []string{"Jowar", "Bajra"}, v.SuitableCrops)
	assert.Equal(t, fb.Warnings, v.Warnings)

	assert.Equal(t, []string{
		"summary",
		"nutrientStatus.nitrogen",
		"nutrientStatus.phosphorus",
		"nutrientStatus.potassium",
		"nutrientStatus.organicMatter",
		"fertilizerRecommendations",
		"profitableCrops",
		"farmManagement",
		"improvementTips",
		"warnings",
	}, got.FallbackFields)
}

func TestSoilAnalysisKeepsValidSummary(t *testing.T) {
	const summary = "Neutral soil with low nitrogen and phosphorus; potassium is adequate."
	s := New(Config{Text: reply(`{"summary": "` + summary + `", "fertilizerRecommendations": [{}]}`)})
	in := types.SoilInputs{PH: 7.0, Nitrogen: 200, Phosphorus: 15, Potassium: 100, OrganicMatter: 2.0}
	fb := fallback.Soil(in, types.English)

	got := s.SoilAnalysis(context.Background(), in, types.English)

	require.Equal(t, types.OutcomeModel, got.Outcome)
	assert.Equal(t, types.StateAssembled, got.State)
	assert.Equal(t, summary, got.Value.Summary)
	assert.Equal(t, fb.FertilizerRecommendations, got.Value.FertilizerRecommendations)
	assert.Equal(t, "DAP", got.Value.FertilizerRecommendations[0].Name)
	assert.Contains(t, got.FallbackFields, "fertilizerRecommendations")
	assert.NotContains(t, got.FallbackFields, "summary")
}

func TestSoilAnalysisFallsBack(t *testing.T) {
	fb := fallback.Soil(poorSoil, types.Gujarati)
	tests := []struct {
		name   string
		gen    llm.Generator
		reason types.Reason
	}{
		{"nothing usable", reply(`{"analysis": "looks fine", "summary": 3}`), types.ReasonShape},
		{"array", reply(`["summary"]`), types.ReasonShape},
		{"prose", reply("The soil is acidic."), types.ReasonParse},
		{"transport", failing(errors.New("503")), types.ReasonTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(Config{Text: tt.gen}).SoilAnalysis(context.Background(), poorSoil, types.Gujarati)
			assert.Equal(t, types.OutcomeFallback, got.Outcome)
			assert.Equal(t, tt.reason, got.Reason)
			assert.Equal(t, types.StateFailedFallback, got.State)
			assert.Equal(t, fb, got.Value)
			assert.Empty(t, got.FallbackFields)
		})
	}
}
