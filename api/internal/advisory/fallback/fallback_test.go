package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi-advisor/api/internal/advisory/types"
)

func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) types.NutrientStatus
		v    float64
		want types.NutrientStatus
	}{
		{"ph below 6", ClassifyPH, 5.99, types.NutrientLow},
		{"ph 6", ClassifyPH, 6, types.NutrientOptimal},
		{"ph 7.5", ClassifyPH, 7.5, types.NutrientOptimal},
		{"ph 7.51", ClassifyPH, 7.51, types.NutrientHigh},
		{"n 249", ClassifyNitrogen, 249, types.NutrientDeficient},
		{"n 250", ClassifyNitrogen, 250, types.NutrientModerate},
		{"n 500", ClassifyNitrogen, 500, types.NutrientModerate},
		{"n 501", ClassifyNitrogen, 501, types.NutrientSufficient},
		{"p 21", ClassifyPhosphorus, 21, types.NutrientDeficient},
		{"p 22", ClassifyPhosphorus, 22, types.NutrientModerate},
		{"p 56", ClassifyPhosphorus, 56, types.NutrientModerate},
		{"p 57", ClassifyPhosphorus, 57, types.NutrientSufficient},
		{"k 32", ClassifyPotassium, 32, types.NutrientDeficient},
		{"k 33", ClassifyPotassium, 33, types.NutrientModerate},
		{"k 83", ClassifyPotassium, 83, types.NutrientModerate},
		{"k 84", ClassifyPotassium, 84, types.NutrientSufficient},
		{"om 0.49", ClassifyOrganicMatter, 0.49, types.NutrientLow},
		{"om 0.5", ClassifyOrganicMatter, 0.5, types.NutrientModerate},
		{"om 1.5", ClassifyOrganicMatter, 1.5, types.NutrientModerate},
		{"om 3", ClassifyOrganicMatter, 3, types.NutrientGood},
		{"om 3.1", ClassifyOrganicMatter, 3.1, types.NutrientHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.v))
		})
	}
}

func TestSoilDeficientEnglish(t *testing.T) {
	in := types.SoilInputs{PH: 5.2, Nitrogen: 180, Phosphorus: 15, Potassium: 20, OrganicMatter: 0.4}
	got := Soil(in, types.English)

	assert.Equal(t, "Your soil: pH 5.2, N 180 kg/ha, P 15 kg/ha, K 20 kg/ha, OM 0.4%. Some improvements recommended.", got.Summary)
	assert.Equal(t, types.NutrientLow, got.NutrientStatus.PH.Status)
	assert.Equal(t, "Apply lime 2-4 tonnes/ha.", got.NutrientStatus.PH.Action)
	assert.Equal(t, types.NutrientDeficient, got.NutrientStatus.Nitrogen.Status)
	assert.Equal(t, types.NutrientDeficient, got.NutrientStatus.Phosphorus.Status)
	assert.Equal(t, types.NutrientDeficient, got.NutrientStatus.Potassium.Status)
	assert.Equal(t, types.NutrientLow, got.NutrientStatus.OrganicMatter.Status)

	names := make([]string, 0, len(got.FertilizerRecommendations))
	for _, f := range got.FertilizerRecommendations {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"DAP", "Urea", "MOP (Muriate of Potash)"}, names)
	assert.Equal(t, []string{"Apply FYM and compost regularly"}, got.ImprovementTips)
	assert.Equal(t, []string{"pH at extreme. Correction needed."}, got.Warnings)
}

func TestSoilBalancedPotassiumOnly(t *testing.T) {
	in := types.SoilInputs{PH: 7.0, Nitrogen: 200, Phosphorus: 15, Potassium: 100, OrganicMatter: 2.0}
	got := Soil(in, types.English)

	ns := got.NutrientStatus
	assert.Equal(t, types.NutrientOptimal, ns.PH.Status)
	assert.Equal(t, types.NutrientDeficient, ns.Nitrogen.Status)
	assert.Equal(t, types.NutrientDeficient, ns.Phosphorus.Status)
	assert.Equal(t, types.NutrientSufficient, ns.Potassium.Status)
	assert.Equal(t, types.NutrientGood, ns.OrganicMatter.Status)
	require.NotEmpty(t, got.FertilizerRecommendations)
	assert.Equal(t, "DAP", got.FertilizerRecommendations[0].Name)
	for _, f := range got.FertilizerRecommendations {
		assert.NotContains(t, f.Name, "MOP")
	}
	assert.Empty(t, got.Warnings)
}

func TestSoilHealthyHindi(t *testing.T) {
	in := types.SoilInputs{PH: 7, Nitrogen: 300, Phosphorus: 30, Potassium: 50, OrganicMatter: 1.2}
	got := Soil(in, types.Hindi)

	assert.True(t, strings.HasPrefix(got.Summary, "आपकी मिट्टी: pH 7, N 300"))
	assert.True(t, strings.HasSuffix(got.Summary, "मिट्टी सामान्यतः अच्छी है।"))
	require.Len(t, got.FertilizerRecommendations, 1)
	assert.Equal(t, "संतुलित NPK 19:19:19", got.FertilizerRecommendations[0].Name)
	assert.Equal(t, []string{"pH बनाए रखने के लिए जैविक खाद जारी रखें"}, got.ImprovementTips)
	assert.Empty(t, got.Warnings)
	assert.NotNil(t, got.Warnings)
}

// hi/mr/gu need N moderate for "good"; English only looks at pH.
func TestSoilSummaryConditionDiffersByLanguage(t *testing.T) {
	in := types.SoilInputs{PH: 7, Nitrogen: 600, Phosphorus: 30, Potassium: 50, OrganicMatter: 2}
	assert.True(t, strings.HasSuffix(Soil(in, types.English).Summary, "Soil is generally good."))
	assert.True(t, strings.HasSuffix(Soil(in, types.Hindi).Summary, "कुछ सुधार की सलाह दी गई है।"))
	assert.True(t, strings.HasSuffix(Soil(in, types.Marathi).Summary, "काही सुधारणा शिफारस केल्या आहेत।"))
}

func TestFertilizerUreaCap(t *testing.T) {
	// N deficient alone: DAP then urea (list shorter than two).
	got := fertilizers(types.NutrientDeficient, types.NutrientModerate, types.NutrientModerate, types.English)
	require.Len(t, got, 2)
	assert.Equal(t, "Urea", got[1].Name)

	// P deficient only: DAP, no urea.
	got = fertilizers(types.NutrientModerate, types.NutrientDeficient, types.NutrientModerate, types.English)
	require.Len(t, got, 1)
	assert.Equal(t, "DAP", got[0].Name)

	// K deficient only: MOP, no NPK default.
	got = fertilizers(types.NutrientModerate, types.NutrientModerate, types.NutrientDeficient, types.English)
	require.Len(t, got, 1)
	assert.Equal(t, "MOP (Muriate of Potash)", got[0].Name)
}

func TestSoilTotality(t *testing.T) {
	inputs := []types.SoilInputs{
		{},
		{PH: 14, Nitrogen: 10000, Phosphorus: 10000, Potassium: 10000, OrganicMatter: 100},
		{PH: 5.5, Nitrogen: 250, Phosphorus: 22, Potassium: 33, OrganicMatter: 1},
	}
	langs := []types.Language{types.English, types.Hindi, types.Marathi, types.Gujarati, types.Tamil, types.Language("xx")}
	for _, in := range inputs {
		for _, lang := range langs {
			got := Soil(in, lang)
			assert.NotEmpty(t, got.Summary)
			for _, a := range []types.NutrientAssessment{
				got.NutrientStatus.PH, got.NutrientStatus.Nitrogen, got.NutrientStatus.Phosphorus,
				got.NutrientStatus.Potassium, got.NutrientStatus.OrganicMatter,
			} {
				assert.NotEmpty(t, a.Status)
				assert.NotEmpty(t, a.Interpretation)
				assert.NotEmpty(t, a.Action)
			}
			assert.NotEmpty(t, got.FertilizerRecommendations)
			assert.LessOrEqual(t, len(got.FertilizerRecommendations), 3)
			assert.NotEmpty(t, got.SuitableCrops)
			assert.NotEmpty(t, got.ProfitableCrops)
			assert.NotEmpty(t, got.FarmManagement)
			assert.Len(t, got.ImprovementTips, 1)
		}
	}
}

func TestUnsupportedLanguageUsesBaseline(t *testing.T) {
	in := types.SoilInputs{PH: 7, Nitrogen: 300, Phosphorus: 30, Potassium: 50, OrganicMatter: 2}
	assert.Equal(t, Soil(in, types.English), Soil(in, types.Tamil))
}

func TestBatchCode(t *testing.T) {
	tests := []struct {
		code       string
		status     types.VerificationStatus
		confidence float64
	}{
		{"FAKE2024X01", types.StatusFake, 95},
		{"fake2024x01", types.StatusFake, 95},
		{"00000000", types.StatusFake, 95},
		{"AZ2024X12", types.StatusGenuine, 90},
		{"sum2024ka22", types.StatusGenuine, 90},
		{"???", types.StatusSuspicious, 75},
		{"ab2024x12", types.StatusSuspicious, 75}, // format check is case-sensitive
		{"KR2025A7", types.StatusUnknown, 50},
		{"BAYER23X", types.StatusUnknown, 50},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := BatchCode(tt.code, types.English)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.code, got.BatchCode)
			assert.Equal(t, "Unknown", got.Manufacturer)
			assert.Equal(t, "Not known from code", got.ProductName)
			assert.NotEmpty(t, got.Reasoning)
			assert.NotNil(t, got.Sources)
		})
	}
}

func TestBatchCodeHindi(t *testing.T) {
	got := BatchCode("FAKE2024X01", types.Hindi)
	assert.Equal(t, "यह बैच कोड नकली उत्पादों की सूची में पाया गया है। इसे न खरीदें।", got.Reasoning)
	assert.Equal(t, "कोड से ज्ञात नहीं", got.ProductName)
}

func TestImageFailed(t *testing.T) {
	got := ImageFailed(types.Hindi)
	assert.Equal(t, types.StatusUnknown, got.Status)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, "विश्लेषण विफल", got.ProductName)
}

func TestAdvisoryDefault(t *testing.T) {
	got := Advisory("Wheat", "Sowing", types.English)
	assert.Equal(t, "Wheat", got.Crop)
	assert.Equal(t, "Sowing", got.Stage)
	assert.Equal(t, "50-60 kg/acre", got.Recommendations.Dosage)
	require.Len(t, got.Schedule, 3)
	assert.Equal(t, "Day 1-2", got.Schedule[0].Day)
	assert.Len(t, got.Warnings, 1)
}

func TestCalendarTasks(t *testing.T) {
	short := CalendarTasks("maize", 2)
	require.Len(t, short, 33)
	assert.Equal(t, -14, short[0].DayFromSowing)
	assert.Equal(t, 95, short[len(short)-1].DayFromSowing)
	assert.Equal(t, "2 एकड़", short[0].QuantityHint)
	assert.Equal(t, "~50 kg Urea for 2 acres", short[14].QuantityHint)
	assert.Equal(t, "~40 kg for 2 acres", short[21].QuantityHint)

	long := CalendarTasks("Sugarcane", 1.5)
	require.Len(t, long, 34)
	last := long[len(long)-1]
	assert.Equal(t, 295, last.DayFromSowing)
	assert.Equal(t, "कटाई अंतिम", last.Title)
	assert.Equal(t, "1.5 एकड़", last.QuantityHint)

	// default crop length 110: closing task at 105
	other := CalendarTasks("okra", 1)
	assert.Equal(t, 105, other[len(other)-1].DayFromSowing)

	for i := 1; i < len(long); i++ {
		assert.LessOrEqual(t, long[i-1].DayFromSowing, long[i].DayFromSowing)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "स्थिति", Label(types.Hindi, "status"))
	assert.Equal(t, "Status", Label(types.Tamil, "status"))
	assert.Equal(t, "no_such_label", Label(types.English, "no_such_label"))
	assert.Equal(t, "भारत", LocationDefault(types.Marathi))
	assert.Equal(t, "India", LocationDefault(types.Bengali))
}

func TestLoadRejectsMissingBaseline(t *testing.T) {
	_, err := Load([]byte("summary:\n  hi:\n    text: x\n"))
	require.Error(t, err)

	_, err = Load([]byte("nutrients: ["))
	require.Error(t, err)
}
