package fallback

import (
	"regexp"
	"strings"

	"krishi-advisor/api/internal/advisory/types"
)

var (
	fakeBatchCodes = map[string]bool{
		"FAKE2024X01": true, "XX2024F001": true, "RECALL2024": true, "TEST123456": true,
		"00000000": true, "12345678": true, "ABCDEFGH": true,
	}
	genuineBatchCodes = map[string]bool{
		"AZ2024X12": true, "NK2024Y45": true, "DCNP202401": true, "BS2024SE01": true,
		"IF2024MR15": true, "UPL2024GJ08": true, "SUM2024KA22": true,
	}

	reBatchStrict = regexp.MustCompile(`^[A-Z]{2,4}\d{4}[A-Z]?\d{1,3}$`)
	reBatchLoose  = regexp.MustCompile(`^[A-Z]{2,8}\d{2,4}[A-Z0-9]{0,4}$`)
)

// ValidBatchFormat reports whether code looks like an Indian agri-input batch
// code. The check is case-sensitive.
func ValidBatchFormat(code string) bool {
	return reBatchStrict.MatchString(code) || reBatchLoose.MatchString(code)
}

// BatchCode classifies a batch code by rules alone: the known-fake list wins,
// then the known-genuine list (both case-insensitive), then the format check.
func BatchCode(code string, lang types.Language) types.VerificationResult {
	code = strings.TrimSpace(code)
	upper := strings.ToUpper(code)

	var (
		status     types.VerificationStatus
		confidence float64
	)
	switch {
	case fakeBatchCodes[upper]:
		status, confidence = types.StatusFake, 95
	case genuineBatchCodes[upper]:
		status, confidence = types.StatusGenuine, 90
	case !ValidBatchFormat(code):
		status, confidence = types.StatusSuspicious, 75
	default:
		status, confidence = types.StatusUnknown, 50
	}

	return types.VerificationResult{
		Status:         status,
		ProductName:    table.Batch.ProductName.pick(lang),
		Manufacturer:   "Unknown",
		BatchCode:      code,
		Confidence:     confidence,
		Reasoning:      table.Batch.Reasoning[string(status)].pick(lang),
		SafetyCheck:    table.Batch.SafetyCheck.pick(lang),
		OnlineEvidence: table.Batch.OnlineEvidence.pick(lang),
		Sources:        []types.Source{},
	}
}

// ImageFailed is the record shown when a package photo could not be analysed.
func ImageFailed(lang types.Language) types.VerificationResult {
	t := table.ImageFailed.pick(lang)
	return types.VerificationResult{
		Status:         types.StatusUnknown,
		ProductName:    t.ProductName,
		Manufacturer:   "Unknown",
		BatchCode:      "N/A",
		Confidence:     0,
		Reasoning:      t.Reasoning,
		SafetyCheck:    t.SafetyCheck,
		OnlineEvidence: t.OnlineEvidence,
		Sources:        []types.Source{},
	}
}

// Advisory is the generic advice for crop and stage when the model gives
// nothing usable.
func Advisory(crop, stage string, lang types.Language) types.AdvisoryResponse {
	t := table.Advisory.pick(lang)
	sched := make([]types.ScheduleEntry, 0, len(t.Schedule))
	for _, s := range t.Schedule {
		sched = append(sched, types.ScheduleEntry{Day: s.Day, Activity: s.Activity})
	}
	return types.AdvisoryResponse{
		Crop:  crop,
		Stage: stage,
		Recommendations: types.Recommendations{
			Fertilizer:       t.Fertilizer,
			Dosage:           t.Dosage,
			PestControl:      t.PestControl,
			CostSavingTip:    t.CostSavingTip,
			SoilHealthImpact: t.SoilHealthImpact,
		},
		Schedule:    sched,
		WeatherRisk: t.WeatherRisk,
		Warnings:    clone(t.Warnings),
	}
}

// Market has no rule-based data; the fallback is an empty list.
func Market() []types.MarketData { return []types.MarketData{} }

// Weather has no rule-based data; the fallback is an empty list.
func Weather() []types.WeatherAlert { return []types.WeatherAlert{} }
