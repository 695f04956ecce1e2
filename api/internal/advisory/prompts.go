package advisory

import (
	"fmt"
	"strconv"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func verifyImagePrompt(lang types.Language) string {
	l := lang.Name()
	return fmt.Sprintf(`You are a fraud detection officer for agricultural inputs in India.

A farmer sent a photo of an agricultural input package (seed, fertilizer or pesticide). Check it for authenticity:
1. Identify the product name, manufacturer and the batch/lot code if visible.
2. Check visual quality: logo clarity, spelling, packaging condition, holograms and watermarks.
3. Decide whether the package looks genuine or suspicious and explain the risk.

Write every description in %[1]s. Keep JSON keys in English.

Return ONLY this JSON, no markdown:
{
  "status": "GENUINE" | "SUSPICIOUS" | "FAKE" | "UNKNOWN",
  "productName": "product name in %[1]s",
  "manufacturer": "manufacturer name",
  "batchCode": "batch/lot code if visible",
  "confidence": 0-100,
  "reasoning": "visual signs you relied on, in %[1]s",
  "safetyCheck": "safety advice in %[1]s",
  "onlineEvidence": "assessment based on the visual inspection, in %[1]s"
}`, l)
}

func advisoryPrompt(crop, stage, soilType string, lang types.Language) string {
	l := lang.Name()
	return fmt.Sprintf(`You are an Indian agronomist specialising in sustainable, low-cost farming.

Give advice for:
- Crop: %[2]s
- Growth stage: %[3]s
- Soil type: %[4]s

Cover the exact fertilizer dosage that avoids waste, pest control (organic first), soil health, a 7-day action schedule and the weather risk.
Write every description in %[1]s.

Return ONLY this JSON:
{
  "crop": "%[2]s",
  "stage": "%[3]s",
  "recommendations": {
    "fertilizer": "fertilizer name in %[1]s",
    "dosage": "exact dosage per acre in %[1]s",
    "pestControl": "organic pest control in %[1]s",
    "costSavingTip": "cost-saving advice in %[1]s",
    "soilHealthImpact": "soil health impact in %[1]s"
  },
  "schedule": [
    {"day": "Day 1-2", "activity": "..."},
    {"day": "Day 3-4", "activity": "..."},
    {"day": "Day 5-7", "activity": "..."}
  ],
  "weatherRisk": "weather assessment in %[1]s",
  "warnings": ["warning in %[1]s"]
}`, l, crop, stage, orDefault(soilType, "not specified"))
}

func marketPrompt(location string, lang types.Language) string {
	l := lang.Name()
	return fmt.Sprintf(`You are an agricultural market expert for India.

List current mandi (APMC) prices near %[2]s for at least 8 crops, for example paddy, wheat, maize, cotton, soybean, onion, potato, tomato, mustard, chickpea.
For each crop give the average price, the trend (up, down or stable), the last 7 days of prices and 2-3 vendors (real APMC mandis of the region and one private trader).

Return ONLY a JSON array; names in English and %[1]s:
[
  {
    "item": "crop name",
    "avgPrice": 0,
    "unit": "Quintal",
    "trend": "up" | "down" | "stable",
    "priceHistory": [{"date": "YYYY-MM-DD", "price": 0}],
    "vendors": [{"name": "mandi name", "price": 0, "distance": "km", "rating": 4.5, "isGovt": true}]
  }
]`, l, location)
}

func weatherPrompt(location string, lang types.Language) string {
	l := lang.Name()
	return fmt.Sprintf(`You are a meteorological expert for Indian agriculture.

Location: %[2]s

Report severe weather alerts that matter to farmers (rain, heat, drought, frost, storm).
If there are none, return an empty array [].

Return ONLY a JSON array, texts in %[1]s:
[
  {
    "type": "RAIN" | "DROUGHT" | "FROST" | "STORM" | "HEAT" | "NONE",
    "severity": "LOW" | "MODERATE" | "HIGH" | "EXTREME",
    "title": "alert title",
    "description": "details",
    "action": "what the farmer should do"
  }
]`, l, location)
}

func soilPrompt(in types.SoilInputs, lang types.Language) string {
	l := lang.Name()
	loc := orDefault(in.Location, fallback.LocationDefault(lang))
	return fmt.Sprintf(`You are an Indian soil scientist, agronomist and farm economics advisor.

Soil test:
- pH: %[2]s
- Nitrogen: %[3]s kg/ha
- Phosphorus: %[4]s kg/ha
- Potassium: %[5]s kg/ha
- Organic matter: %[6]s%%
- Location: %[7]s
- Target crop: %[8]s

Write everything in %[1]s, using Indian units (kg/ha, quintal, acre, ₹). Rank profitable crops using market prices around %[7]s.

Return ONLY valid JSON, starting with { and ending with }:
{
  "summary": "overall assessment",
  "nutrientStatus": {
    "pH": {"status": "low|optimal|high", "interpretation": "...", "action": "..."},
    "nitrogen": {"status": "deficient|moderate|sufficient|excess", "interpretation": "...", "action": "..."},
    "phosphorus": {"status": "deficient|moderate|sufficient|excess", "interpretation": "...", "action": "..."},
    "potassium": {"status": "deficient|moderate|sufficient|excess", "interpretation": "...", "action": "..."},
    "organicMatter": {"status": "low|moderate|good|high", "interpretation": "...", "action": "..."}
  },
  "fertilizerRecommendations": [{"name": "...", "dosage": "kg/ha or kg/acre", "timing": "...", "notes": "..."}],
  "suitableCrops": ["..."],
  "profitableCrops": [{"crop": "...", "profitNote": "why it pays", "estimatedMargin": "₹X-Y per acre"}],
  "farmManagement": ["irrigation", "tillage", "crop rotation", "pest management"],
  "improvementTips": ["..."],
  "warnings": ["..."]
}`, l, num(in.PH), num(in.Nitrogen), num(in.Phosphorus), num(in.Potassium), num(in.OrganicMatter),
		loc, orDefault(in.Crop, "General"))
}

func calendarPrompt(req CalendarRequest, lang types.Language) string {
	l := lang.Name()
	soil := ""
	if req.SoilType != "" {
		soil = " Soil type: " + req.SoilType + "."
	}
	return fmt.Sprintf(`You are an Indian agronomist. Build a dense crop calendar with no long gaps.

- Crop: %[2]s
- Land: %[3]s acres
- Sowing date: %[4]s
- Location: %[5]s.%[6]s

Rules:
- Never leave more than 3-4 days without a task.
- Include land preparation, seed treatment, sowing, germination check, gap filling, irrigation every 7-10 days, split fertilizer doses, weeding, pest monitoring, spraying, harvest preparation and harvest.
- dayFromSowing counts days from sowing; negative means before sowing.
- stage is one of "Land prep", "Sowing", "Vegetative", "Flowering", "Fruiting", "Harvest".
- quantityHint is scaled for %[3]s acres.
- All text in %[1]s.

Return ONLY valid JSON:
{
  "tasks": [
    {"dayFromSowing": -14, "stage": "Land prep", "title": "...", "description": "...", "quantityHint": "..."}
  ]
}`, l, req.Crop, num(req.LandAcres), req.SowingDate, orDefault(req.Location, fallback.LocationDefault(lang)), soil)
}
