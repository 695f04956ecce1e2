package advisory

import (
	"context"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

var (
	marketFields = []llmjson.Field{
		llmjson.F("item", "item", "Item", "crop", "commodity"),
		llmjson.F("avgPrice", "avgPrice", "avg_price", "price", "modal_price"),
		llmjson.F("unit", "unit", "Unit"),
		llmjson.F("trend", "trend", "Trend"),
		llmjson.F("priceHistory", "priceHistory", "price_history", "history"),
		llmjson.F("vendors", "vendors", "Vendors", "mandis"),
	}
	pricePointFields = []llmjson.Field{
		llmjson.F("date"),
		llmjson.F("price"),
	}
	vendorFields = []llmjson.Field{
		llmjson.F("name", "name", "Name", "mandi"),
		llmjson.F("price"),
		llmjson.F("distance"),
		llmjson.F("rating"),
		llmjson.F("isGovt", "isGovt", "is_govt", "government"),
	}
)

const defaultUnit = "Quintal"

// MarketData lists mandi prices near location. Every element of the model's
// array must name its item; otherwise the answer is dropped as a whole.
func (s *Service) MarketData(ctx context.Context, location string, lang types.Language) types.Result[[]types.MarketData] {
	a := s.begin(DomainMarket)
	fb := fallback.Market()

	doc, reason := a.call(ctx, s.text, llm.Request{Prompt: marketPrompt(location, lang)})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}
	a.to(types.StateValidating)
	arr, ok := doc.([]any)
	if !ok || len(arr) == 0 {
		return fellBack(a, fb, types.ReasonShape)
	}

	out := make([]types.MarketData, 0, len(arr))
	for _, el := range arr {
		if _, ok := el.(map[string]any); !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		f := llmjson.Normalize(el, marketFields)
		item, ok := llmjson.String(f.Get("item"), 1)
		if !ok {
			return fellBack(a, fb, types.ReasonShape)
		}
		md := types.MarketData{
			Item:         item,
			AvgPrice:     numberOr(f.Get("avgPrice"), 0),
			Unit:         llmjson.StringOr(f.Get("unit"), 1, defaultUnit),
			Trend:        types.ParseTrend(llmjson.StringOr(f.Get("trend"), 1, "")),
			PriceHistory: []types.PricePoint{},
			Vendors:      []types.Vendor{},
		}
		if hist, ok := llmjson.List(f.Get("priceHistory")); ok {
			for _, h := range hist {
				if _, ok := h.(map[string]any); !ok {
					continue
				}
				hf := llmjson.Normalize(h, pricePointFields)
				md.PriceHistory = append(md.PriceHistory, types.PricePoint{
					Date:  llmjson.StringOr(hf.Get("date"), 1, ""),
					Price: numberOr(hf.Get("price"), 0),
				})
			}
		}
		if vendors, ok := llmjson.List(f.Get("vendors")); ok {
			for _, v := range vendors {
				if _, ok := v.(map[string]any); !ok {
					continue
				}
				vf := llmjson.Normalize(v, vendorFields)
				govt, _ := vf.Get("isGovt").Raw.(bool)
				md.Vendors = append(md.Vendors, types.Vendor{
					Name:     llmjson.StringOr(vf.Get("name"), 1, ""),
					Price:    numberOr(vf.Get("price"), 0),
					Distance: distance(vf.Get("distance")),
					Rating:   numberOr(vf.Get("rating"), 0),
					IsGovt:   govt,
				})
			}
		}
		out = append(out, md)
	}
	return accepted(a, out, nil)
}

func numberOr(v llmjson.Value, def float64) float64 {
	if n, ok := llmjson.Number(v); ok {
		return n
	}
	return def
}

// distance accepts "12 km" as well as a bare number of kilometres.
func distance(v llmjson.Value) string {
	if s, ok := llmjson.String(v, 1); ok {
		return s
	}
	if n, ok := llmjson.Number(v); ok {
		return num(n) + " km"
	}
	return ""
}
