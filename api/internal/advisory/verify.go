package advisory

import (
	"context"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/llm"
	"krishi-advisor/api/internal/llmjson"
)

var verificationFields = []llmjson.Field{
	llmjson.F("status", "status", "Status", "verdict"),
	llmjson.F("productName", "productName", "product_name", "product"),
	llmjson.F("manufacturer", "manufacturer", "Manufacturer", "brand"),
	llmjson.F("batchCode", "batchCode", "batch_code", "batch", "lot"),
	llmjson.F("confidence", "confidence", "Confidence", "confidence_score"),
	llmjson.F("reasoning", "reasoning", "Reasoning", "reason"),
	llmjson.F("safetyCheck", "safetyCheck", "safety_check", "safety"),
	llmjson.F("onlineEvidence", "onlineEvidence", "online_evidence", "evidence"),
}

// VerifyProductImage checks a photo of an input package. The model answer is
// used only as a whole: it needs a known status and a numeric confidence.
func (s *Service) VerifyProductImage(ctx context.Context, image []byte, mimeType string, lang types.Language) types.Result[types.VerificationResult] {
	a := s.begin(DomainImage)
	fb := fallback.ImageFailed(lang)
	if len(image) == 0 {
		a.log.Warn("empty image")
		return fellBack(a, fb, types.ReasonTransport)
	}

	doc, reason := a.call(ctx, s.vision, llm.Request{
		Prompt:   verifyImagePrompt(lang),
		Image:    image,
		MIMEType: mimeType,
		JSON:     true,
	})
	if reason != types.ReasonNone {
		return fellBack(a, fb, reason)
	}

	if _, ok := doc.(map[string]any); !ok {
		return fellBack(a, fb, types.ReasonShape)
	}
	f := llmjson.Normalize(doc, verificationFields)
	a.to(types.StateValidating)

	statusText, ok := llmjson.String(f.Get("status"), 1)
	if !ok {
		return fellBack(a, fb, types.ReasonShape)
	}
	status, ok := types.ParseVerificationStatus(statusText)
	if !ok {
		return fellBack(a, fb, types.ReasonShape)
	}
	confidence, ok := llmjson.Number(f.Get("confidence"))
	if !ok {
		return fellBack(a, fb, types.ReasonShape)
	}

	return accepted(a, types.VerificationResult{
		Status:         status,
		ProductName:    llmjson.StringOr(f.Get("productName"), 1, fb.ProductName),
		Manufacturer:   llmjson.StringOr(f.Get("manufacturer"), 1, fb.Manufacturer),
		BatchCode:      llmjson.StringOr(f.Get("batchCode"), 1, ""),
		Confidence:     clampPercent(confidence),
		Reasoning:      llmjson.StringOr(f.Get("reasoning"), 1, ""),
		SafetyCheck:    llmjson.StringOr(f.Get("safetyCheck"), 1, fb.SafetyCheck),
		OnlineEvidence: llmjson.StringOr(f.Get("onlineEvidence"), 1, ""),
		Sources:        []types.Source{},
	}, nil)
}

// VerifyBatchCode classifies a batch code by rules only; no model is called.
func (s *Service) VerifyBatchCode(code string, lang types.Language) types.Result[types.VerificationResult] {
	a := s.begin(DomainBatch)
	return ruled(a, fallback.BatchCode(code, lang))
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
