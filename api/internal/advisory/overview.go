package advisory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"krishi-advisor/api/internal/advisory/types"
)

type OverviewRequest struct {
	Crop     string
	Stage    string
	SoilType string
	Location string
}

// Overview runs the advisory, market and weather assemblers concurrently.
// None of them fails, so neither does the overview; cancelling ctx cuts the
// in-flight model calls short and their fallbacks are returned.
func (s *Service) Overview(ctx context.Context, req OverviewRequest, lang types.Language) types.Overview {
	var out types.Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Advisory = s.CropAdvisory(gctx, req.Crop, req.Stage, req.SoilType, lang)
		return nil
	})
	g.Go(func() error {
		out.Market = s.MarketData(gctx, req.Location, lang)
		return nil
	})
	g.Go(func() error {
		out.Weather = s.WeatherAlerts(gctx, req.Location, lang)
		return nil
	})
	_ = g.Wait()
	return out
}
