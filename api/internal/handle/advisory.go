package handle

import (
	"net/http"
	"strings"

	"krishi-advisor/api/internal/advisory"
)

type AdvisoryRequest struct {
	Crop     string `json:"crop"`
	Stage    string `json:"stage"`
	SoilType string `json:"soil_type"`
	Language string `json:"language,omitempty"`
}

func (h *Handle) Advisory(w http.ResponseWriter, r *http.Request) {
	var req AdvisoryRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Crop) == "" || strings.TrimSpace(req.Stage) == "" {
		writeError(w, http.StatusBadRequest, "crop and stage are required")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, h.svc.CropAdvisory(ctx, req.Crop, req.Stage, req.SoilType, h.language(req.Language)))
}

type LocationRequest struct {
	Location string `json:"location"`
	Language string `json:"language,omitempty"`
}

func (h *Handle) Market(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, h.svc.MarketData(ctx, req.Location, h.language(req.Language)))
}

func (h *Handle) Weather(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeError(w, http.StatusBadRequest, "location is required")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, h.svc.WeatherAlerts(ctx, req.Location, h.language(req.Language)))
}

type OverviewRequest struct {
	Crop     string `json:"crop"`
	Stage    string `json:"stage"`
	SoilType string `json:"soil_type"`
	Location string `json:"location"`
	Language string `json:"language,omitempty"`
}

func (h *Handle) Overview(w http.ResponseWriter, r *http.Request) {
	var req OverviewRequest
	if !decodePOST(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	out := h.svc.Overview(ctx, advisory.OverviewRequest{
		Crop:     req.Crop,
		Stage:    req.Stage,
		SoilType: req.SoilType,
		Location: req.Location,
	}, h.language(req.Language))
	writeJSON(w, http.StatusOK, out)
}
