package handle

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/calendar"
)

// FarmPlans keeps generated calendars and serves them back;
// *store.FarmPlanRepo implements it.
type FarmPlans interface {
	Create(ctx context.Context, p *types.FarmPlan) error
	SaveTasks(ctx context.Context, planID string, tasks []types.CalendarTask) error
	Get(ctx context.Context, userID, id string) (*types.FarmPlan, error)
	ListByUser(ctx context.Context, userID string) ([]types.FarmPlan, error)
	ListTasks(ctx context.Context, planID string) ([]types.CalendarTask, error)
	CompleteTask(ctx context.Context, userID, taskID string, at time.Time) error
}

type CalendarRequest struct {
	FarmPlanID string  `json:"farm_plan_id,omitempty"`
	UserID     string  `json:"user_id,omitempty"`
	Crop       string  `json:"crop"`
	LandAcres  float64 `json:"land_acres"`
	SowingDate string  `json:"sowing_date"`
	Location   string  `json:"location"`
	SoilType   string  `json:"soil_type,omitempty"`
	Language   string  `json:"language,omitempty"`
}

type CalendarResponse struct {
	types.Result[[]types.CropCalendarTaskTemplate]
	Plan  types.FarmPlan       `json:"plan"`
	Tasks []types.CalendarTask `json:"tasks"`
}

// Calendar generates task templates and dates them from the sowing day.
// With user_id and storage configured the plan and its tasks are saved.
func (h *Handle) Calendar(w http.ResponseWriter, r *http.Request) {
	var req CalendarRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Crop) == "" {
		writeError(w, http.StatusBadRequest, "crop is required")
		return
	}
	if req.LandAcres <= 0 {
		writeError(w, http.StatusBadRequest, "land_acres must be positive")
		return
	}
	if _, err := calendar.ParseDate(req.SowingDate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res := h.svc.CropCalendar(ctx, advisory.CalendarRequest{
		Crop:       req.Crop,
		LandAcres:  req.LandAcres,
		SowingDate: req.SowingDate,
		Location:   req.Location,
		SoilType:   req.SoilType,
	}, h.language(req.Language))

	plan := types.FarmPlan{
		ID:         req.FarmPlanID,
		UserID:     req.UserID,
		Crop:       req.Crop,
		LandAcres:  req.LandAcres,
		SowingDate: strings.TrimSpace(req.SowingDate),
	}
	persist := h.farmPlans != nil && req.UserID != ""
	if persist {
		if err := h.farmPlans.Create(ctx, &plan); err != nil {
			h.log.Error("create farm plan", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
	}

	tasks, err := calendar.MapTemplates(plan, res.Value, h.ids)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if persist {
		if err := h.farmPlans.SaveTasks(ctx, plan.ID, tasks); err != nil {
			h.log.Error("save calendar tasks", zap.Error(err), zap.String("plan", plan.ID))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Result: res, Plan: plan, Tasks: tasks})
}
