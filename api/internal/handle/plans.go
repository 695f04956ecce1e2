package handle

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"krishi-advisor/api/internal/calendar"
	"krishi-advisor/api/internal/store"
)

// planUser returns ?user_id= after checking that plan storage is there. It
// writes the error response itself.
func (h *Handle) planUser(w http.ResponseWriter, r *http.Request, method string) (string, bool) {
	if h.farmPlans == nil {
		writeError(w, http.StatusNotImplemented, "storage is not configured")
		return "", false
	}
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, method+" only")
		return "", false
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return "", false
	}
	return userID, true
}

// Plans lists the farm plans of ?user_id=, newest first.
func (h *Handle) Plans(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.planUser(w, r, http.MethodGet)
	if !ok {
		return
	}
	plans, err := h.farmPlans.ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list farm plans", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// PlanTasks lists the tasks of one plan in date order. With ?days=N only
// the open tasks due in the next N days are returned.
func (h *Handle) PlanTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.planUser(w, r, http.MethodGet)
	if !ok {
		return
	}
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	planID := r.PathValue("id")
	if _, err := h.farmPlans.Get(r.Context(), userID, planID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.log.Error("get farm plan", zap.Error(err), zap.String("plan", planID))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	tasks, err := h.farmPlans.ListTasks(r.Context(), planID)
	if err != nil {
		h.log.Error("list calendar tasks", zap.Error(err), zap.String("plan", planID))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if days > 0 {
		tasks = calendar.Upcoming(tasks, h.now(), days)
	}
	writeJSON(w, http.StatusOK, tasks)
}

// CompleteTask marks one task of the user's plans done now.
func (h *Handle) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.planUser(w, r, http.MethodPost)
	if !ok {
		return
	}
	err := h.farmPlans.CompleteTask(r.Context(), userID, r.PathValue("id"), h.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.log.Error("complete task", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
