// Package handle exposes the advisory assemblers over HTTP. Every assembler
// endpoint answers 200 with a result envelope; 4xx is reserved for requests
// that cannot be assembled at all.
package handle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/calendar"
)

const (
	defaultDeadline = 180 * time.Second
	maxBodyBytes    = 12 << 20 // room for a base64 photo
)

type Options struct {
	DefaultLanguage types.Language
	SoilTests       SoilTests // nil disables /v1/soil/tests
	FarmPlans       FarmPlans // nil skips saving calendars and disables /v1/plans
	IDs             calendar.IDGenerator
	Now             func() time.Time // time.Now when nil
	Logger          *zap.Logger
}

type Handle struct {
	svc       *advisory.Service
	lang      types.Language
	soilTests SoilTests
	farmPlans FarmPlans
	ids       calendar.IDGenerator
	now       func() time.Time
	log       *zap.Logger
}

func New(svc *advisory.Service, opts Options) *Handle {
	h := &Handle{
		svc:       svc,
		lang:      opts.DefaultLanguage,
		soilTests: opts.SoilTests,
		farmPlans: opts.FarmPlans,
		ids:       opts.IDs,
		now:       opts.Now,
		log:       opts.Logger,
	}
	if !h.lang.Valid() {
		h.lang = types.Baseline
	}
	if h.ids == nil {
		h.ids = calendar.UUIDGenerator{}
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	h.log = h.log.With(zap.String("component", "http"))
	return h
}

// Register mounts every endpoint on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/verify/image", h.VerifyImage)
	mux.HandleFunc("/v1/verify/batch", h.VerifyBatch)
	mux.HandleFunc("/v1/advisory", h.Advisory)
	mux.HandleFunc("/v1/market", h.Market)
	mux.HandleFunc("/v1/weather", h.Weather)
	mux.HandleFunc("/v1/soil/analyze", h.SoilAnalyze)
	mux.HandleFunc("/v1/calendar", h.Calendar)
	mux.HandleFunc("/v1/overview", h.Overview)
	mux.HandleFunc("/v1/soil/tests", h.SoilTests)
	mux.HandleFunc("/v1/soil/tests/{id}", h.SoilTest)
	mux.HandleFunc("/v1/plans", h.Plans)
	mux.HandleFunc("/v1/plans/{id}/tasks", h.PlanTasks)
	mux.HandleFunc("/v1/tasks/{id}/complete", h.CompleteTask)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodePOST rejects other methods and decodes the JSON body into v. It
// writes the error response itself and reports whether to go on.
func decodePOST(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return false
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}

// requestContext bounds the request by X-Request-Timeout or ?timeoutSec=
// (seconds), 180s by default.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := defaultDeadline
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

func (h *Handle) language(code string) types.Language {
	if code == "" {
		return h.lang
	}
	return types.ParseLanguage(code)
}
