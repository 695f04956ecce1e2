package handle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/store"
)

// SoilTests is the persistence the soil-test endpoints need;
// *store.SoilTestRepo implements it.
type SoilTests interface {
	Save(ctx context.Context, t *types.SoilTest) error
	Get(ctx context.Context, userID, id string) (*types.SoilTest, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]types.SoilTest, error)
	Delete(ctx context.Context, userID, id string) error
}

// SoilRequest carries the readings as pointers so that an omitted reading
// is told apart from a measured zero.
type SoilRequest struct {
	PH            *float64 `json:"ph"`
	Nitrogen      *float64 `json:"nitrogen"`
	Phosphorus    *float64 `json:"phosphorus"`
	Potassium     *float64 `json:"potassium"`
	OrganicMatter *float64 `json:"organic_matter"`
	Location      string   `json:"location,omitempty"`
	Crop          string   `json:"crop,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// inputs checks that every reading is present and in range.
func (req SoilRequest) inputs() (types.SoilInputs, error) {
	var missing []string
	read := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	in := types.SoilInputs{
		PH:            read("ph", req.PH),
		Nitrogen:      read("nitrogen", req.Nitrogen),
		Phosphorus:    read("phosphorus", req.Phosphorus),
		Potassium:     read("potassium", req.Potassium),
		OrganicMatter: read("organic_matter", req.OrganicMatter),
		Location:      req.Location,
		Crop:          req.Crop,
	}
	if len(missing) > 0 {
		return types.SoilInputs{}, fmt.Errorf("%w: missing %s", types.ErrInvalidSoil, strings.Join(missing, ", "))
	}
	if err := in.Validate(); err != nil {
		return types.SoilInputs{}, err
	}
	return in, nil
}

func (h *Handle) SoilAnalyze(w http.ResponseWriter, r *http.Request) {
	var req SoilRequest
	if !decodePOST(w, r, &req) {
		return
	}
	in, err := req.inputs()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, h.svc.SoilAnalysis(ctx, in, h.language(req.Language)))
}

type SaveSoilTestResponse struct {
	Test     types.SoilTest                    `json:"test"`
	Analysis types.Result[types.SoilAnalysis] `json:"analysis"`
}

// SoilTests lists (GET) or analyses and saves (POST) the tests of ?user_id=.
func (h *Handle) SoilTests(w http.ResponseWriter, r *http.Request) {
	if h.soilTests == nil {
		writeError(w, http.StatusNotImplemented, "storage is not configured")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.soilTests.ListByUser(r.Context(), userID, 0)
		if err != nil {
			h.log.Error("list soil tests", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var req SoilRequest
		if !decodePOST(w, r, &req) {
			return
		}
		in, err := req.inputs()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ctx, cancel := requestContext(r)
		defer cancel()
		analysis := h.svc.SoilAnalysis(ctx, in, h.language(req.Language))

		t := types.SoilTest{
			UserID:          userID,
			Location:        in.Location,
			PH:              in.PH,
			Nitrogen:        in.Nitrogen,
			Phosphorus:      in.Phosphorus,
			Potassium:       in.Potassium,
			OrganicMatter:   in.OrganicMatter,
			Recommendations: analysis.Value.Summary,
		}
		if err := h.soilTests.Save(ctx, &t); err != nil {
			h.log.Error("save soil test", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		writeJSON(w, http.StatusCreated, SaveSoilTestResponse{Test: t, Analysis: analysis})

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST only")
	}
}

// SoilTest reads (GET) or deletes (DELETE) one test of ?user_id=.
func (h *Handle) SoilTest(w http.ResponseWriter, r *http.Request) {
	if h.soilTests == nil {
		writeError(w, http.StatusNotImplemented, "storage is not configured")
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	id := r.PathValue("id")
	if userID == "" || id == "" {
		writeError(w, http.StatusBadRequest, "user_id and id are required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := h.soilTests.Get(r.Context(), userID, id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			h.log.Error("get soil test", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		err := h.soilTests.Delete(r.Context(), userID, id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			h.log.Error("delete soil test", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "storage error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or DELETE only")
	}
}
