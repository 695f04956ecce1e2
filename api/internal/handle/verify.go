package handle

import (
	"net/http"
	"strings"

	"krishi-advisor/api/internal/util"
)

type VerifyImageRequest struct {
	ImageB64 string `json:"image_b64"`
	MIME     string `json:"mime,omitempty"`
	Language string `json:"language,omitempty"`
}

func (h *Handle) VerifyImage(w http.ResponseWriter, r *http.Request) {
	var req VerifyImageRequest
	if !decodePOST(w, r, &req) {
		return
	}
	img, hint, err := util.DecodeBase64MaybeDataURL(req.ImageB64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad image_b64")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	out := h.svc.VerifyProductImage(ctx, img, util.PickMIME(req.MIME, hint, img), h.language(req.Language))
	writeJSON(w, http.StatusOK, out)
}

type VerifyBatchRequest struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

func (h *Handle) VerifyBatch(w http.ResponseWriter, r *http.Request) {
	var req VerifyBatchRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}
	writeJSON(w, http.StatusOK, h.svc.VerifyBatchCode(req.Code, h.language(req.Language)))
}
