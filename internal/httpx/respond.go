package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-shop-orders/internal/apperr"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type page struct {
	Data     any    `json:"data"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Count    int    `json:"count"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

var statusByKind = map[apperr.Kind]int{
	apperr.Validation:           http.StatusBadRequest,
	apperr.NotFound:             http.StatusNotFound,
	apperr.InvalidState:         http.StatusConflict,
	apperr.Conflict:             http.StatusConflict,
	apperr.ReferentialIntegrity: http.StatusUnprocessableEntity,
	apperr.ConsistencyAnomaly:   http.StatusInternalServerError,
	apperr.Unauthorized:         http.StatusUnauthorized,
}

// writeError answers with the status of err's kind and its message. Errors
// outside the taxonomy are logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	code, ok := statusByKind[apperr.KindOf(err)]
	msg := apperr.Message(err)
	if !ok || msg == "" {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		fail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if code >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	fail(w, code, msg)
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.New(apperr.Validation, "invalid json")
	}
	return nil
}
