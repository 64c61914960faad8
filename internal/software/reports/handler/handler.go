package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"sivec/internal/domain/user"
	"sivec/internal/general/jwt"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
)

// ReportsHTTPHandler adapts HTTP requests to the ReportsService.
type ReportsHTTPHandler struct {
	svc    ports.ReportsService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewReportsHTTPHandler wires an HTTP handler around the ReportsService.
func NewReportsHTTPHandler(svc ports.ReportsService, logger *logger.Logger, auth *jwt.Manager) *ReportsHTTPHandler {
	return &ReportsHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts reporting endpoints on the provided mux.
func (handler *ReportsHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /reportes/resumen",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleSummary),
	)
}

// ----- Handler: GET /reportes/resumen -----

func (handler *ReportsHTTPHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	// dispatchers always report on their own branch; admins choose via query
	claims := jwt.RequireClaims(r)
	branch := strings.TrimSpace(r.URL.Query().Get("sucursal"))
	if claims != nil && claims.Role.IsDispatcher() && claims.Branch != "" {
		branch = claims.Branch
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.BranchSummary(ctxWithTimeout, branch)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to build summary", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- general helpers -----

func (handler *ReportsHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *ReportsHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	handler.logger.Error(ctx, "request_failed", msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *ReportsHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		var b [12]byte
		_, _ = rand.Read(b[:])
		reqID = hex.EncodeToString(b[:])
	}
	return handler.logger.WithRequestID(ctx, reqID)
}
