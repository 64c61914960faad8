package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sivec/internal/domain/driver"
	"sivec/internal/domain/guia"
	"sivec/internal/domain/invoice"
	"sivec/internal/domain/trip"
	"sivec/internal/domain/user"
	"sivec/internal/domain/vehicle"
	"sivec/internal/general/jwt"
	"sivec/internal/general/logger"
	"sivec/internal/general/websocket"
	"sivec/internal/ports"
	"sivec/internal/software/dispatch/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// DispatchHTTPHandler adapts HTTP requests to the DispatchService.
type DispatchHTTPHandler struct {
	svc    ports.DispatchService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *websocket.Hub
}

// NewDispatchHTTPHandler wires an HTTP handler around the DispatchService.
func NewDispatchHTTPHandler(
	svc ports.DispatchService,
	logger *logger.Logger,
	auth *jwt.Manager,
	hub *websocket.Hub,
) *DispatchHTTPHandler {
	return &DispatchHTTPHandler{svc: svc, logger: logger, auth: auth, hub: hub}
}

// RegisterRoutes mounts dispatch endpoints on the provided mux.
func (handler *DispatchHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /facturas",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleAssignInvoice),
	)
	mux.HandleFunc("POST /guias",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleLinkNote),
	)
	mux.HandleFunc("PATCH /guias/{guia_id}/estado",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleDriver, user.RoleAdmin)(handler.handleNoteStatus),
	)
	mux.HandleFunc("GET /viajes/{viaje_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleDriver, user.RoleAdmin)(handler.handleGetTrip),
	)

	// the WebSocket endpoint authenticates during the handshake itself
	mux.HandleFunc("GET /ws/despacho", websocket.ConnectHandler(handler.auth, handler.hub, handler.logger))

	mux.HandleFunc("GET /despacho/health", handler.handleHealth)
	mux.HandleFunc("POST /tokens", handler.handleCreateToken)
}

func (handler *DispatchHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	handler.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// ----- token issuance -----

type TokenRequest struct {
	UserID string    `json:"user_id"`
	Role   user.Role `json:"role"`
	Branch string    `json:"sucursal"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Role      user.Role `json:"role"`
	Branch    string    `json:"sucursal,omitempty"`
}

func (handler *DispatchHTTPHandler) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	tokenString, claims, err := handler.auth.IssueUserToken(req.UserID, req.Role, strings.TrimSpace(req.Branch))
	if err != nil {
		handler.httpError(ctx, w, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	response := TokenResponse{
		Token:     tokenString,
		ExpiresAt: claims.ExpiresAt.Time,
		UserID:    req.UserID,
		Role:      req.Role,
		Branch:    claims.Branch,
	}

	handler.logger.Info(ctx, "token_generated", "JWT token generated successfully",
		map[string]any{"user_id": req.UserID, "role": req.Role.String()})

	handler.jsonResponse(ctx, w, http.StatusCreated, response)
}

// ----- general helpers -----

// decodeStrict reads a bounded JSON body rejecting unknown fields.
func (handler *DispatchHTTPHandler) decodeStrict(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return false
	}
	return true
}

// serviceError translates service/domain errors to HTTP status codes.
func (handler *DispatchHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var driverBusy *trip.DriverBusyError
	var vehicleBusy *trip.VehicleBusyError
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, service.ErrTripNotFound), errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, invoice.ErrNotAssigned):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.As(err, &driverBusy), errors.As(err, &vehicleBusy),
		errors.Is(err, guia.ErrAlreadyFinalized):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, driver.ErrUnknownDriver), errors.Is(err, vehicle.ErrUnknownVehicle),
		errors.Is(err, vehicle.ErrInactiveVehicle), errors.Is(err, guia.ErrDuplicateNote),
		errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidStatus):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, service.ErrBranchForbidden):
		handler.httpError(ctx, w, http.StatusForbidden, err.Error(), err)
	case errors.As(err, &pgErr):
		handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
	default:
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	}
}

func (handler *DispatchHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *DispatchHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	} else if status == http.StatusConflict {
		action = "conflict_rejected"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *DispatchHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
