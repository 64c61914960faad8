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
	"sivec/internal/domain/user"
	"sivec/internal/domain/vehicle"
	"sivec/internal/general/jwt"
	"sivec/internal/general/logger"
	"sivec/internal/ports"
	"sivec/internal/software/fleet/service"
)

// FleetHTTPHandler adapts HTTP requests to the FleetService.
type FleetHTTPHandler struct {
	svc    ports.FleetService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewFleetHTTPHandler wires an HTTP handler around the FleetService.
func NewFleetHTTPHandler(svc ports.FleetService, logger *logger.Logger, auth *jwt.Manager) *FleetHTTPHandler {
	return &FleetHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts fleet endpoints on the provided mux.
func (handler *FleetHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /vehiculos",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleCreateVehicle),
	)
	mux.HandleFunc("GET /vehiculos",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleListVehicles),
	)
	mux.HandleFunc("PATCH /vehiculos/{numero}/estado",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleVehicleActive),
	)
	mux.HandleFunc("POST /pilotos",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleCreateDriver),
	)
	mux.HandleFunc("GET /pilotos",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDispatcher, user.RoleAdmin)(handler.handleListRoster),
	)
}

// --- Request DTOs (HTTP boundary) ---

type createVehicleRequest struct {
	Number string `json:"numero"`
	Plate  string `json:"placa"`
	Branch string `json:"sucursal"`
}

type vehicleActiveRequest struct {
	Active bool `json:"activo"`
}

type createDriverRequest struct {
	Name  string `json:"nombre"`
	Notes string `json:"observaciones"`
}

// ----- Handler: POST /vehiculos -----

func (handler *FleetHTTPHandler) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createVehicleRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.CreateVehicle(ctxWithTimeout, ports.CreateVehicleInput{
		Number: strings.TrimSpace(req.Number),
		Plate:  strings.TrimSpace(req.Plate),
		Branch: strings.TrimSpace(req.Branch),
	})
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// ----- Handler: GET /vehiculos -----

func (handler *FleetHTTPHandler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	branch := strings.TrimSpace(r.URL.Query().Get("sucursal"))
	if claims != nil && claims.Role.IsDispatcher() && claims.Branch != "" {
		branch = claims.Branch
	}
	onlyActive := r.URL.Query().Get("activos") == "true"

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ListVehicles(ctxWithTimeout, branch, onlyActive)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- Handler: PATCH /vehiculos/{numero}/estado -----

func (handler *FleetHTTPHandler) handleVehicleActive(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	number := strings.TrimSpace(r.PathValue("numero"))
	if number == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "numero is required", nil)
		return
	}

	var req vehicleActiveRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := handler.svc.SetVehicleActive(ctxWithTimeout, number, req.Active); err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, map[string]any{"numero": number, "activo": req.Active})
}

// ----- Handler: POST /pilotos -----

func (handler *FleetHTTPHandler) handleCreateDriver(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createDriverRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.CreateTemporaryDriver(ctxWithTimeout, strings.TrimSpace(req.Name), strings.TrimSpace(req.Notes))
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// ----- Handler: GET /pilotos -----

func (handler *FleetHTTPHandler) handleListRoster(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.ListRoster(ctxWithTimeout)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}

// ----- general helpers -----

func (handler *FleetHTTPHandler) decodeStrict(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
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

func (handler *FleetHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVehicleExists), errors.Is(err, service.ErrDriverExists):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, vehicle.ErrUnknownVehicle), errors.Is(err, driver.ErrUnknownDriver):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, vehicle.ErrNumberRequired), errors.Is(err, vehicle.ErrPlateRequired),
		errors.Is(err, vehicle.ErrBranchRequired), errors.Is(err, driver.ErrNameRequired):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

func (handler *FleetHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
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

func (handler *FleetHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *FleetHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
