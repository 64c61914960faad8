package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sivec/internal/general/jwt"
	"sivec/internal/software/dispatch/service"
)

// ----- Handler: GET /viajes/{viaje_id} -----

func (handler *DispatchHTTPHandler) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	tripID := strings.TrimSpace(r.PathValue("viaje_id"))
	if tripID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "viaje_id is required", nil)
		return
	}
	ctx = handler.logger.WithTripID(ctx, tripID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.GetTrip(ctxWithTimeout, tripID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	// dispatchers only see their own branch; admins and drivers see all
	if claims.Role.IsDispatcher() && claims.Branch != "" && res.Branch != "" && res.Branch != claims.Branch {
		handler.serviceError(ctxWithTimeout, w, service.ErrBranchForbidden)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
