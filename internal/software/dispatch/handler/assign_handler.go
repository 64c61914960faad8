package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sivec/internal/general/jwt"
	"sivec/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type assignInvoiceRequest struct {
	InvoiceNumber  string `json:"numero_factura"`
	DriverName     string `json:"piloto"`
	VehicleNumber  string `json:"numero_vehiculo"`
	AssignmentDate string `json:"fecha"` // optional, defaults to today
	Branch         string `json:"sucursal"`
	Notes          string `json:"observaciones"`
}

// ----- Handler: POST /facturas -----

func (handler *DispatchHTTPHandler) handleAssignInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req assignInvoiceRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	// dispatchers are pinned to their own branch
	branch := strings.TrimSpace(req.Branch)
	if claims.Role.IsDispatcher() && claims.Branch != "" {
		branch = claims.Branch
	}

	in := ports.AssignInvoiceInput{
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		DriverName:     strings.TrimSpace(req.DriverName),
		VehicleNumber:  strings.TrimSpace(req.VehicleNumber),
		AssignmentDate: strings.TrimSpace(req.AssignmentDate),
		Branch:         branch,
		Notes:          strings.TrimSpace(req.Notes),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.AssignInvoice(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = handler.logger.WithTripID(ctxWithTimeout, res.TripID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}
