package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sivec/internal/ports"
)

// --- Request DTOs (HTTP boundary) ---

type linkNoteRequest struct {
	NoteNumber    string `json:"numero_guia"`
	InvoiceNumber string `json:"numero_factura"`
	Detail        string `json:"detalle"`
	Address       string `json:"direccion_entrega"`
	EmissionDate  string `json:"fecha_emision"`
}

type noteStatusRequest struct {
	StatusCode  int    `json:"estado_id"`
	DeliveredAt string `json:"fecha_entrega"` // optional RFC3339; wins over server time
}

// ----- Handler: POST /guias -----

func (handler *DispatchHTTPHandler) handleLinkNote(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req linkNoteRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	in := ports.LinkDeliveryNoteInput{
		NoteNumber:    strings.TrimSpace(req.NoteNumber),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),
		Detail:        strings.TrimSpace(req.Detail),
		Address:       strings.TrimSpace(req.Address),
		EmissionDate:  strings.TrimSpace(req.EmissionDate),
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.LinkDeliveryNote(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = handler.logger.WithTripID(ctxWithTimeout, res.TripID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}

// ----- Handler: PATCH /guias/{guia_id}/estado -----

func (handler *DispatchHTTPHandler) handleNoteStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	noteID := strings.TrimSpace(r.PathValue("guia_id"))
	if noteID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "guia_id is required", nil)
		return
	}

	var req noteStatusRequest
	if !handler.decodeStrict(ctx, w, r, &req) {
		return
	}

	in := ports.UpdateNoteStatusInput{
		NoteID:    noteID,
		NewStatus: req.StatusCode,
	}
	if strings.TrimSpace(req.DeliveredAt) != "" {
		ts, err := time.Parse(time.RFC3339, req.DeliveredAt)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "fecha_entrega must be RFC3339", err)
			return
		}
		in.OccurredAt = &ts
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := handler.svc.UpdateDeliveryNoteStatus(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = handler.logger.WithTripID(ctxWithTimeout, res.TripID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, res)
}
