package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/handler/http/middleware"
	"github.com/chocoalano/esas-api/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PresenceHandler interface {
	Redeem(w http.ResponseWriter, r *http.Request)
	IssueToken(w http.ResponseWriter, r *http.Request)
	QRCode(w http.ResponseWriter, r *http.Request)
	Events(w http.ResponseWriter, r *http.Request)
}

type presenceHandlerImpl struct {
	presenceService presence.PresenceService
	keepalive       time.Duration
}

func NewPresenceHandler(presenceService presence.PresenceService) PresenceHandler {
	return &presenceHandlerImpl{
		presenceService: presenceService,
		keepalive:       30 * time.Second,
	}
}

// Redeem implements PresenceHandler.
func (h *presenceHandlerImpl) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req presence.RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.presenceService.Redeem(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, result.Message, result)
}

// IssueToken implements PresenceHandler.
func (h *presenceHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := middleware.CompanyIDFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req presence.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CompanyID = companyID

	result, err := h.presenceService.Issue(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Presence token created", result)
}

// QRCode implements PresenceHandler.
func (h *presenceHandlerImpl) QRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := middleware.CompanyIDFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid token id", nil)
		return
	}

	png, err := h.presenceService.QRCode(ctx, companyID, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.PNG(w, png)
}

// Events streams redemptions of the caller's company as server-sent events.
func (h *presenceHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := middleware.CompanyIDFromContext(ctx)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.presenceService.Subscribe(ctx, companyID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"company_id\":%d}\n\n", companyID)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-ctx.Done():
			return
		}
	}
}
