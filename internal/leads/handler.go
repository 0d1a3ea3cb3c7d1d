package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/didax-edu/site-api/pkg/logging"
)

// DefaultBodyLimit matches the 250kb JSON limit of the public endpoint.
const DefaultBodyLimit int64 = 250 * 1024

const (
	msgInvalidPayload = "Invalid payload"
	msgInternalError  = "Internal server error"
)

// Submitter is the part of Service the HTTP layer needs.
type Submitter interface {
	Intake(body []byte) (*Lead, error)
	Submit(ctx context.Context, lead *Lead, meta RequestMeta) (Outcome, error)
}

// Handler handles HTTP requests for leads
type Handler struct {
	svc       Submitter
	logger    *logging.Logger
	bodyLimit int64
}

// NewHandler creates a new leads handler. A non-positive bodyLimit uses
// DefaultBodyLimit.
func NewHandler(svc Submitter, logger *logging.Logger, bodyLimit int64) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if bodyLimit <= 0 {
		bodyLimit = DefaultBodyLimit
	}
	return &Handler{
		svc:       svc,
		logger:    logger,
		bodyLimit: bodyLimit,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string           `json:"message"`
	Errors  *ValidationError `json:"errors"`
}

type createdResponse struct {
	OK bool  `json:"ok"`
	ID int64 `json:"id"`
}

// CreatePublicLead handles POST /api/public/leads requests
func (h *Handler) CreatePublicLead(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.bodyLimit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, messageResponse{Message: "Payload too large"})
			return
		}
		h.logger.Warn("failed to read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return
	}

	lead, err := h.svc.Intake(body)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: msgInvalidPayload, Errors: verr})
			return
		}
		h.logger.Error("failed to validate lead", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternalError})
		return
	}

	outcome, err := h.svc.Submit(r.Context(), lead, CaptureRequestMeta(r))
	switch {
	case errors.Is(err, ErrThrottled):
		writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: "Too many submissions, try again later"})
		return
	case err != nil:
		h.logger.Error("failed to create lead", "error", err, "product", lead.Product)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternalError})
		return
	}

	if outcome.Spam {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{OK: true, ID: outcome.ID})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
