package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/constants"
	"github.com/staffhub/staffhub/internal/shared/errors"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives provider callbacks. Anything past signature
// verification is acknowledged with 200 so the provider stops retrying; the
// outcome is kept in the delivery log instead.
type WebhookHandler struct {
	ingestUC ingestWebhookUseCase
	logger   logger.Interface
}

func NewWebhookHandler(ingestUC ingestWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		ingestUC: ingestUC,
		logger:   logger,
	}
}

// HandlePayments handles POST /webhooks/payments
func (h *WebhookHandler) HandlePayments(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("unreadable body"))
		return
	}

	result, err := h.ingestUC.Execute(c.Request.Context(), usecases.IngestWebhookCommand{
		RawBody:   body,
		Signature: c.GetHeader(constants.HeaderWebhookSignature),
		EventID:   c.GetHeader(constants.HeaderWebhookEventID),
	})
	if err != nil {
		if errors.IsSignatureError(err) {
			h.logger.Warnw("webhook with invalid signature",
				"client_ip", c.ClientIP(),
				"event_id", c.GetHeader(constants.HeaderWebhookEventID),
			)
			utils.ErrorResponseWithError(c, err)
			return
		}
		h.logger.Errorw("webhook processing failed", "error", err)
		utils.SuccessResponse(c, http.StatusOK, "received", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "received", gin.H{
		"event":   result.EventType,
		"outcome": result.Outcome,
	})
}
