package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

// TrialHandler is called by tenant registration to open the trial.
type TrialHandler struct {
	registerUC registerTrialUseCase
	logger     logger.Interface
}

func NewTrialHandler(registerUC registerTrialUseCase, logger logger.Interface) *TrialHandler {
	return &TrialHandler{
		registerUC: registerUC,
		logger:     logger,
	}
}

type RegisterTrialRequest struct {
	PlanID       uint   `json:"plan_id"`
	PlanSlug     string `json:"plan_slug" binding:"max=50"`
	BillingCycle string `json:"billing_cycle" binding:"omitempty,oneof=monthly yearly"`
}

// RegisterTrial handles POST /internal/tenants/:tenant_id/trial
func (h *TrialHandler) RegisterTrial(c *gin.Context) {
	tenantID, err := utils.ParseUintParam(c, "tenant_id", "tenant")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RegisterTrialRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.registerUC.Execute(c.Request.Context(), usecases.RegisterTrialCommand{
		TenantID:     tenantID,
		PlanID:       req.PlanID,
		PlanSlug:     req.PlanSlug,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result.Subscription, "trial started")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "trial already exists", result.Subscription)
}
