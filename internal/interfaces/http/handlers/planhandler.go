package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalog "github.com/staffhub/staffhub/internal/application/catalog/usecases"
	"github.com/staffhub/staffhub/internal/shared/logger"
	"github.com/staffhub/staffhub/internal/shared/utils"
)

type PlanHandler struct {
	listPlansUC      listPlansUseCase
	getPlanUC        getPlanUseCase
	createPlanUC     createPlanUseCase
	updatePlanUC     updatePlanUseCase
	deactivatePlanUC deactivatePlanUseCase
	logger           logger.Interface
}

func NewPlanHandler(
	listPlansUC listPlansUseCase,
	getPlanUC getPlanUseCase,
	createPlanUC createPlanUseCase,
	updatePlanUC updatePlanUseCase,
	deactivatePlanUC deactivatePlanUseCase,
	logger logger.Interface,
) *PlanHandler {
	return &PlanHandler{
		listPlansUC:      listPlansUC,
		getPlanUC:        getPlanUC,
		createPlanUC:     createPlanUC,
		updatePlanUC:     updatePlanUC,
		deactivatePlanUC: deactivatePlanUC,
		logger:           logger,
	}
}

// ListPublicPlans handles GET /plans
func (h *PlanHandler) ListPublicPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context(), false)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plans)
}

// GetPublicPlan handles GET /plans/:id, where id is a numeric id or a slug.
func (h *PlanHandler) GetPublicPlan(c *gin.Context) {
	plan, err := h.getPlanUC.Execute(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plan)
}

// ListAllPlans handles GET /admin/plans, including deactivated plans.
func (h *PlanHandler) ListAllPlans(c *gin.Context) {
	plans, err := h.listPlansUC.Execute(c.Request.Context(), true)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", plans)
}

// CreatePlan handles POST /admin/plans
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req catalog.PlanInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	plan, err := h.createPlanUC.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, plan, "plan created")
}

// UpdatePlan handles PUT /admin/plans/:id. The slug is immutable.
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req catalog.PlanInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	plan, err := h.updatePlanUC.Execute(c.Request.Context(), planID, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan updated", plan)
}

// DeactivatePlan handles POST /admin/plans/:id/deactivate
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, err := utils.ParseUintParam(c, "id", "plan")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	plan, err := h.deactivatePlanUC.Execute(c.Request.Context(), planID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan deactivated", plan)
}
