package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/apierror"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/middleware"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/service"
)

type ProductionHandler struct{ svc service.ProductionService }

func NewProductionHandler(svc service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// Create godoc
// @Summary      Create a production order
// @Description  Runs the advisory feasibility check against the product's recipe; rejects when ingredients are short. Nothing is reserved.
// @Tags         production
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateProductionOrderRequest true "Product and quantity"
// @Success      201  {object} dto.ProductionOrderResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/production-orders [post]
func (h *ProductionHandler) Create(c *gin.Context) {
	var req dto.CreateProductionOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Start godoc
// @Summary      Start a pending production order
// @Tags         production
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} dto.ProductionOrderResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/production-orders/{id}/start [post]
func (h *ProductionHandler) Start(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	claims := middleware.GetClaims(c)
	assigneeID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Start(c.Request.Context(), id, assigneeID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Complete godoc
// @Summary      Complete a production order
// @Description  Re-resolves the recipe and atomically deducts every ingredient and credits the finished good. Rolls back entirely when any ingredient is short.
// @Tags         production
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} dto.ProductionOrderResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/production-orders/{id}/complete [post]
func (h *ProductionHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Complete(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancel a production order
// @Tags         production
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} dto.ProductionOrderResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/production-orders/{id}/cancel [post]
func (h *ProductionHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single production order.
func (h *ProductionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns a paginated list of production orders filtered by status.
func (h *ProductionHandler) List(c *gin.Context) {
	var q dto.ProductionOrderFilterQuery
	if !bindAndValidateQuery(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), repository.ProductionOrderFilter{
		Status: q.Status,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
