package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/apierror"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/service"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// TransitionStatus godoc
// @Summary      Transition a sales order to a new status
// @Description  Moving into delivered deducts finished-goods stock exactly once, atomically with the status write. Re-sending delivered is a no-op for stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                           true "Order UUID"
// @Param        body body dto.TransitionOrderStatusRequest true "Target status"
// @Success      200  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders/{id}/status [put]
func (h *OrdersHandler) TransitionStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.TransitionOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.TransitionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single sales order with items.
func (h *OrdersHandler) Get(c *gin.Context) {
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

// List returns a paginated list of sales orders filtered by status.
func (h *OrdersHandler) List(c *gin.Context) {
	var q dto.SalesOrderFilterQuery
	if !bindAndValidateQuery(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), repository.SalesOrderFilter{
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
