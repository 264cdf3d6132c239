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

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List returns a paginated catalog filtered by name, type and active flag.
func (h *ProductsHandler) List(c *gin.Context) {
	var q dto.ProductFilter
	if !bindAndValidateQuery(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single product.
func (h *ProductsHandler) Get(c *gin.Context) {
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

// AdjustStock godoc
// @Summary      Manual stock adjustment
// @Description  Applies a signed delta through the ledger as manual_adjustment. A delta that would drive stock negative is rejected.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                 true "Product UUID"
// @Param        body body dto.AdjustStockRequest true "Signed quantity and reason"
// @Success      201  {object} dto.MovementResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/products/{id}/adjust-stock [post]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements returns the audit trail, newest first, optionally scoped to a
// product or movement kind.
func (h *ProductsHandler) ListMovements(c *gin.Context) {
	var q dto.MovementFilterQuery
	if !bindAndValidateQuery(c, &q) {
		return
	}
	filter := repository.MovementFilter{
		Kind:  q.Kind,
		Page:  q.Page,
		Limit: q.Limit,
	}
	if q.ProductID != "" {
		pid, err := uuid.Parse(q.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product_id"))
			return
		}
		filter.ProductID = &pid
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
