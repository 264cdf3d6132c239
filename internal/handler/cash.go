package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/apierror"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/middleware"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/service"
)

type CashHandler struct{ svc service.CashService }

func NewCashHandler(svc service.CashService) *CashHandler { return &CashHandler{svc: svc} }

// Open godoc
// @Summary Open a cash session for a register
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Register and opening float"
// @Success 201 {object} dto.SessionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash-sessions [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	operatorID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegisterTransaction godoc
// @Summary Record a manual deposit or withdrawal in an open session
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path string                     true "Session UUID"
// @Param body body dto.CashTransactionRequest true "Transaction"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash-sessions/{id}/transactions [post]
func (h *CashHandler) RegisterTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CashTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegisterTransaction(c.Request.Context(), id, req); err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Close godoc
// @Summary      Close a session against a blind count
// @Description  Computes expected = opening + order totals + manual transactions, persists expected/actual/difference and freezes the session.
// @Tags         cash
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Session UUID"
// @Param        body body dto.CloseSessionRequest true "Counted amount"
// @Success      200  {object} dto.SessionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cash-sessions/{id}/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), id, req)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a session with its manual transactions.
func (h *CashHandler) Get(c *gin.Context) {
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
