package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductionOrderRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required,gt=0"`
}

type StartProductionOrderRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required,uuid"`
}

// ProductionOrderFilterQuery is bound from query string of GET /v1/production-orders.
type ProductionOrderFilterQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductionOrderResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Status      string          `json:"status"`
	AssigneeID  *string         `json:"assignee_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
	StartedAt   *string         `json:"started_at,omitempty"`
	CompletedAt *string         `json:"completed_at,omitempty"`
}

type ProductionOrderListResponse struct {
	Data  []ProductionOrderResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
