package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type TransitionOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid in_production ready in_transit delivered completed cancelled"`
}

// SalesOrderFilterQuery is bound from query string of GET /v1/orders.
type SalesOrderFilterQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	Number        int                 `json:"number"`
	Status        string              `json:"status"`
	Total         decimal.Decimal     `json:"total"`
	CashSessionID *string             `json:"cash_session_id,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	DeliveredAt   *string             `json:"delivered_at,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
