package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ───────────────────────────────────────────────────────────

// ProductFilter is bound from query string of GET /v1/products.
type ProductFilter struct {
	Name   string `form:"name"`
	Type   string `form:"type"   validate:"omitempty,oneof=raw_material semi_finished finished_good"`
	Active string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// MovementFilterQuery is bound from query string of GET /v1/stock-movements.
type MovementFilterQuery struct {
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Kind      string `form:"kind"       validate:"omitempty,oneof=production_in production_out sale_out manual_adjustment"`
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdjustStockRequest carries a signed delta; positive restocks, negative
// corrects shrinkage. Applied through the ledger as manual_adjustment.
type AdjustStockRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Reason   string          `json:"reason"   validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Active       bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Product       string          `json:"product,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Kind          string          `json:"kind"`
	Reason        string          `json:"reason,omitempty"`
	RefID         *string         `json:"ref_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
