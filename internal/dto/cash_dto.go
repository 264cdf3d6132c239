package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	Register      int             `json:"register"       validate:"required,min=1"`
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
}

type CashTransactionRequest struct {
	Kind        string          `json:"kind"        validate:"required,oneof=deposit withdrawal"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CloseSessionRequest struct {
	ActualAmount decimal.Decimal `json:"actual_amount" validate:"min=0"`
	Notes        *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CashTransactionResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

type SessionResponse struct {
	ID             string                    `json:"id"`
	Register       int                       `json:"register"`
	OperatorID     string                    `json:"operator_id"`
	OpeningAmount  decimal.Decimal           `json:"opening_amount"`
	Status         string                    `json:"status"`
	ExpectedAmount *decimal.Decimal          `json:"expected_amount,omitempty"`
	ActualAmount   *decimal.Decimal          `json:"actual_amount,omitempty"`
	Difference     *decimal.Decimal          `json:"difference,omitempty"`
	Notes          *string                   `json:"notes,omitempty"`
	Transactions   []CashTransactionResponse `json:"transactions,omitempty"`
	OpenedAt       string                    `json:"opened_at"`
	ClosedAt       *string                   `json:"closed_at,omitempty"`
}
