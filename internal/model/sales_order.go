package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sales order statuses. Stock is deducted exactly once, on the transition
// into delivered, guarded against duplicate or replayed transition calls.
const (
	OrderPending      = "pending"
	OrderPaid         = "paid"
	OrderInProduction = "in_production"
	OrderReady        = "ready"
	OrderInTransit    = "in_transit"
	OrderDelivered    = "delivered"
	OrderCompleted    = "completed"
	OrderCancelled    = "cancelled"
)

// OrderStatusValid reports whether s is a known sales order status.
func OrderStatusValid(s string) bool {
	switch s {
	case OrderPending, OrderPaid, OrderInProduction, OrderReady,
		OrderInTransit, OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// SalesOrder is a customer order for finished goods, optionally linked to the
// cash session that took the payment.
type SalesOrder struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number        int             `gorm:"not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashSessionID *uuid.UUID      `gorm:"type:uuid;index"`
	DeliveredAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []SalesOrderItem `gorm:"foreignKey:OrderID"`
}

// SalesOrderItem is one finished-good line of a sales order.
type SalesOrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
