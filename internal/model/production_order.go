package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Production order states. pending → in_progress → {completed | cancelled};
// pending → cancelled is also legal. completed and cancelled are terminal.
const (
	ProductionPending    = "pending"
	ProductionInProgress = "in_progress"
	ProductionCompleted  = "completed"
	ProductionCancelled  = "cancelled"
)

// ProductionOrder is a request to produce Quantity units of a finished good.
// Mutated only by service.ProductionService transition operations; never deleted.
type ProductionOrder struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	AssigneeID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt  time.Time
	StartedAt  *time.Time
	CompletedAt *time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Terminal reports whether no further transition is legal.
func (o *ProductionOrder) Terminal() bool {
	return o.Status == ProductionCompleted || o.Status == ProductionCancelled
}
