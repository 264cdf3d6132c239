package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor opens the single transaction scope every engine operation runs in.
// Services receive the live *gorm.DB tx and pass it down to the *Tx repository
// methods, so all rows touched by one logical operation commit or roll back
// together. Tests substitute an in-memory implementation.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct{ db *gorm.DB }

func NewTransactor(db *gorm.DB) Transactor { return &gormTransactor{db: db} }

func (t *gormTransactor) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}
