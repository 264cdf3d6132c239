package service

import (
	"context"
	"errors"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	txMaxAttempts = 3
	txBackoffBase = 25 * time.Millisecond
)

// withTxRetry runs fn in a transaction and retries it a bounded number of
// times when postgres reports a serialization failure or deadlock. Those are
// the only errors worth retrying: the transaction rolled back atomically, so
// nothing was partially applied. Business failures pass through untouched.
func withTxRetry(ctx context.Context, tr repository.Transactor, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = tr.InTx(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		log.Warn().Int("attempt", attempt).Err(err).Msg("transaction write conflict, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txBackoffBase):
		}
	}
	return err
}

// isSerializationFailure matches postgres class 40 errors: 40001
// (serialization_failure) and 40P01 (deadlock_detected).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
