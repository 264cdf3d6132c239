package service

import (
	"context"
	"errors"
	"time"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CashService owns the till session lifecycle and the close reconciliation.
type CashService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	RegisterTransaction(ctx context.Context, sessionID uuid.UUID, req dto.CashTransactionRequest) error
	Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error)
}

type cashService struct {
	sessions   repository.CashRepository
	orders     repository.OrderRepository
	tx         repository.Transactor
	dispatcher *worker.Dispatcher
}

func NewCashService(
	sessions repository.CashRepository,
	orders repository.OrderRepository,
	tx repository.Transactor,
	dispatcher *worker.Dispatcher,
) CashService {
	return &cashService{sessions: sessions, orders: orders, tx: tx, dispatcher: dispatcher}
}

// ── Open ──────────────────────────────────────────────────────────────────────
// One open session per register is a business guard, not a schema constraint.

func (s *cashService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if existing, err := s.sessions.FindOpenByRegister(ctx, req.Register); err == nil && existing != nil {
		return nil, errors.New("register already has an open session")
	}

	session := &model.CashSession{
		Register:      req.Register,
		OperatorID:    operatorID,
		OpeningAmount: req.OpeningAmount,
		Status:        model.SessionOpen,
		OpenedAt:      time.Now(),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return sessionToResponse(session, nil), nil
}

// ── RegisterTransaction ───────────────────────────────────────────────────────
// Manual deposit or withdrawal. Stored signed; rows are immutable. The
// open-check and the insert run in one transaction under the session row
// lock, so a concurrent close either sees this movement in its sums or
// rejects it with ErrSessionClosed — a row can never land on a session that
// already closed.

func (s *cashService) RegisterTransaction(ctx context.Context, sessionID uuid.UUID, req dto.CashTransactionRequest) error {
	return withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		session, err := s.sessions.FindSessionForUpdateTx(tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status != model.SessionOpen {
			return ErrSessionClosed
		}

		amount := req.Amount
		if req.Kind == model.CashWithdrawal {
			amount = req.Amount.Neg()
		}
		return s.sessions.CreateTransactionTx(tx, &model.CashTransaction{
			SessionID:   sessionID,
			Kind:        req.Kind,
			Amount:      amount,
			Description: req.Description,
			CreatedAt:   time.Now(),
		})
	})
}

// ── Close ─────────────────────────────────────────────────────────────────────
// expected = opening + Σ linked order totals + Σ signed manual transactions;
// difference = actual − expected. The sign is informative only — a shortage is
// a fact to surface, never an error. Values are persisted at close, not
// recomputed later, and the session becomes immutable.
//
// Both sums are read inside the transaction, after the session row lock. A
// deposit committed just before the close is therefore always in the
// persisted figures; one arriving after the lock waits, then fails with
// ErrSessionClosed.

func (s *cashService) Close(ctx context.Context, sessionID uuid.UUID, req dto.CloseSessionRequest) (*dto.SessionResponse, error) {
	var session *model.CashSession
	err := withTxRetry(ctx, s.tx, func(tx *gorm.DB) error {
		var err error
		session, err = s.sessions.FindSessionForUpdateTx(tx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.Status != model.SessionOpen {
			return ErrSessionClosed
		}

		orderTotal, err := s.orders.SumTotalsBySessionTx(tx, sessionID)
		if err != nil {
			return err
		}
		txnTotal, err := s.sessions.SumTransactionsTx(tx, sessionID)
		if err != nil {
			return err
		}

		expected := session.OpeningAmount.Add(orderTotal).Add(txnTotal)
		difference := req.ActualAmount.Sub(expected)
		actual := req.ActualAmount
		now := time.Now()

		session.Status = model.SessionClosed
		session.ExpectedAmount = &expected
		session.ActualAmount = &actual
		session.Difference = &difference
		session.Notes = req.Notes
		session.ClosedAt = &now
		return s.sessions.UpdateSessionTx(tx, session)
	})
	if err != nil {
		return nil, err
	}

	// Closing report is generated off the request path (fire & forget).
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueSessionReport(ctx, worker.SessionReportPayload{
			SessionID: session.ID.String(),
		})
	}

	txns, _ := s.sessions.ListTransactions(ctx, sessionID)
	return sessionToResponse(session, txns), nil
}

func (s *cashService) Get(ctx context.Context, sessionID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sessionToResponse(session, session.Transactions), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cashService) findSession(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	session, err := s.sessions.FindSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func sessionToResponse(s *model.CashSession, txns []model.CashTransaction) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:             s.ID.String(),
		Register:       s.Register,
		OperatorID:     s.OperatorID.String(),
		OpeningAmount:  s.OpeningAmount,
		Status:         s.Status,
		ExpectedAmount: s.ExpectedAmount,
		ActualAmount:   s.ActualAmount,
		Difference:     s.Difference,
		Notes:          s.Notes,
		OpenedAt:       s.OpenedAt.Format(time.RFC3339),
	}
	if s.ClosedAt != nil {
		t := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	for _, txn := range txns {
		resp.Transactions = append(resp.Transactions, dto.CashTransactionResponse{
			ID:          txn.ID.String(),
			Kind:        txn.Kind,
			Amount:      txn.Amount,
			Description: txn.Description,
			CreatedAt:   txn.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
