package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
)

type cashFixture struct {
	store *memStore
	svc   CashService
}

func newCashFixture() *cashFixture {
	store := newMemStore()
	return &cashFixture{
		store: store,
		svc: NewCashService(
			&stubCashRepo{store: store},
			&stubOrderRepo{store: store},
			&stubTransactor{store: store},
			nil,
		),
	}
}

func (f *cashFixture) open(t *testing.T, register int, opening string) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		Register:      register,
		OpeningAmount: dec(opening),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

func (f *cashFixture) linkOrder(sessionID uuid.UUID, status, total string) {
	id := uuid.New()
	f.store.salesOrders[id] = model.SalesOrder{
		ID:            id,
		Number:        len(f.store.salesOrders) + 1,
		Status:        status,
		Total:         dec(total),
		CashSessionID: &sessionID,
	}
}

func TestOpenRejectsSecondSessionOnRegister(t *testing.T) {
	f := newCashFixture()
	f.open(t, 1, "100")

	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		Register:      1,
		OpeningAmount: dec("50"),
	})
	assert.Error(t, err)

	// A different register is fine.
	f.open(t, 2, "50")
}

func TestRegisterTransactionStoresSignedAmounts(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")

	require.NoError(t, f.svc.RegisterTransaction(context.Background(), id, dto.CashTransactionRequest{
		Kind: model.CashDeposit, Amount: dec("50"), Description: "change delivery",
	}))
	require.NoError(t, f.svc.RegisterTransaction(context.Background(), id, dto.CashTransactionRequest{
		Kind: model.CashWithdrawal, Amount: dec("20"), Description: "courier payout",
	}))

	require.Len(t, f.store.cashTxns, 2)
	assert.True(t, f.store.cashTxns[0].Amount.Equal(dec("50")))
	assert.True(t, f.store.cashTxns[1].Amount.Equal(dec("-20")))
}

func TestRegisterTransactionOnClosedSession(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")
	_, err := f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("100")})
	require.NoError(t, err)

	err = f.svc.RegisterTransaction(context.Background(), id, dto.CashTransactionRequest{
		Kind: model.CashDeposit, Amount: dec("10"), Description: "late deposit",
	})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

// Reconciliation: expected = opening + linked order totals + signed manual
// transactions; difference = actual − expected, shortage negative.
func TestCloseReconciliation(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")

	f.linkOrder(id, model.OrderDelivered, "150")
	f.linkOrder(id, model.OrderCompleted, "100")
	f.linkOrder(id, model.OrderCancelled, "999") // excluded

	require.NoError(t, f.svc.RegisterTransaction(context.Background(), id, dto.CashTransactionRequest{
		Kind: model.CashDeposit, Amount: dec("50"), Description: "change delivery",
	}))
	require.NoError(t, f.svc.RegisterTransaction(context.Background(), id, dto.CashTransactionRequest{
		Kind: model.CashWithdrawal, Amount: dec("20"), Description: "courier payout",
	}))

	resp, err := f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("375")})
	require.NoError(t, err)

	// expected = 100 + 250 + 30 = 380; difference = 375 − 380 = −5.
	require.NotNil(t, resp.ExpectedAmount)
	assert.True(t, resp.ExpectedAmount.Equal(dec("380")))
	require.NotNil(t, resp.ActualAmount)
	assert.True(t, resp.ActualAmount.Equal(dec("375")))
	require.NotNil(t, resp.Difference)
	assert.True(t, resp.Difference.Equal(dec("-5")))
	assert.Equal(t, model.SessionClosed, resp.Status)
	assert.NotNil(t, resp.ClosedAt)
}

func TestCloseWithNoActivity(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")

	resp, err := f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("100")})
	require.NoError(t, err)
	assert.True(t, resp.ExpectedAmount.Equal(dec("100")))
	assert.True(t, resp.Difference.IsZero())
}

func TestCloseOverageIsPositive(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")

	resp, err := f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("103.50")})
	require.NoError(t, err)
	assert.True(t, resp.Difference.Equal(dec("3.50")))
}

func TestCloseTwice(t *testing.T) {
	f := newCashFixture()
	id := f.open(t, 1, "100")

	first, err := f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("90")})
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), id, dto.CloseSessionRequest{ActualAmount: dec("500")})
	assert.ErrorIs(t, err, ErrSessionClosed)

	// The persisted figures are from the first close.
	stored := f.store.sessions[id]
	require.NotNil(t, stored.Difference)
	assert.True(t, stored.Difference.Equal(*first.Difference))
}

func TestCloseUnknownSession(t *testing.T) {
	f := newCashFixture()
	_, err := f.svc.Close(context.Background(), uuid.New(), dto.CloseSessionRequest{ActualAmount: dec("0")})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// hookTransactor runs a one-shot callback right before the next transaction,
// standing in for a concurrent request whose commit wins the race to the
// session row lock.
type hookTransactor struct {
	inner  repository.Transactor
	before func()
}

func (t *hookTransactor) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if t.before != nil {
		hook := t.before
		t.before = nil
		hook()
	}
	return t.inner.InTx(ctx, fn)
}

// A deposit that commits after the close request is issued but before the
// close transaction locks the session row must still be reconciled: the sums
// are read under the lock, never ahead of it.
func TestCloseIncludesDepositCommittedBeforeLock(t *testing.T) {
	store := newMemStore()
	hooked := &hookTransactor{inner: &stubTransactor{store: store}}
	svc := NewCashService(&stubCashRepo{store: store}, &stubOrderRepo{store: store}, hooked, nil)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		Register:      1,
		OpeningAmount: dec("100"),
	})
	require.NoError(t, err)
	sessionID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	hooked.before = func() {
		store.cashTxns = append(store.cashTxns, model.CashTransaction{
			ID:          uuid.New(),
			SessionID:   sessionID,
			Kind:        model.CashDeposit,
			Amount:      dec("50"),
			Description: "change delivery",
		})
	}

	closed, err := svc.Close(context.Background(), sessionID, dto.CloseSessionRequest{ActualAmount: dec("150")})
	require.NoError(t, err)
	require.NotNil(t, closed.ExpectedAmount)
	assert.True(t, closed.ExpectedAmount.Equal(dec("150")))
	assert.True(t, closed.Difference.IsZero())
}

// The mirror race: a close that commits first must make a pending
// RegisterTransaction fail, not attach a movement to a closed session.
func TestRegisterTransactionLosesRaceToClose(t *testing.T) {
	store := newMemStore()
	hooked := &hookTransactor{inner: &stubTransactor{store: store}}
	svc := NewCashService(&stubCashRepo{store: store}, &stubOrderRepo{store: store}, hooked, nil)

	resp, err := svc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		Register:      1,
		OpeningAmount: dec("100"),
	})
	require.NoError(t, err)
	sessionID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	hooked.before = func() {
		s := store.sessions[sessionID]
		s.Status = model.SessionClosed
		store.sessions[sessionID] = s
	}

	err = svc.RegisterTransaction(context.Background(), sessionID, dto.CashTransactionRequest{
		Kind: model.CashDeposit, Amount: dec("50"), Description: "change delivery",
	})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, store.cashTxns)
}
