package service

// In-memory repository stubs backing the service unit tests. The stub
// transactor serializes whole transactions with one mutex and restores a
// snapshot on error, which models what row locks plus rollback give us on
// postgres. Methods that take a tx assume the transactor lock is held;
// passing a nil *gorm.DB is fine because the stubs never touch it.

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
)

type memStore struct {
	mu          sync.Mutex
	products    map[uuid.UUID]model.Product
	movements   []model.StockMovement
	recipes     map[uuid.UUID]model.Recipe // keyed by product id
	prodOrders  map[uuid.UUID]model.ProductionOrder
	salesOrders map[uuid.UUID]model.SalesOrder
	sessions    map[uuid.UUID]model.CashSession
	cashTxns    []model.CashTransaction
}

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[uuid.UUID]model.Product),
		recipes:     make(map[uuid.UUID]model.Recipe),
		prodOrders:  make(map[uuid.UUID]model.ProductionOrder),
		salesOrders: make(map[uuid.UUID]model.SalesOrder),
		sessions:    make(map[uuid.UUID]model.CashSession),
	}
}

type storeSnapshot struct {
	products    map[uuid.UUID]model.Product
	movements   []model.StockMovement
	prodOrders  map[uuid.UUID]model.ProductionOrder
	salesOrders map[uuid.UUID]model.SalesOrder
	sessions    map[uuid.UUID]model.CashSession
	cashTxns    []model.CashTransaction
}

func (s *memStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		products:    make(map[uuid.UUID]model.Product, len(s.products)),
		movements:   append([]model.StockMovement(nil), s.movements...),
		prodOrders:  make(map[uuid.UUID]model.ProductionOrder, len(s.prodOrders)),
		salesOrders: make(map[uuid.UUID]model.SalesOrder, len(s.salesOrders)),
		sessions:    make(map[uuid.UUID]model.CashSession, len(s.sessions)),
		cashTxns:    append([]model.CashTransaction(nil), s.cashTxns...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.prodOrders {
		snap.prodOrders[k] = v
	}
	for k, v := range s.salesOrders {
		snap.salesOrders[k] = v
	}
	for k, v := range s.sessions {
		snap.sessions[k] = v
	}
	return snap
}

func (s *memStore) restore(snap storeSnapshot) {
	s.products = snap.products
	s.movements = snap.movements
	s.prodOrders = snap.prodOrders
	s.salesOrders = snap.salesOrders
	s.sessions = snap.sessions
	s.cashTxns = snap.cashTxns
}

// stubTransactor runs fn under a global lock and rolls the store back to the
// pre-transaction snapshot when fn errors.
type stubTransactor struct{ store *memStore }

func (t *stubTransactor) InTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

var _ repository.Transactor = (*stubTransactor)(nil)

// ── ProductRepository ─────────────────────────────────────────────────────────

type stubProductRepo struct{ store *memStore }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.store.products[p.ID] = *p
	return nil
}

func (r *stubProductRepo) ListBelowMin(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.store.products {
		if p.Active && p.CurrentStock.LessThanOrEqual(p.MinStock) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, newStock decimal.Decimal) error {
	p, ok := r.store.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CurrentStock = newStock
	r.store.products[id] = p
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── MovementRepository ────────────────────────────────────────────────────────

type stubMovementRepo struct{ store *memStore }

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.store.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MovementRepository = (*stubMovementRepo)(nil)

// ── RecipeRepository ──────────────────────────────────────────────────────────

type stubRecipeRepo struct{ store *memStore }

func (r *stubRecipeRepo) Create(_ context.Context, rec *model.Recipe) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.store.recipes[rec.ProductID] = *rec
	return nil
}

func (r *stubRecipeRepo) FindByProductID(_ context.Context, productID uuid.UUID) (*model.Recipe, error) {
	rec, ok := r.store.recipes[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rec, nil
}

var _ repository.RecipeRepository = (*stubRecipeRepo)(nil)

// ── ProductionRepository ──────────────────────────────────────────────────────

type stubProductionRepo struct{ store *memStore }

func (r *stubProductionRepo) Create(_ context.Context, o *model.ProductionOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.store.prodOrders[o.ID] = *o
	return nil
}

func (r *stubProductionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	o, ok := r.store.prodOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubProductionRepo) List(_ context.Context, filter repository.ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	var out []model.ProductionOrder
	for _, o := range r.store.prodOrders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductionRepo) Update(_ context.Context, o *model.ProductionOrder) error {
	r.store.prodOrders[o.ID] = *o
	return nil
}

func (r *stubProductionRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.ProductionOrder, error) {
	o, ok := r.store.prodOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubProductionRepo) UpdateTx(_ *gorm.DB, o *model.ProductionOrder) error {
	r.store.prodOrders[o.ID] = *o
	return nil
}

var _ repository.ProductionRepository = (*stubProductionRepo)(nil)

// ── OrderRepository ───────────────────────────────────────────────────────────

type stubOrderRepo struct{ store *memStore }

func (r *stubOrderRepo) Create(_ context.Context, o *model.SalesOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.store.salesOrders[o.ID] = *o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	o, ok := r.store.salesOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) List(_ context.Context, filter repository.SalesOrderFilter) ([]model.SalesOrder, int64, error) {
	var out []model.SalesOrder
	for _, o := range r.store.salesOrders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.SalesOrder, error) {
	o, ok := r.store.salesOrders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) UpdateTx(_ *gorm.DB, o *model.SalesOrder) error {
	r.store.salesOrders[o.ID] = *o
	return nil
}

func (r *stubOrderRepo) SumTotalsBySessionTx(_ *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range r.store.salesOrders {
		if o.CashSessionID != nil && *o.CashSessionID == sessionID && o.Status != model.OrderCancelled {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── CashRepository ────────────────────────────────────────────────────────────

type stubCashRepo struct{ store *memStore }

func (r *stubCashRepo) CreateSession(_ context.Context, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.store.sessions[s.ID] = *s
	return nil
}

func (r *stubCashRepo) FindOpenByRegister(_ context.Context, register int) (*model.CashSession, error) {
	for _, s := range r.store.sessions {
		if s.Register == register && s.Status == model.SessionOpen {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCashRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	txns, _ := r.ListTransactions(context.Background(), id)
	s.Transactions = txns
	return &s, nil
}

func (r *stubCashRepo) ListTransactions(_ context.Context, sessionID uuid.UUID) ([]model.CashTransaction, error) {
	var out []model.CashTransaction
	for _, t := range r.store.cashTxns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *stubCashRepo) CreateTransactionTx(_ *gorm.DB, t *model.CashTransaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.store.cashTxns = append(r.store.cashTxns, *t)
	return nil
}

func (r *stubCashRepo) SumTransactionsTx(_ *gorm.DB, sessionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.store.cashTxns {
		if t.SessionID == sessionID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *stubCashRepo) FindSessionForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *stubCashRepo) UpdateSessionTx(_ *gorm.DB, s *model.CashSession) error {
	cp := *s
	cp.Transactions = nil
	r.store.sessions[s.ID] = cp
	return nil
}

var _ repository.CashRepository = (*stubCashRepo)(nil)

// ── Fixture helpers ───────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func addProduct(store *memStore, name, typ, stock, minStock string) uuid.UUID {
	id := uuid.New()
	store.products[id] = model.Product{
		ID:           id,
		SKU:          "SKU-" + id.String()[:8],
		Name:         name,
		Type:         typ,
		Unit:         "unit",
		CurrentStock: dec(stock),
		MinStock:     dec(minStock),
		Active:       true,
	}
	return id
}

func addRecipe(store *memStore, productID uuid.UUID, items []model.RecipeItem) {
	recID := uuid.New()
	for i := range items {
		items[i].ID = uuid.New()
		items[i].RecipeID = recID
		items[i].Position = i + 1
	}
	store.recipes[productID] = model.Recipe{
		ID:        recID,
		ProductID: productID,
		Name:      "recipe",
		Items:     items,
	}
}
