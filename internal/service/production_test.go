package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/dto"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
)

type productionFixture struct {
	store *memStore
	svc   ProductionService
}

func newProductionFixture() *productionFixture {
	store := newMemStore()
	products := &stubProductRepo{store: store}
	movements := &stubMovementRepo{store: store}
	orders := &stubProductionRepo{store: store}
	recipes := NewRecipeService(&stubRecipeRepo{store: store}, products)
	ledger := NewStockLedger(products, movements)
	tr := &stubTransactor{store: store}
	return &productionFixture{
		store: store,
		svc:   NewProductionService(orders, products, recipes, ledger, tr, nil),
	}
}

// setupCakeScenario seeds 2 kg flour, 10 eggs and a cake whose recipe takes
// 0.5 kg flour and 4 eggs per unit.
func (f *productionFixture) setupCakeScenario() (flour, eggs, cake uuid.UUID) {
	flour = addProduct(f.store, "Wheat flour", model.ProductRawMaterial, "2", "0.5")
	eggs = addProduct(f.store, "Eggs", model.ProductRawMaterial, "10", "2")
	cake = addProduct(f.store, "Sponge cake", model.ProductFinishedGood, "0", "0")
	addRecipe(f.store, cake, []model.RecipeItem{
		{IngredientID: flour, QtyPerUnit: dec("0.5"), Unit: "kg"},
		{IngredientID: eggs, QtyPerUnit: dec("4"), Unit: "unit"},
	})
	return
}

func (f *productionFixture) create(t *testing.T, productID uuid.UUID, qty string) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), dto.CreateProductionOrderRequest{
		ProductID: productID.String(),
		Quantity:  dec(qty),
	})
	require.NoError(t, err)
	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	return id
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreateRejectsInfeasibleReportsAllShortfalls(t *testing.T) {
	f := newProductionFixture()
	flour, eggs, cake := f.setupCakeScenario()

	// qty 5 needs 2.5 kg flour (2 available) and 20 eggs (10 available), so
	// both ingredients are reported, flour first per stored recipe order.
	_, err := f.svc.Create(context.Background(), dto.CreateProductionOrderRequest{
		ProductID: cake.String(),
		Quantity:  dec("5"),
	})

	var insErr *InsufficientIngredientsError
	require.ErrorAs(t, err, &insErr)
	require.Len(t, insErr.Shortfalls, 2)
	assert.Equal(t, flour, insErr.Shortfalls[0].IngredientID)
	assert.True(t, insErr.Shortfalls[0].Missing.Equal(dec("0.5")))
	assert.Equal(t, eggs, insErr.Shortfalls[1].IngredientID)
	assert.True(t, insErr.Shortfalls[1].Missing.Equal(dec("10")))
	assert.Empty(t, f.store.prodOrders, "no order row on a failed feasibility check")
}

func TestCreateRejectsInfeasibleEggs(t *testing.T) {
	f := newProductionFixture()
	_, eggs, cake := f.setupCakeScenario()

	// qty 3: flour fine (1.5 of 2), eggs short (12 of 10).
	_, err := f.svc.Create(context.Background(), dto.CreateProductionOrderRequest{
		ProductID: cake.String(),
		Quantity:  dec("3"),
	})

	var insErr *InsufficientIngredientsError
	require.ErrorAs(t, err, &insErr)
	require.Len(t, insErr.Shortfalls, 1)
	assert.Equal(t, eggs, insErr.Shortfalls[0].IngredientID)
}

func TestCreateWithoutRecipe(t *testing.T) {
	f := newProductionFixture()
	bread := addProduct(f.store, "Baguette", model.ProductFinishedGood, "0", "0")

	_, err := f.svc.Create(context.Background(), dto.CreateProductionOrderRequest{
		ProductID: bread.String(),
		Quantity:  dec("1"),
	})
	assert.ErrorIs(t, err, ErrNoRecipe)
}

func TestCreateDoesNotReserveStock(t *testing.T) {
	f := newProductionFixture()
	flour, eggs, cake := f.setupCakeScenario()

	f.create(t, cake, "2")

	assert.True(t, f.store.products[flour].CurrentStock.Equal(dec("2")))
	assert.True(t, f.store.products[eggs].CurrentStock.Equal(dec("10")))
	assert.Empty(t, f.store.movements)
}

// ── State machine ─────────────────────────────────────────────────────────────

func TestStartOnlyFromPending(t *testing.T) {
	f := newProductionFixture()
	_, _, cake := f.setupCakeScenario()
	id := f.create(t, cake, "1")
	assignee := uuid.New()

	resp, err := f.svc.Start(context.Background(), id, assignee)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionInProgress, resp.Status)
	assert.NotNil(t, resp.StartedAt)
	require.NotNil(t, resp.AssigneeID)
	assert.Equal(t, assignee.String(), *resp.AssigneeID)

	// Starting again is illegal.
	_, err = f.svc.Start(context.Background(), id, assignee)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelFromPendingAndInProgress(t *testing.T) {
	f := newProductionFixture()
	_, _, cake := f.setupCakeScenario()

	pending := f.create(t, cake, "1")
	resp, err := f.svc.Cancel(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionCancelled, resp.Status)

	started := f.create(t, cake, "1")
	_, err = f.svc.Start(context.Background(), started, uuid.New())
	require.NoError(t, err)
	resp, err = f.svc.Cancel(context.Background(), started)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionCancelled, resp.Status)

	// Terminal states reject further transitions.
	_, err = f.svc.Cancel(context.Background(), pending)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.svc.Start(context.Background(), pending, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelHasNoStockEffect(t *testing.T) {
	f := newProductionFixture()
	flour, eggs, cake := f.setupCakeScenario()
	id := f.create(t, cake, "2")
	_, err := f.svc.Start(context.Background(), id, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), id)
	require.NoError(t, err)

	assert.True(t, f.store.products[flour].CurrentStock.Equal(dec("2")))
	assert.True(t, f.store.products[eggs].CurrentStock.Equal(dec("10")))
	assert.Empty(t, f.store.movements)
}

func TestUnknownOrder(t *testing.T) {
	f := newProductionFixture()
	_, err := f.svc.Complete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// ── Complete ──────────────────────────────────────────────────────────────────

func TestCompleteDeductsAndCredits(t *testing.T) {
	f := newProductionFixture()
	flour, eggs, cake := f.setupCakeScenario()
	id := f.create(t, cake, "2")
	_, err := f.svc.Start(context.Background(), id, uuid.New())
	require.NoError(t, err)

	resp, err := f.svc.Complete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionCompleted, resp.Status)
	assert.NotNil(t, resp.CompletedAt)

	assert.True(t, f.store.products[flour].CurrentStock.Equal(dec("1")))
	assert.True(t, f.store.products[eggs].CurrentStock.Equal(dec("2")))
	assert.True(t, f.store.products[cake].CurrentStock.Equal(dec("2")))

	// Exactly three ledger rows, all referencing the order.
	require.Len(t, f.store.movements, 3)
	kinds := map[string]int{}
	for _, m := range f.store.movements {
		kinds[m.Kind]++
		require.NotNil(t, m.RefID)
		assert.Equal(t, id, *m.RefID)
	}
	assert.Equal(t, 2, kinds[model.MovementProductionOut])
	assert.Equal(t, 1, kinds[model.MovementProductionIn])
}

func TestCompleteFromPendingSkipsStart(t *testing.T) {
	f := newProductionFixture()
	_, _, cake := f.setupCakeScenario()
	id := f.create(t, cake, "1")

	resp, err := f.svc.Complete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionCompleted, resp.Status)
}

func TestCompleteIsAtomicOnMidBatchShortfall(t *testing.T) {
	f := newProductionFixture()
	flour, eggs, cake := f.setupCakeScenario()
	id := f.create(t, cake, "2")

	// Stock drained between creation and completion: the feasibility snapshot
	// is stale by design, the ledger is the authority.
	p := f.store.products[eggs]
	p.CurrentStock = dec("7") // needs 8
	f.store.products[eggs] = p

	_, err := f.svc.Complete(context.Background(), id)
	var insErr *InsufficientStockError
	require.ErrorAs(t, err, &insErr)
	assert.Equal(t, eggs, insErr.ProductID)

	// The flour deduction that succeeded first must be rolled back with the
	// rest: zero rows, untouched stock, order keeps its status.
	assert.True(t, f.store.products[flour].CurrentStock.Equal(dec("2")))
	assert.True(t, f.store.products[eggs].CurrentStock.Equal(dec("7")))
	assert.True(t, f.store.products[cake].CurrentStock.IsZero())
	assert.Empty(t, f.store.movements)
	assert.Equal(t, model.ProductionPending, f.store.prodOrders[id].Status)
}

func TestCompleteTwice(t *testing.T) {
	f := newProductionFixture()
	_, _, cake := f.setupCakeScenario()
	id := f.create(t, cake, "1")

	_, err := f.svc.Complete(context.Background(), id)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), id)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// No double deduction.
	require.Len(t, f.store.movements, 3)
}

func TestCompleteCancelledOrder(t *testing.T) {
	f := newProductionFixture()
	_, _, cake := f.setupCakeScenario()
	id := f.create(t, cake, "1")
	_, err := f.svc.Cancel(context.Background(), id)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// Concurrent completions over a shared ingredient: exactly as many orders
// succeed as the stock covers, and the ledger never goes negative.
func TestCompleteConcurrentSharedIngredient(t *testing.T) {
	f := newProductionFixture()
	flour := addProduct(f.store, "Wheat flour", model.ProductRawMaterial, "7", "0")
	bun := addProduct(f.store, "Brioche bun", model.ProductFinishedGood, "0", "0")
	addRecipe(f.store, bun, []model.RecipeItem{
		{IngredientID: flour, QtyPerUnit: dec("1"), Unit: "kg"},
	})

	const n = 10
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = f.create(t, bun, "1")
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Complete(context.Background(), ids[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var insErr *InsufficientStockError
		require.ErrorAs(t, err, &insErr)
	}
	assert.Equal(t, 7, succeeded)
	assert.True(t, f.store.products[flour].CurrentStock.IsZero())
	assert.True(t, f.store.products[bun].CurrentStock.Equal(dec("7")))
	// 7 completions x (1 deduction + 1 credit).
	assert.Len(t, f.store.movements, 14)
}
