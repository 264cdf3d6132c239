package service

import (
	"context"
	"errors"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/model"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeService resolves bills of materials and checks production feasibility.
// Read-only: it never mutates stock.
type RecipeService interface {
	// Resolve returns the recipe items for a finished good in stored order.
	Resolve(ctx context.Context, productID uuid.UUID) ([]model.RecipeItem, error)
	// CheckFeasible multiplies each item's qty-per-unit by the requested
	// quantity and compares against live ingredient stock. Empty result means
	// all ingredients are covered. Advisory only — nothing is reserved.
	CheckFeasible(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) ([]Shortfall, error)
}

type recipeService struct {
	recipes  repository.RecipeRepository
	products repository.ProductRepository
}

func NewRecipeService(recipes repository.RecipeRepository, products repository.ProductRepository) RecipeService {
	return &recipeService{recipes: recipes, products: products}
}

func (s *recipeService) Resolve(ctx context.Context, productID uuid.UUID) ([]model.RecipeItem, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	rec, err := s.recipes.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoRecipe
		}
		return nil, err
	}
	return rec.Items, nil
}

func (s *recipeService) CheckFeasible(ctx context.Context, productID uuid.UUID, qty decimal.Decimal) ([]Shortfall, error) {
	items, err := s.Resolve(ctx, productID)
	if err != nil {
		return nil, err
	}

	var shortfalls []Shortfall
	for _, item := range items {
		ing, err := s.products.FindByID(ctx, item.IngredientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		required := item.QtyPerUnit.Mul(qty)
		if ing.CurrentStock.LessThan(required) {
			shortfalls = append(shortfalls, Shortfall{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Required:     required,
				Available:    ing.CurrentStock,
				Missing:      required.Sub(ing.CurrentStock),
			})
		}
	}
	return shortfalls, nil
}
