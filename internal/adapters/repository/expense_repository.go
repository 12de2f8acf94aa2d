package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// ExpenseRepositoryImpl implements the ExpenseRepository interface
type ExpenseRepositoryImpl struct {
	table *table[entities.Expense]
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(store *csvstore.Store, log *logger.Logger) ports.ExpenseRepository {
	return &ExpenseRepositoryImpl{
		table: &table[entities.Expense]{
			store:    store,
			coll:     store.Collection(CollectionExpenses, ExpenseHeader),
			logger:   log,
			notFound: entities.ErrExpenseNotFound,
			idOf:     func(e *entities.Expense) string { return e.ID },
			encode:   EncodeExpense,
			decode:   DecodeExpense,
		},
	}
}

func (r *ExpenseRepositoryImpl) List(ctx context.Context) ([]*entities.Expense, error) {
	return r.table.list(ctx)
}

func (r *ExpenseRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Expense, error) {
	return r.table.get(ctx, id)
}

func (r *ExpenseRepositoryImpl) Create(ctx context.Context, expense *entities.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	return r.table.create(ctx, expense)
}

func (r *ExpenseRepositoryImpl) Update(ctx context.Context, expense *entities.Expense) error {
	return r.table.update(ctx, expense)
}

func (r *ExpenseRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}
