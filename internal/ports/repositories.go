package ports

import (
	"context"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
)

// LunchRepository defines the interface for lunch data operations
type LunchRepository interface {
	List(ctx context.Context) ([]*entities.Lunch, error)
	GetByID(ctx context.Context, id string) (*entities.Lunch, error)
	Create(ctx context.Context, lunch *entities.Lunch) error
	Update(ctx context.Context, lunch *entities.Lunch) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	List(ctx context.Context) ([]*entities.Order, error)
	GetByID(ctx context.Context, id string) (*entities.Order, error)
	Create(ctx context.Context, order *entities.Order) error
	Update(ctx context.Context, order *entities.Order) error
	Delete(ctx context.Context, id string) error
}

// ExpenseRepository defines the interface for expense data operations
type ExpenseRepository interface {
	List(ctx context.Context) ([]*entities.Expense, error)
	GetByID(ctx context.Context, id string) (*entities.Expense, error)
	Create(ctx context.Context, expense *entities.Expense) error
	Update(ctx context.Context, expense *entities.Expense) error
	Delete(ctx context.Context, id string) error
}

// SnapshotRepository defines the interface for collection snapshot operations.
// Collection names are the ones returned by Collections.
type SnapshotRepository interface {
	Collections() []string
	List(ctx context.Context, collection string) ([]csvstore.Snapshot, error)
	Restore(ctx context.Context, collection, name string) error
	Prune(ctx context.Context, collection string, keep int) ([]string, error)
	// Verify strictly decodes every row of a snapshot and returns the row count
	Verify(ctx context.Context, collection, name string) (int, error)
}

// ImageStore persists uploaded images and returns their public path
type ImageStore interface {
	Save(dataURI string) (string, error)
}
