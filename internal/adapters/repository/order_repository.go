package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// OrderRepositoryImpl implements the OrderRepository interface
type OrderRepositoryImpl struct {
	table *table[entities.Order]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(store *csvstore.Store, log *logger.Logger) ports.OrderRepository {
	return &OrderRepositoryImpl{
		table: &table[entities.Order]{
			store:    store,
			coll:     store.Collection(CollectionOrders, OrderHeader),
			logger:   log,
			notFound: entities.ErrOrderNotFound,
			idOf:     func(o *entities.Order) string { return o.ID },
			encode:   EncodeOrder,
			decode:   DecodeOrder,
		},
	}
}

func (r *OrderRepositoryImpl) List(ctx context.Context) ([]*entities.Order, error) {
	return r.table.list(ctx)
}

func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Order, error) {
	return r.table.get(ctx, id)
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *entities.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.table.create(ctx, order)
}

func (r *OrderRepositoryImpl) Update(ctx context.Context, order *entities.Order) error {
	return r.table.update(ctx, order)
}

func (r *OrderRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}
