package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// LunchRepositoryImpl implements the LunchRepository interface
type LunchRepositoryImpl struct {
	table *table[entities.Lunch]
}

// NewLunchRepository creates a new lunch repository
func NewLunchRepository(store *csvstore.Store, log *logger.Logger) ports.LunchRepository {
	return &LunchRepositoryImpl{
		table: &table[entities.Lunch]{
			store:    store,
			coll:     store.Collection(CollectionLunches, LunchHeader),
			logger:   log,
			notFound: entities.ErrLunchNotFound,
			idOf:     func(l *entities.Lunch) string { return l.ID },
			encode:   EncodeLunch,
			decode:   DecodeLunch,
		},
	}
}

func (r *LunchRepositoryImpl) List(ctx context.Context) ([]*entities.Lunch, error) {
	return r.table.list(ctx)
}

func (r *LunchRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Lunch, error) {
	return r.table.get(ctx, id)
}

func (r *LunchRepositoryImpl) Create(ctx context.Context, lunch *entities.Lunch) error {
	if lunch.ID == "" {
		lunch.ID = uuid.New().String()
	}
	return r.table.create(ctx, lunch)
}

func (r *LunchRepositoryImpl) Update(ctx context.Context, lunch *entities.Lunch) error {
	return r.table.update(ctx, lunch)
}

func (r *LunchRepositoryImpl) Delete(ctx context.Context, id string) error {
	return r.table.delete(ctx, id)
}
