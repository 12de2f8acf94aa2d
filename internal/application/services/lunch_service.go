package services

import (
	"context"
	"fmt"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/images"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// LunchService handles menu operations
type LunchService struct {
	lunchRepo ports.LunchRepository
	images    ports.ImageStore
	logger    *logger.Logger
}

// NewLunchService creates a new lunch service
func NewLunchService(lunchRepo ports.LunchRepository, images ports.ImageStore, logger *logger.Logger) *LunchService {
	return &LunchService{
		lunchRepo: lunchRepo,
		images:    images,
		logger:    logger,
	}
}

// ListLunches returns the whole menu in file order
func (s *LunchService) ListLunches(ctx context.Context) ([]*entities.Lunch, error) {
	lunches, err := s.lunchRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lunches: %w", err)
	}
	return lunches, nil
}

// GetLunch retrieves a lunch by ID
func (s *LunchService) GetLunch(ctx context.Context, id string) (*entities.Lunch, error) {
	lunch, err := s.lunchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lunch: %w", err)
	}
	return lunch, nil
}

// CreateLunch adds a dish to the menu. An inline image is stored first and
// replaced by its public path.
func (s *LunchService) CreateLunch(ctx context.Context, req ports.CreateLunchRequest) (*entities.Lunch, error) {
	imagen, err := s.resolveImage(req.Imagen)
	if err != nil {
		return nil, err
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	lunch := &entities.Lunch{
		ID:     req.ID,
		Title:  req.Title,
		Imagen: imagen,
		Price:  req.Price,
		Tags:   tags,
	}

	if err := s.lunchRepo.Create(ctx, lunch); err != nil {
		return nil, fmt.Errorf("failed to create lunch: %w", err)
	}

	s.logger.Infow("Lunch created successfully", "lunch_id", lunch.ID, "title", lunch.Title)

	return lunch, nil
}

// UpdateLunch applies a partial update to a dish
func (s *LunchService) UpdateLunch(ctx context.Context, id string, req ports.UpdateLunchRequest) (*entities.Lunch, error) {
	existing, err := s.lunchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lunch: %w", err)
	}

	if req.Imagen != nil {
		imagen, err := s.resolveImage(*req.Imagen)
		if err != nil {
			return nil, err
		}
		existing.Imagen = imagen
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	if req.Tags != nil {
		existing.Tags = *req.Tags
		if existing.Tags == nil {
			existing.Tags = []string{}
		}
	}

	if err := s.lunchRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update lunch: %w", err)
	}

	s.logger.Infow("Lunch updated successfully", "lunch_id", existing.ID, "title", existing.Title)

	return existing, nil
}

// DeleteLunch removes a dish from the menu. Its image file is left in place.
func (s *LunchService) DeleteLunch(ctx context.Context, id string) error {
	if err := s.lunchRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lunch: %w", err)
	}

	s.logger.Infow("Lunch deleted successfully", "lunch_id", id)

	return nil
}

// resolveImage stores data URIs and passes any other value through
func (s *LunchService) resolveImage(imagen string) (string, error) {
	if !images.IsDataURI(imagen) {
		return imagen, nil
	}
	path, err := s.images.Save(imagen)
	if err != nil {
		return "", fmt.Errorf("failed to save lunch image: %w", err)
	}
	return path, nil
}
