package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// ExpenseService handles expense operations
type ExpenseService struct {
	expenseRepo ports.ExpenseRepository
	logger      *logger.Logger
	now         func() time.Time
}

// NewExpenseService creates a new expense service
func NewExpenseService(expenseRepo ports.ExpenseRepository, logger *logger.Logger) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *ExpenseService) ListExpenses(ctx context.Context) ([]*entities.Expense, error) {
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (*entities.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// CreateExpense records money spent. The date defaults to now.
func (s *ExpenseService) CreateExpense(ctx context.Context, req ports.CreateExpenseRequest) (*entities.Expense, error) {
	if !req.Kind.IsValid() {
		return nil, fmt.Errorf("%w: expense kind %q", entities.ErrInvalidInput, req.Kind)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: negative amount", entities.ErrInvalidInput)
	}

	date := req.Date
	if date == "" {
		date = s.now().UTC().Format(isoLayout)
	}

	expense := &entities.Expense{
		ID:          req.ID,
		Kind:        req.Kind,
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Time:        req.Time,
		Date:        date,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.logger.Infow("Expense created successfully",
		"expense_id", expense.ID,
		"kind", expense.Kind,
		"amount", expense.Amount,
	)

	return expense, nil
}

// UpdateExpense applies a partial update to an expense
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, req ports.UpdateExpenseRequest) (*entities.Expense, error) {
	existing, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if req.Kind != nil {
		if !req.Kind.IsValid() {
			return nil, fmt.Errorf("%w: expense kind %q", entities.ErrInvalidInput, *req.Kind)
		}
		existing.Kind = *req.Kind
	}
	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return nil, fmt.Errorf("%w: negative amount", entities.ErrInvalidInput)
		}
		existing.Amount = *req.Amount
	}
	if req.Time != nil {
		existing.Time = *req.Time
	}
	if req.Date != nil {
		existing.Date = *req.Date
	}

	if err := s.expenseRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.logger.Infow("Expense updated successfully", "expense_id", existing.ID)

	return existing, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.logger.Infow("Expense deleted successfully", "expense_id", id)

	return nil
}
