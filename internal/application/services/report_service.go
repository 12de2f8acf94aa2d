package services

import (
	"context"
	"fmt"
	"io"

	"github.com/lunchdesk/core/internal/infrastructure/export"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/ports"
)

// ReportService builds spreadsheet exports of all collections
type ReportService struct {
	lunchRepo   ports.LunchRepository
	orderRepo   ports.OrderRepository
	expenseRepo ports.ExpenseRepository
	logger      *logger.Logger
}

// NewReportService creates a new report service
func NewReportService(lunchRepo ports.LunchRepository, orderRepo ports.OrderRepository, expenseRepo ports.ExpenseRepository, logger *logger.Logger) *ReportService {
	return &ReportService{
		lunchRepo:   lunchRepo,
		orderRepo:   orderRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// ExportWorkbook writes an xlsx workbook with one sheet per collection
func (s *ReportService) ExportWorkbook(ctx context.Context, w io.Writer) error {
	lunches, err := s.lunchRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read lunches: %w", err)
	}
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read orders: %w", err)
	}
	expenses, err := s.expenseRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to read expenses: %w", err)
	}

	data := export.Data{Lunches: lunches, Orders: orders, Expenses: expenses}
	if err := export.WriteWorkbook(w, data); err != nil {
		return fmt.Errorf("failed to export workbook: %w", err)
	}

	s.logger.Infow("Workbook exported",
		"lunches", len(lunches),
		"orders", len(orders),
		"expenses", len(expenses),
	)

	return nil
}
