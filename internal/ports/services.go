package ports

import (
	"context"
	"io"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
)

// LunchService interface for menu management operations
type LunchService interface {
	ListLunches(ctx context.Context) ([]*entities.Lunch, error)
	GetLunch(ctx context.Context, id string) (*entities.Lunch, error)
	CreateLunch(ctx context.Context, req CreateLunchRequest) (*entities.Lunch, error)
	UpdateLunch(ctx context.Context, id string, req UpdateLunchRequest) (*entities.Lunch, error)
	DeleteLunch(ctx context.Context, id string) error
}

// OrderService interface for order operations
type OrderService interface {
	ListOrders(ctx context.Context) ([]*entities.Order, error)
	GetOrder(ctx context.Context, id string) (*entities.Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*entities.Order, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*entities.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// ExpenseService interface for expense operations
type ExpenseService interface {
	ListExpenses(ctx context.Context) ([]*entities.Expense, error)
	GetExpense(ctx context.Context, id string) (*entities.Expense, error)
	CreateExpense(ctx context.Context, req CreateExpenseRequest) (*entities.Expense, error)
	UpdateExpense(ctx context.Context, id string, req UpdateExpenseRequest) (*entities.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

// BackupService interface for snapshot management
type BackupService interface {
	Collections() []string
	ListSnapshots(ctx context.Context, collection string) ([]csvstore.Snapshot, error)
	RestoreSnapshot(ctx context.Context, collection, name string) error
	PruneSnapshots(ctx context.Context, collection string, keep int) ([]string, error)
	VerifySnapshot(ctx context.Context, collection, name string) (int, error)
}

// ReportService interface for exports
type ReportService interface {
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

// Request/Response Types

// Lunch related types
type CreateLunchRequest struct {
	ID     string   `json:"id" validate:"omitempty,max=100"`
	Title  string   `json:"title" validate:"required,max=200"`
	Imagen string   `json:"imagen"`
	Price  float64  `json:"price" validate:"gte=0"`
	Tags   []string `json:"tags" validate:"omitempty,dive,max=50"`
}

// UpdateLunchRequest is a partial update; nil fields keep the stored value.
// A data URI in Imagen is stored as a new image, any other string replaces
// the path as is.
type UpdateLunchRequest struct {
	Title  *string   `json:"title" validate:"omitempty,max=200"`
	Imagen *string   `json:"imagen"`
	Price  *float64  `json:"price" validate:"omitempty,gte=0"`
	Tags   *[]string `json:"tags" validate:"omitempty"`
}

// Order related types
type OrderItemRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Imagen   string   `json:"imagen"`
	Price    float64  `json:"price" validate:"gte=0"`
	Tags     []string `json:"tags"`
	Quantity int      `json:"quantity" validate:"gte=0"`
}

type CreateOrderRequest struct {
	ID         string              `json:"id" validate:"omitempty,max=100"`
	TowerNum   string              `json:"towerNum"`
	Apto       int                 `json:"apto"`
	Customer   string              `json:"customer" validate:"max=200"`
	PhoneNum   int64               `json:"phoneNum"`
	PayMethod  entities.PayMethod  `json:"payMethod"`
	Lunch      []OrderItemRequest  `json:"lunch" validate:"dive"`
	Details    string              `json:"details"`
	Time       string              `json:"time"`
	Date       string              `json:"date"`
	OrderState entities.OrderState `json:"orderState" validate:"omitempty,oneof=pendiente pagado"`
	// Total is trusted as is when present
	Total *float64 `json:"total" validate:"omitempty,gte=0"`
}

type UpdateOrderRequest struct {
	TowerNum   *string              `json:"towerNum"`
	Apto       *int                 `json:"apto"`
	Customer   *string              `json:"customer" validate:"omitempty,max=200"`
	PhoneNum   *int64               `json:"phoneNum"`
	PayMethod  *entities.PayMethod  `json:"payMethod"`
	Lunch      *[]OrderItemRequest  `json:"lunch" validate:"omitempty,dive"`
	Details    *string              `json:"details"`
	Time       *string              `json:"time"`
	Date       *string              `json:"date"`
	OrderState *entities.OrderState `json:"orderState" validate:"omitempty,oneof=pendiente pagado"`
	Total      *float64             `json:"total" validate:"omitempty,gte=0"`
}

// Expense related types
type CreateExpenseRequest struct {
	ID          string               `json:"id" validate:"omitempty,max=100"`
	Kind        entities.ExpenseKind `json:"kind" validate:"required,oneof=purchase third-party"`
	Title       string               `json:"title" validate:"required,max=200"`
	Description string               `json:"description" validate:"max=1000"`
	Amount      float64              `json:"amount" validate:"gte=0"`
	Time        string               `json:"time"`
	Date        string               `json:"date"`
}

type UpdateExpenseRequest struct {
	Kind        *entities.ExpenseKind `json:"kind" validate:"omitempty,oneof=purchase third-party"`
	Title       *string               `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=1000"`
	Amount      *float64              `json:"amount" validate:"omitempty,gte=0"`
	Time        *string               `json:"time"`
	Date        *string               `json:"date"`
}

// Backup related types
type RestoreSnapshotRequest struct {
	Name string `json:"name" validate:"required"`
}

type PruneSnapshotsRequest struct {
	Keep int `json:"keep" validate:"gte=1"`
}

type PruneSnapshotsResponse struct {
	Removed []string `json:"removed"`
}

// Response types
type LunchCreatedResponse struct {
	OK    bool            `json:"ok"`
	Lunch *entities.Lunch `json:"lunch"`
}

type OrderCreatedResponse struct {
	OK    bool            `json:"ok"`
	Order *entities.Order `json:"order"`
}

type ExpenseCreatedResponse struct {
	OK      bool              `json:"ok"`
	Expense *entities.Expense `json:"expense"`
}

type UpdatedResponse struct {
	OK      bool        `json:"ok"`
	Updated interface{} `json:"updated"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
