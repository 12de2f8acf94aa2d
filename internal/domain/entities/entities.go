package entities

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrLunchNotFound   = errors.New("lunch not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Enums and types
type OrderState string

const (
	OrderStatePending OrderState = "pendiente"
	OrderStatePaid    OrderState = "pagado"
)

type ExpenseKind string

const (
	ExpenseKindPurchase   ExpenseKind = "purchase"
	ExpenseKindThirdParty ExpenseKind = "third-party"
)

// Lunch represents a dish on the lunch menu
type Lunch struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Imagen string   `json:"imagen"`
	Price  float64  `json:"price"`
	Tags   []string `json:"tags"`
}

// PayMethod describes how an order is paid
type PayMethod struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Image string `json:"image"`
}

// OrderItem is a lunch copied into an order together with the ordered quantity
type OrderItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Imagen   string   `json:"imagen"`
	Price    float64  `json:"price"`
	Tags     []string `json:"tags"`
	Quantity int      `json:"quantity"`
}

// Order represents a customer order
type Order struct {
	ID         string      `json:"id"`
	TowerNum   string      `json:"towerNum"`
	Apto       int         `json:"apto"`
	Customer   string      `json:"customer"`
	PhoneNum   int64       `json:"phoneNum"`
	PayMethod  PayMethod   `json:"payMethod"`
	Lunch      []OrderItem `json:"lunch"`
	Details    string      `json:"details"`
	Time       string      `json:"time"`
	Date       string      `json:"date"`
	OrderState OrderState  `json:"orderState"`
	Total      float64     `json:"total"`
}

// Expense represents money spent by the kitchen
type Expense struct {
	ID          string      `json:"id"`
	Kind        ExpenseKind `json:"kind"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Time        string      `json:"time"`
	Date        string      `json:"date"`
}

// ComputeTotal sums price × quantity over the items. Amounts are added as
// decimals so that 0.1 × 3 is 0.3 and not 0.30000000000000004. A sum beyond
// the float64 range comes back as +Inf; check it with IsFinite.
func ComputeTotal(items []OrderItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}

// IsFinite reports whether f can be stored as an amount
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Business logic methods for Order

// ItemsTotal returns the total derived from the order's line items
func (o *Order) ItemsTotal() float64 {
	return ComputeTotal(o.Lunch)
}

// IsPaid returns true once the order has been paid
func (o *Order) IsPaid() bool {
	return o.OrderState == OrderStatePaid
}

// ItemCount returns the number of dishes in the order
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Lunch {
		n += it.Quantity
	}
	return n
}

// ToOrderItem copies the lunch into an order line
func (l *Lunch) ToOrderItem(quantity int) OrderItem {
	tags := make([]string, len(l.Tags))
	copy(tags, l.Tags)
	return OrderItem{
		ID:       l.ID,
		Title:    l.Title,
		Imagen:   l.Imagen,
		Price:    l.Price,
		Tags:     tags,
		Quantity: quantity,
	}
}

// Utility methods
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStatePending, OrderStatePaid:
		return true
	default:
		return false
	}
}

func (k ExpenseKind) IsValid() bool {
	switch k {
	case ExpenseKindPurchase, ExpenseKindThirdParty:
		return true
	default:
		return false
	}
}
