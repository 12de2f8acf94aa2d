package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/xuri/excelize/v2"
)

func sampleData() Data {
	return Data{
		Lunches: []*entities.Lunch{
			{ID: "l1", Title: "Soup", Price: 10, Tags: []string{"hot", "veg"}},
		},
		Orders: []*entities.Order{
			{
				ID:         "o1",
				TowerNum:   "T1",
				Apto:       504,
				Customer:   "Ana",
				PhoneNum:   3001234567,
				PayMethod:  entities.PayMethod{Label: "Cash"},
				Lunch:      []entities.OrderItem{{Title: "Soup", Price: 10, Quantity: 2}, {Title: "Juice", Price: 2.5, Quantity: 1}},
				OrderState: entities.OrderStatePaid,
				Total:      22.5,
			},
			{ID: "o2", OrderState: entities.OrderStatePending, Total: 0.1},
			{ID: "o3", OrderState: entities.OrderStatePaid, Total: 0.2},
		},
		Expenses: []*entities.Expense{
			{ID: "e1", Kind: entities.ExpenseKindPurchase, Title: "Rice", Amount: 7.5},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleData())
	assert.Equal(t, 3, s.Orders)
	assert.Equal(t, 1, s.PendingOrders)
	assert.Equal(t, 3, s.Dishes)
	assert.Equal(t, 22.8, s.Revenue)
	assert.Equal(t, 22.7, s.PaidRevenue)
	assert.Equal(t, 7.5, s.Expenses)
	assert.Equal(t, 15.2, s.Balance)
}

func TestSummarizeSkipsNonFiniteAmounts(t *testing.T) {
	s := Summarize(Data{
		Orders:   []*entities.Order{{OrderState: entities.OrderStatePaid, Total: math.Inf(1)}, {OrderState: entities.OrderStatePaid, Total: 4}},
		Expenses: []*entities.Expense{{Amount: math.NaN()}, {Amount: 1}},
	})
	assert.Equal(t, 4.0, s.Revenue)
	assert.Equal(t, 1.0, s.Expenses)
	assert.Equal(t, 3.0, s.Balance)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteWorkbook(&buf, sampleData()))

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetLunches, SheetOrders, SheetExpenses}, f.GetSheetList())

	lunches, err := f.GetRows(SheetLunches)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(lunches))
	assert.Equal(t, []string{"ID", "Title", "Image", "Price", "Tags"}, lunches[0])
	assert.Equal(t, []string{"l1", "Soup", "", "10", "hot, veg"}, lunches[1])

	orders, err := f.GetRows(SheetOrders)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(orders))
	assert.Equal(t, "Soup x2; Juice x1", orders[1][6])
	assert.Equal(t, "pagado", orders[1][10])
	assert.Equal(t, "22.5", orders[1][11])

	summary, err := f.GetRows(SheetSummary)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Balance", "15.2"}, summary[6])
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, WriteWorkbook(&buf, Data{}))

	f, err := excelize.OpenReader(&buf)
	assert.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetExpenses)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(rows))
}
