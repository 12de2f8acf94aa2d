package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/lunchdesk/core/internal/domain/entities"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order
const (
	SheetSummary  = "Summary"
	SheetLunches  = "Lunches"
	SheetOrders   = "Orders"
	SheetExpenses = "Expenses"
)

// Data is everything that goes into one export
type Data struct {
	Lunches  []*entities.Lunch
	Orders   []*entities.Order
	Expenses []*entities.Expense
}

var (
	lunchColumns   = []interface{}{"ID", "Title", "Image", "Price", "Tags"}
	orderColumns   = []interface{}{"ID", "Tower", "Apartment", "Customer", "Phone", "Pay method", "Items", "Details", "Time", "Date", "State", "Total"}
	expenseColumns = []interface{}{"ID", "Kind", "Title", "Description", "Amount", "Time", "Date"}
)

// WriteWorkbook renders data as an xlsx workbook with one sheet per
// collection plus a summary sheet
func WriteWorkbook(w io.Writer, data Data) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	for _, name := range []string{SheetLunches, SheetOrders, SheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0EBF5"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummary(f, data); err != nil {
		return err
	}

	lunches := make([][]interface{}, 0, len(data.Lunches))
	for _, l := range data.Lunches {
		lunches = append(lunches, []interface{}{l.ID, l.Title, l.Imagen, l.Price, strings.Join(l.Tags, ", ")})
	}
	if err := writeTable(f, SheetLunches, header, lunchColumns, lunches); err != nil {
		return err
	}

	orders := make([][]interface{}, 0, len(data.Orders))
	for _, o := range data.Orders {
		orders = append(orders, []interface{}{
			o.ID, o.TowerNum, o.Apto, o.Customer, o.PhoneNum, o.PayMethod.Label,
			describeItems(o.Lunch), o.Details, o.Time, o.Date, string(o.OrderState), o.Total,
		})
	}
	if err := writeTable(f, SheetOrders, header, orderColumns, orders); err != nil {
		return err
	}

	expenses := make([][]interface{}, 0, len(data.Expenses))
	for _, e := range data.Expenses {
		expenses = append(expenses, []interface{}{e.ID, string(e.Kind), e.Title, e.Description, e.Amount, e.Time, e.Date})
	}
	if err := writeTable(f, SheetExpenses, header, expenseColumns, expenses); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, style int, columns []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &columns); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// Summary holds the money totals shown on the summary sheet
type Summary struct {
	Orders        int
	Dishes        int
	Revenue       float64
	PaidRevenue   float64
	PendingOrders int
	Expenses      float64
	Balance       float64
}

// Summarize adds up orders and expenses with decimal arithmetic
func Summarize(data Data) Summary {
	var s Summary
	revenue, paid, spent := decimal.Zero, decimal.Zero, decimal.Zero
	for _, o := range data.Orders {
		s.Orders++
		s.Dishes += o.ItemCount()
		total := amount(o.Total)
		revenue = revenue.Add(total)
		if o.IsPaid() {
			paid = paid.Add(total)
		} else {
			s.PendingOrders++
		}
	}
	for _, e := range data.Expenses {
		spent = spent.Add(amount(e.Amount))
	}
	s.Revenue = revenue.InexactFloat64()
	s.PaidRevenue = paid.InexactFloat64()
	s.Expenses = spent.InexactFloat64()
	s.Balance = paid.Sub(spent).InexactFloat64()
	return s
}

// amount converts f for summing; NaN and infinities count as zero
func amount(f float64) decimal.Decimal {
	if !entities.IsFinite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func writeSummary(f *excelize.File, data Data) error {
	s := Summarize(data)
	rows := [][]interface{}{
		{"Orders", s.Orders},
		{"Pending orders", s.PendingOrders},
		{"Dishes sold", s.Dishes},
		{"Revenue", s.Revenue},
		{"Paid revenue", s.PaidRevenue},
		{"Expenses", s.Expenses},
		{"Balance", s.Balance},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 20)
}

func describeItems(items []entities.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Title, it.Quantity))
	}
	return strings.Join(parts, "; ")
}
